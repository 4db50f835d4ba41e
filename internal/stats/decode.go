package stats

import (
	"encoding/json"
	"io"

	"github.com/rileyhilliard/statdash/internal/errors"
)

// Decode reads one Snapshot from r.
//
// The processes key must be present (an empty array is fine); every other
// section is optional and left nil when missing.
func Decode(r io.Reader) (*Snapshot, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			"Snapshot is not valid JSON",
			"Check that the source URL points at a statdash /stats endpoint")
	}

	if _, ok := raw["processes"]; !ok {
		return nil, errors.New(errors.ErrParse,
			"Snapshot has no processes section",
			"Check that the source URL points at a statdash /stats endpoint")
	}

	// Re-marshal the already-validated object into the typed struct.
	body, err := json.Marshal(raw)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse, "Snapshot could not be re-encoded", "")
	}

	var snap Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrParse,
			"Snapshot has unexpected field types",
			"The server and dashboard versions may not match")
	}

	if snap.Processes == nil {
		snap.Processes = []ProcessRecord{}
	}

	return &snap, nil
}
