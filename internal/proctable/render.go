package proctable

import (
	"fmt"
	"strconv"

	"github.com/rileyhilliard/statdash/internal/stats"
)

// HeaderCell describes one column header.
type HeaderCell struct {
	Key       SortKey
	Title     string
	Width     int
	Sortable  bool
	Active    bool
	Ascending bool
}

// Indicator returns the arrow drawn next to the active header, or "".
func (h HeaderCell) Indicator() string {
	if !h.Active {
		return ""
	}
	if h.Ascending {
		return "▲"
	}
	return "▼"
}

// Row is one formatted process row. Cells line up with TableView.Header.
type Row struct {
	PID    int32
	Pinned bool
	CPU    float64
	Cells  []string
}

// TableView is everything a renderer needs to draw the process tables.
// It carries no references into the snapshot it was built from.
type TableView struct {
	Header   []HeaderCell
	Pinned   []Row
	Unpinned []Row

	// ShowPinned is true while any pid is pinned, even if none is present.
	ShowPinned bool
}

// Rows returns pinned rows followed by unpinned rows.
func (t TableView) Rows() []Row {
	out := make([]Row, 0, len(t.Pinned)+len(t.Unpinned))
	out = append(out, t.Pinned...)
	return append(out, t.Unpinned...)
}

// Render sorts records by state, partitions them by pin and formats every
// cell. It is a pure function: equal inputs produce equal views.
func Render(records []stats.ProcessRecord, state ViewState) TableView {
	ordered := Sort(records, state.SortKey, state.Ascending)
	pinned, unpinned := Partition(ordered, state.Pins)

	return TableView{
		Header:     header(state),
		Pinned:     formatRows(pinned, true),
		Unpinned:   formatRows(unpinned, false),
		ShowPinned: state.Pins.Len() > 0,
	}
}

func header(state ViewState) []HeaderCell {
	cells := make([]HeaderCell, len(Columns))
	for i, c := range Columns {
		cells[i] = HeaderCell{
			Key:       c.Key,
			Title:     c.Title,
			Width:     c.Width,
			Sortable:  c.Key.Sortable(),
			Active:    c.Key == state.SortKey,
			Ascending: c.Key == state.SortKey && state.Ascending,
		}
	}
	return cells
}

func formatRows(records []stats.ProcessRecord, pinned bool) []Row {
	if len(records) == 0 {
		return nil
	}
	rows := make([]Row, len(records))
	for i := range records {
		rows[i] = Row{
			PID:    records[i].PID,
			Pinned: pinned,
			CPU:    records[i].CPU,
			Cells:  Cells(&records[i]),
		}
	}
	return rows
}

// Cells projects a record onto Columns.
func Cells(r *stats.ProcessRecord) []string {
	return []string{
		FormatFixed(r.CPU),
		FormatFixed(r.Memory),
		FormatMB(r.Virt),
		FormatMB(r.Res),
		strconv.Itoa(int(r.PID)),
		r.Username,
		FormatFixed(r.CPUTime),
		strconv.Itoa(int(r.Threads)),
		strconv.Itoa(int(r.Nice)),
		r.Status,
		r.Name,
	}
}

const (
	// NoFilesystems is the empty-state row for the filesystem table.
	NoFilesystems = "No file systems found."
	// NoNetwork is the empty-state row for the network table.
	NoNetwork = "No network interfaces found."
)

// FilesystemRow is one formatted filesystem line.
type FilesystemRow struct {
	Mountpoint string
	Used       string
	Total      string
	Percent    float64
	Empty      bool
}

// RenderFilesystems formats filesystems, or returns a single empty-state row.
func RenderFilesystems(fs []stats.Filesystem) []FilesystemRow {
	if len(fs) == 0 {
		return []FilesystemRow{{Mountpoint: NoFilesystems, Empty: true}}
	}
	rows := make([]FilesystemRow, len(fs))
	for i, f := range fs {
		rows[i] = FilesystemRow{
			Mountpoint: f.Mountpoint,
			Used:       FormatDiskGB(f.Used),
			Total:      FormatDiskGB(f.Total),
			Percent:    f.UsedPerc,
		}
	}
	return rows
}

// NetworkRow is one formatted interface line.
type NetworkRow struct {
	Name  string
	Rx    string
	Tx    string
	Empty bool
}

// RenderNetwork formats interfaces, or returns a single empty-state row.
func RenderNetwork(ifaces []stats.NetworkInterface) []NetworkRow {
	if len(ifaces) == 0 {
		return []NetworkRow{{Name: NoNetwork, Empty: true}}
	}
	rows := make([]NetworkRow, len(ifaces))
	for i, n := range ifaces {
		rows[i] = NetworkRow{
			Name: TruncateName(n.Name),
			Rx:   fmt.Sprintf("%.0f %s", n.RxSpeed, n.RxUnit),
			Tx:   fmt.Sprintf("%.0f %s", n.TxSpeed, n.TxUnit),
		}
	}
	return rows
}
