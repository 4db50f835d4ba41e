package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rileyhilliard/statdash/internal/export"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/rileyhilliard/statdash/internal/ui"
)

// SnapshotOptions holds options for the snapshot command.
type SnapshotOptions struct {
	Source SourceFlags
	View   ViewFlags
	JSON   bool
	CSV    bool
}

// snapshotCommand fetches one snapshot and prints it.
func snapshotCommand(cmd *cobra.Command, opts SnapshotOptions) error {
	out := cmd.OutOrStdout()

	err := runSnapshot(cmd, out, opts)
	if err != nil && opts.JSON {
		if writeErr := WriteJSONFromError(out, err); writeErr != nil {
			logger.Default().Warn("can't write JSON error: %v", writeErr)
		}
	}
	return err
}

func runSnapshot(cmd *cobra.Command, out io.Writer, opts SnapshotOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	src, timeout, err := buildSource(cfg, opts.Source, logger.Default())
	if err != nil {
		return err
	}

	state, err := resolveViewState(cmd, cfg, opts.View)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	snap, err := src.FetchSnapshot(ctx)
	if err == nil && snap == nil {
		err = source.NoSnapshot(src)
	}
	if err != nil {
		return err
	}

	switch {
	case opts.JSON:
		return WriteJSONSuccess(out, snap)
	case opts.CSV:
		return export.WriteTable(out, proctable.Render(snap.Processes, state))
	}
	_, err = io.WriteString(out, renderSnapshot(snap, state, thresholdsFrom(cfg)))
	return err
}

// renderSnapshot lays out a snapshot as plain tables for the terminal or a pipe.
func renderSnapshot(snap *stats.Snapshot, state proctable.ViewState, th proctable.Thresholds) string {
	var b strings.Builder

	osName := strings.TrimSpace(strings.Join([]string{snap.OS.Distro, snap.OS.Name, snap.OS.Architecture}, " "))
	if osName == "" {
		osName = "unknown OS"
	}
	fmt.Fprintf(&b, "%s | up %s | taken %s\n\n", osName, proctable.FormatUptime(snap.Uptime),
		snap.Timestamp.Local().Format("2006-01-02 15:04:05"))

	fmt.Fprintf(&b, "CPU     %s\n", ui.RenderUsageBar(snap.CPUUsage, 20, th))
	fmt.Fprintf(&b, "Memory  %s  %s / %s\n", ui.RenderUsageBar(snap.MemUsedPercent, 20, th),
		humanize.IBytes(snap.MemUsed), humanize.IBytes(snap.MemTotal))
	if snap.DiskReadBytes > 0 || snap.DiskWriteBytes > 0 {
		fmt.Fprintf(&b, "Disk    read %s  written %s\n",
			humanize.Bytes(snap.DiskReadBytes), humanize.Bytes(snap.DiskWriteBytes))
	}
	if sent, recv := snap.NetTotals(); sent > 0 || recv > 0 {
		fmt.Fprintf(&b, "Network sent %s  received %s\n", humanize.Bytes(sent), humanize.Bytes(recv))
	}
	b.WriteString("\n")

	fsRows := proctable.RenderFilesystems(snap.Filesystems)
	if fsRows[0].Empty {
		b.WriteString(fsRows[0].Mountpoint + "\n")
	} else {
		rows := make([][]string, len(fsRows))
		for i, r := range fsRows {
			rows[i] = []string{r.Mountpoint, r.Used + " GB", r.Total + " GB", fmt.Sprintf("%.1f%%", r.Percent)}
		}
		b.WriteString(ui.RenderSimpleTable(fitted([]ui.TableColumn{
			{Title: "File system"}, {Title: "Used"}, {Title: "Total"}, {Title: "Use%"},
		}, rows), rows) + "\n")
	}
	b.WriteString("\n")

	netRows := proctable.RenderNetwork(snap.Network)
	if netRows[0].Empty {
		b.WriteString(netRows[0].Name + "\n")
	} else {
		rows := make([][]string, len(netRows))
		for i, r := range netRows {
			rows[i] = []string{r.Name, r.Rx, r.Tx}
		}
		b.WriteString(ui.RenderSimpleTable(fitted([]ui.TableColumn{
			{Title: "Interface"}, {Title: "Rx"}, {Title: "Tx"},
		}, rows), rows) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(ui.RenderProcessTable(proctable.Render(snap.Processes, state)))
	return b.String()
}

// fitted sizes each column to its widest title or cell.
func fitted(cols []ui.TableColumn, rows [][]string) []ui.TableColumn {
	for i := range cols {
		cols[i].Width = len([]rune(cols[i].Title))
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(cols) && len([]rune(cell)) > cols[i].Width {
				cols[i].Width = len([]rune(cell))
			}
		}
	}
	return cols
}
