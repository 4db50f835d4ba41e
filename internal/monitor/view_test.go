package monitor

import (
	stderrors "errors"
	"regexp"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/stats"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func sized(t *testing.T, m Model) Model {
	t.Helper()
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 60})
	return m
}

func TestView_WaitingForFirstSnapshot(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	out := stripANSI(sized(t, m).View())

	assert.Contains(t, out, "statdash")
	assert.Contains(t, out, "waiting for the first snapshot")
	assert.Contains(t, out, "updated never")
}

func TestView_HeaderAndSections(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m = sized(t, loaded(t, m))
	m, _ = update(t, m, clockTickMsg(baseTime.Add(5*time.Second)))

	out := stripANSI(m.View())

	assert.Contains(t, out, "fake")
	assert.Contains(t, out, "12:00:05")
	assert.Contains(t, out, "updated 5 seconds ago")
	assert.Contains(t, out, "every 2s")
	assert.Contains(t, out, "CPU")
	assert.Contains(t, out, "2.00 / 8.00 GB")
	assert.Contains(t, out, proctable.NoFilesystems)
	assert.Contains(t, out, proctable.NoNetwork)
	assert.Contains(t, out, "Processes (3)")
	assert.Contains(t, out, "CPU% ▼")
	assert.NotContains(t, out, "Pinned")
}

func TestView_PinnedSectionOnlyWithPins(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m = sized(t, loaded(t, m))

	m.state = m.state.TogglePin(99)
	m.rerender()
	out := stripANSI(m.View())
	assert.Contains(t, out, "Pinned (0)", "section stays while pins exist even if absent")

	m.state = m.state.TogglePin(99)
	m.rerender()
	assert.NotContains(t, stripANSI(m.View()), "Pinned")
}

func TestView_PausedAndError(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m = sized(t, loaded(t, m))
	m, _ = update(t, m, keyRunes("a"))
	m, _ = update(t, m, snapshotMsg{seq: 2, err: stderrors.New("HTTP 502 from upstream")})

	out := stripANSI(m.View())
	assert.Contains(t, out, "paused")
	assert.Contains(t, out, "HTTP 502 from upstream")
	assert.Contains(t, out, "Processes (3)", "last good table stays visible")
}

func TestView_FilesystemsAndNetwork(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	snap := sampleSnapshot()
	snap.Filesystems = []stats.Filesystem{{Mountpoint: "/data", Used: 5e9, Total: 10e9, UsedPerc: 50}}
	snap.Network = []stats.NetworkInterface{{Name: "eth0", RxSpeed: 12.6, RxUnit: "KB/s", TxSpeed: 0, TxUnit: "B/s"}}
	snap.PerCoreUsage = []float64{10, 20, 30, 40}
	m, _ = update(t, m, snapshotMsg{seq: 1, snap: snap, at: baseTime})
	m = sized(t, m)

	out := stripANSI(m.View())
	assert.Contains(t, out, "/data")
	assert.Contains(t, out, "5.00 / 10.00")
	assert.Contains(t, out, "eth0")
	assert.Contains(t, out, "13 KB/s")
	assert.NotContains(t, out, proctable.NoFilesystems)
}

func TestRenderProcesses_SelectedLine(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m = loaded(t, m)

	_, line := m.renderProcesses()
	assert.Equal(t, 2, line, "title and header precede the first row")

	m.state = m.state.TogglePin(1)
	m.rerender()
	m.selectIndex(1)
	content, line := m.renderProcesses()
	lines := strings.Split(stripANSI(content), "\n")
	assert.Equal(t, 6, line)
	assert.Contains(t, lines[line], "Xorg")
}

func TestRenderProcesses_EmptyTable(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	content, line := m.renderProcesses()

	assert.Equal(t, -1, line)
	assert.Contains(t, stripANSI(content), "Processes (0)")
}

func TestColumnWidths_NameTakesRemainder(t *testing.T) {
	m, _, _ := newTestModel(t, nil)
	m.width = 200
	widths := m.columnWidths()

	total := rowPrefix
	for _, w := range widths {
		total += w + 1
	}
	assert.Equal(t, 201, total)

	m.width = 20
	assert.Equal(t, minNameWidth, m.columnWidths()[len(widths)-1])
}

func TestFit(t *testing.T) {
	tests := []struct {
		in    string
		width int
		right bool
		want  string
	}{
		{"ab", 4, false, "ab  "},
		{"ab", 4, true, "  ab"},
		{"abcdef", 4, false, "abc…"},
		{"abcd", 4, true, "abcd"},
		{"x", 0, false, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, fit(tt.in, tt.width, tt.right))
	}
}

func TestCoreRows(t *testing.T) {
	th := proctable.DefaultThresholds
	assert.Nil(t, coreRows(nil, 80, th))

	rows := coreRows([]float64{1, 2, 3, 4, 5}, 2*coreCellWidth, th)
	assert.Len(t, rows, 3)
	assert.Contains(t, stripANSI(rows[2]), "4 ")
}

func TestSectionHelpers(t *testing.T) {
	header := stripANSI(SectionHeader("CPU", "8 cores", 30))
	assert.Equal(t, 30, len([]rune(header)))
	assert.True(t, strings.HasPrefix(header, "╭─ CPU"))
	assert.True(t, strings.HasSuffix(header, "8 cores ╮"))

	line := stripANSI(SectionContentLine("hello", 20))
	assert.Equal(t, 20, len([]rune(line)))

	footer := stripANSI(SectionFooter(10))
	assert.Equal(t, "╰────────╯", footer)
}
