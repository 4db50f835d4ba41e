package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/stats"
)

func TestRenderSimpleTable(t *testing.T) {
	columns := []TableColumn{
		{Title: "Mount", Width: 10},
		{Title: "Used", Width: 8},
	}
	out := RenderSimpleTable(columns, [][]string{{"/", "12.00"}, {"/home", "3.50"}})

	assert.Contains(t, out, "Mount")
	assert.Contains(t, out, "/home")
	assert.Contains(t, out, "3.50")
}

func TestRenderSimpleTable_NoRows(t *testing.T) {
	assert.Empty(t, RenderSimpleTable([]TableColumn{{Title: "X", Width: 3}}, nil))
}

func TestHeaderColumns_ActiveArrow(t *testing.T) {
	state := proctable.DefaultViewState()
	view := proctable.Render(nil, state)

	cols := HeaderColumns(view.Header)
	require.Len(t, cols, len(proctable.Columns))
	assert.Equal(t, "CPU% "+SymbolDesc, cols[0].Title)
	assert.Equal(t, "MEM%", cols[1].Title)
}

func TestFitColumns(t *testing.T) {
	cols := fitColumns([]TableColumn{{Title: "NAME", Width: 0}}, [][]string{{"postgres"}, {"sh"}})
	assert.Equal(t, 8, cols[0].Width)
}

func TestRenderProcessTable_PinnedFirst(t *testing.T) {
	records := []stats.ProcessRecord{
		{PID: 1, Name: "alpha", CPU: 10},
		{PID: 2, Name: "bravo", CPU: 90},
		{PID: 3, Name: "charlie", CPU: 50},
	}
	state := proctable.DefaultViewState()
	state.Pins = proctable.NewPinSet(1)

	out := stripANSI(RenderProcessTable(proctable.Render(records, state)))

	require.Contains(t, out, "Pinned")
	alpha := strings.Index(out, "alpha")
	bravo := strings.Index(out, "bravo")
	charlie := strings.Index(out, "charlie")
	assert.Less(t, strings.Index(out, "Pinned"), alpha)
	assert.Less(t, alpha, bravo)
	assert.Less(t, bravo, charlie)
}

func TestRenderProcessTable_NoPins(t *testing.T) {
	records := []stats.ProcessRecord{{PID: 1, Name: "alpha"}}
	out := stripANSI(RenderProcessTable(proctable.Render(records, proctable.DefaultViewState())))

	assert.NotContains(t, out, "Pinned")
	assert.Contains(t, out, "alpha")
}

func TestRenderProcessTable_PinnedButAbsent(t *testing.T) {
	state := proctable.DefaultViewState()
	state.Pins = proctable.NewPinSet(99)

	out := stripANSI(RenderProcessTable(proctable.Render([]stats.ProcessRecord{{PID: 1, Name: "alpha"}}, state)))
	assert.Contains(t, out, "not running")
	assert.Contains(t, out, "alpha")
}

func TestRenderProcessTable_Empty(t *testing.T) {
	out := stripANSI(RenderProcessTable(proctable.Render(nil, proctable.DefaultViewState())))
	assert.Contains(t, out, "CPU%")
	assert.Contains(t, out, "NAME")
}
