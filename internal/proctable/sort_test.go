package proctable

import (
	"testing"

	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/stretchr/testify/assert"
)

func pids(records []stats.ProcessRecord) []int32 {
	out := make([]int32, len(records))
	for i, r := range records {
		out[i] = r.PID
	}
	return out
}

func names(records []stats.ProcessRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Name
	}
	return out
}

func TestSort_NumericOrder(t *testing.T) {
	records := []stats.ProcessRecord{
		{PID: 1, CPU: 5},
		{PID: 2, CPU: 1},
		{PID: 3, CPU: 3},
	}

	asc := Sort(records, KeyCPU, true)
	assert.Equal(t, []int32{2, 3, 1}, pids(asc))

	desc := Sort(records, KeyCPU, false)
	assert.Equal(t, []int32{1, 3, 2}, pids(desc))
}

func TestSort_NumericNotLexical(t *testing.T) {
	records := []stats.ProcessRecord{
		{PID: 1, Threads: 10},
		{PID: 2, Threads: 9},
		{PID: 3, Threads: 100},
	}

	got := Sort(records, KeyThreads, true)
	assert.Equal(t, []int32{2, 1, 3}, pids(got))
}

func TestSort_CaseInsensitiveText(t *testing.T) {
	records := []stats.ProcessRecord{
		{PID: 1, Name: "zeta"},
		{PID: 2, Name: "Alpha"},
	}

	assert.Equal(t, []string{"Alpha", "zeta"}, names(Sort(records, KeyName, true)))
	assert.Equal(t, []string{"zeta", "Alpha"}, names(Sort(records, KeyName, false)))
}

func TestSort_StableForTies(t *testing.T) {
	tests := []struct {
		name      string
		key       SortKey
		records   []stats.ProcessRecord
		ascending bool
		want      []int32
	}{
		{
			name: "numeric ties ascending",
			key:  KeyCPU,
			records: []stats.ProcessRecord{
				{PID: 10, CPU: 2}, {PID: 11, CPU: 1}, {PID: 12, CPU: 2}, {PID: 13, CPU: 1},
			},
			ascending: true,
			want:      []int32{11, 13, 10, 12},
		},
		{
			name: "numeric ties descending",
			key:  KeyCPU,
			records: []stats.ProcessRecord{
				{PID: 10, CPU: 2}, {PID: 11, CPU: 1}, {PID: 12, CPU: 2}, {PID: 13, CPU: 1},
			},
			ascending: false,
			want:      []int32{10, 12, 11, 13},
		},
		{
			name: "text ties differ only by case",
			key:  KeyName,
			records: []stats.ProcessRecord{
				{PID: 1, Name: "Bash"}, {PID: 2, Name: "bash"}, {PID: 3, Name: "BASH"},
			},
			ascending: false,
			want:      []int32{1, 2, 3},
		},
		{
			name: "all equal keeps input order",
			key:  KeyMemory,
			records: []stats.ProcessRecord{
				{PID: 5}, {PID: 4}, {PID: 3}, {PID: 2},
			},
			ascending: false,
			want:      []int32{5, 4, 3, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sort(tt.records, tt.key, tt.ascending)
			assert.Equal(t, tt.want, pids(got))
		})
	}
}

func TestSort_EveryKey(t *testing.T) {
	a := stats.ProcessRecord{PID: 1, Name: "a", Username: "a", Status: "a", CPU: 1, Memory: 1, Virt: 1, Res: 1, CPUTime: 1, Threads: 1, Nice: -1}
	b := stats.ProcessRecord{PID: 2, Name: "B", Username: "B", Status: "B", CPU: 2, Memory: 2, Virt: 2, Res: 2, CPUTime: 2, Threads: 2, Nice: 1}

	for _, c := range Columns {
		t.Run(string(c.Key), func(t *testing.T) {
			assert.Equal(t, []int32{1, 2}, pids(Sort([]stats.ProcessRecord{b, a}, c.Key, true)))
			assert.Equal(t, []int32{2, 1}, pids(Sort([]stats.ProcessRecord{a, b}, c.Key, false)))
		})
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	records := []stats.ProcessRecord{{PID: 1, CPU: 1}, {PID: 2, CPU: 9}}
	_ = Sort(records, KeyCPU, false)
	assert.Equal(t, []int32{1, 2}, pids(records))
}

func TestSort_Empty(t *testing.T) {
	assert.Empty(t, Sort(nil, KeyCPU, false))
}

func TestSort_UnknownKeyKeepsOrder(t *testing.T) {
	records := []stats.ProcessRecord{{PID: 3}, {PID: 1}, {PID: 2}}
	assert.Equal(t, []int32{3, 1, 2}, pids(Sort(records, SortKey("bogus"), true)))
}
