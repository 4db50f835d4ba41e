package proctable

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/statdash/internal/errors"
)

// SortKey names a ProcessRecord field. Values match the JSON field names.
type SortKey string

const (
	KeyCPU      SortKey = "cpu"
	KeyMemory   SortKey = "memory"
	KeyVirt     SortKey = "virt"
	KeyRes      SortKey = "res"
	KeyPID      SortKey = "pid"
	KeyUsername SortKey = "username"
	KeyCPUTime  SortKey = "cpu_time"
	KeyThreads  SortKey = "threads"
	KeyNice     SortKey = "nice"
	KeyStatus   SortKey = "status"
	KeyName     SortKey = "name"
)

// Column is one column of the rendered process table.
type Column struct {
	Key   SortKey
	Title string
	Width int
}

// Columns is the fixed column projection, left to right.
var Columns = []Column{
	{Key: KeyCPU, Title: "CPU%", Width: 7},
	{Key: KeyMemory, Title: "MEM%", Width: 6},
	{Key: KeyVirt, Title: "VIRT", Width: 12},
	{Key: KeyRes, Title: "RES", Width: 11},
	{Key: KeyPID, Title: "PID", Width: 7},
	{Key: KeyUsername, Title: "USER", Width: 10},
	{Key: KeyCPUTime, Title: "TIME", Width: 10},
	{Key: KeyThreads, Title: "THR", Width: 4},
	{Key: KeyNice, Title: "NI", Width: 4},
	{Key: KeyStatus, Title: "S", Width: 9},
	{Key: KeyName, Title: "NAME", Width: 0},
}

// notClickable lists columns the dashboard does not offer as sort targets.
var notClickable = map[SortKey]bool{
	KeyVirt:   true,
	KeyRes:    true,
	KeyPID:    true,
	KeyNice:   true,
	KeyStatus: true,
}

// Valid reports whether k names a known column.
func (k SortKey) Valid() bool {
	return ColumnIndex(k) >= 0
}

// Sortable reports whether the dashboard lets the user pick k from the header.
// Sort itself accepts any valid key.
func (k SortKey) Sortable() bool {
	return k.Valid() && !notClickable[k]
}

// Textual reports whether k compares as case-folded text.
func (k SortKey) Textual() bool {
	switch k {
	case KeyName, KeyUsername, KeyStatus:
		return true
	}
	return false
}

// Title returns the column header for k.
func (k SortKey) Title() string {
	if i := ColumnIndex(k); i >= 0 {
		return Columns[i].Title
	}
	return string(k)
}

// ColumnIndex returns the position of k in Columns, or -1.
func ColumnIndex(k SortKey) int {
	for i, c := range Columns {
		if c.Key == k {
			return i
		}
	}
	return -1
}

// SortableKeys returns the header-selectable keys in column order.
func SortableKeys() []SortKey {
	var keys []SortKey
	for _, c := range Columns {
		if c.Key.Sortable() {
			keys = append(keys, c.Key)
		}
	}
	return keys
}

// ParseSortKey accepts a JSON field name or a column title, case-insensitively.
func ParseSortKey(s string) (SortKey, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Columns {
		if norm == string(c.Key) || norm == strings.ToLower(c.Title) {
			return c.Key, nil
		}
	}

	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = string(c.Key)
	}
	return "", errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown sort column '%s'", s),
		"Valid columns: "+strings.Join(names, ", "))
}
