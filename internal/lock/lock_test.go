package lock

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLockInfo_NewLockInfo(t *testing.T) {
	info := NewLockInfo("statdash export")

	assert.NotEmpty(t, info.User)
	assert.NotEmpty(t, info.Hostname)
	assert.Equal(t, os.Getpid(), info.PID)
	assert.Equal(t, "statdash export", info.Command)
	assert.WithinDuration(t, time.Now(), info.Started, time.Second)
}

func TestLockInfo_Age(t *testing.T) {
	info := &LockInfo{Started: time.Now().Add(-5 * time.Minute)}

	age := info.Age()
	assert.InDelta(t, float64(5*time.Minute), float64(age), float64(time.Second))
}

func TestLockInfo_Marshal(t *testing.T) {
	info := &LockInfo{
		User:     "dev",
		Hostname: "box",
		Started:  time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		PID:      4242,
	}

	data, err := info.Marshal()
	require.NoError(t, err)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "dev", raw["user"])
	assert.NotContains(t, raw, "command", "empty command is omitted")

	parsed, err := ParseLockInfo(data)
	require.NoError(t, err)
	assert.True(t, info.Started.Equal(parsed.Started))
}

func TestParseLockInfo_Invalid(t *testing.T) {
	for _, data := range [][]byte{[]byte("not json"), nil} {
		_, err := ParseLockInfo(data)
		assert.Error(t, err)
	}
}

func TestLockInfo_String(t *testing.T) {
	tests := []struct {
		name string
		info LockInfo
		want string
	}{
		{
			name: "without command",
			info: LockInfo{User: "dev", Hostname: "box", PID: 12},
			want: "dev@box (pid 12)",
		},
		{
			name: "with command",
			info: LockInfo{User: "dev", Hostname: "box", PID: 12, Command: "statdash export"},
			want: "dev@box (pid 12, statdash export)",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "/tmp/stats.csv.lock", PathFor("/tmp/stats.csv"))
}

func TestTryAcquire_Lifecycle(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stats.csv.lock")

	l, err := TryAcquire(dir, Options{Command: "first"})
	require.NoError(t, err)
	assert.DirExists(t, dir)
	assert.FileExists(t, filepath.Join(dir, infoFileName))

	_, err = TryAcquire(dir, Options{Command: "second"})
	assert.ErrorIs(t, err, ErrLocked)
	assert.Contains(t, Holder(dir), "first")

	require.NoError(t, l.Release())
	assert.NoDirExists(t, dir)

	l2, err := TryAcquire(dir, Options{})
	require.NoError(t, err)
	require.NoError(t, l2.Release())
}

func TestTryAcquire_CreatesParentDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deeper", "out.csv.lock")

	l, err := TryAcquire(dir, Options{})
	require.NoError(t, err)
	defer l.Release()
	assert.DirExists(t, dir)
}

// writeHeldLock creates a lock directory whose holder started at started.
func writeHeldLock(t *testing.T, dir string, started time.Time) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	data, err := (&LockInfo{User: "other", Hostname: "box", PID: 1, Started: started}).Marshal()
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, infoFileName), data, 0644))
}

func TestTryAcquire_Stale(t *testing.T) {
	tests := []struct {
		name    string
		age     time.Duration
		stale   time.Duration
		wantErr bool
	}{
		{name: "stale lock removed", age: 2 * time.Hour, stale: time.Hour},
		{name: "fresh lock kept", age: time.Minute, stale: time.Hour, wantErr: true},
		{name: "zero threshold never stale", age: 48 * time.Hour, stale: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := filepath.Join(t.TempDir(), "x.lock")
			writeHeldLock(t, dir, time.Now().Add(-tt.age))

			l, err := TryAcquire(dir, Options{Stale: tt.stale})
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrLocked)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, os.Getpid(), l.Info.PID)
		})
	}
}

func TestIsLockStale_UnreadableInfo(t *testing.T) {
	dir := t.TempDir()
	assert.False(t, isLockStale(filepath.Join(dir, "missing.json"), time.Second))

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	assert.False(t, isLockStale(bad, time.Second))
}

func TestTryAcquire_StaleReplacedBeforeRemoval(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	writeHeldLock(t, dir, time.Now().Add(-2*time.Hour))

	// Another process removes the stale lock and takes a fresh one after
	// this one has judged it stale.
	fresh := time.Now()
	staleCheckDone = func() {
		require.NoError(t, os.RemoveAll(dir))
		writeHeldLock(t, dir, fresh)
	}
	t.Cleanup(func() { staleCheckDone = func() {} })

	_, err := TryAcquire(dir, Options{Stale: time.Hour})
	assert.ErrorIs(t, err, ErrLocked)

	holder, err := readLockInfo(filepath.Join(dir, infoFileName))
	require.NoError(t, err)
	assert.True(t, holder.Started.Equal(fresh), "fresh holder must survive")

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.lock", entries[0].Name())
}

func TestTryAcquire_StaleLeavesNoLeftovers(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "x.lock")
	writeHeldLock(t, dir, time.Now().Add(-2*time.Hour))

	l, err := TryAcquire(dir, Options{Stale: time.Hour})
	require.NoError(t, err)
	defer l.Release()

	entries, err := os.ReadDir(filepath.Dir(dir))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "x.lock", entries[0].Name())
}

func TestAcquire_TimesOutWithHolder(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stats.csv.lock")
	writeHeldLock(t, dir, time.Now())

	start := time.Now()
	_, err := Acquire(context.Background(), dir, Options{
		Timeout: 50 * time.Millisecond,
		Retry:   10 * time.Millisecond,
	})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "other@box"), err.Error())
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestAcquire_WaitsForRelease(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stats.csv.lock")
	held, err := TryAcquire(dir, Options{})
	require.NoError(t, err)

	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = held.Release()
	}()

	l, err := Acquire(context.Background(), dir, Options{
		Timeout: 2 * time.Second,
		Retry:   5 * time.Millisecond,
	})
	require.NoError(t, err)
	require.NoError(t, l.Release())
}

func TestAcquire_ContextCancelled(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "stats.csv.lock")
	writeHeldLock(t, dir, time.Now())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Acquire(ctx, dir, Options{Timeout: time.Minute})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRelease_Nil(t *testing.T) {
	var l *Lock
	assert.NoError(t, l.Release())
}

func TestHolder_UnknownWhenNoFile(t *testing.T) {
	assert.Equal(t, "unknown", Holder(t.TempDir()))
}
