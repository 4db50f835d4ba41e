package cli

import (
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/errors"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/source"
)

func TestParseDurationFlag(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		want    time.Duration
		wantErr bool
	}{
		{
			name: "empty string returns zero",
			flag: "",
			want: 0,
		},
		{
			name: "valid seconds",
			flag: "5s",
			want: 5 * time.Second,
		},
		{
			name: "valid milliseconds",
			flag: "500ms",
			want: 500 * time.Millisecond,
		},
		{
			name: "valid complex duration",
			flag: "1m30s",
			want: 90 * time.Second,
		},
		{
			name:    "missing unit",
			flag:    "5",
			wantErr: true,
		},
		{
			name:    "not a duration",
			flag:    "fast",
			wantErr: true,
		},
		{
			name:    "negative duration",
			flag:    "-5s",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDurationFlag("timeout", tt.flag)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseIntervalFlag(t *testing.T) {
	got, err := ParseIntervalFlag("")
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = ParseIntervalFlag("500ms")
	require.NoError(t, err)
	assert.Equal(t, config.MinRefreshInterval, got)

	_, err = ParseIntervalFlag("100ms")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Interval too short")
}

func TestParsePinFlag(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []int32
		wantErr bool
	}{
		{name: "empty", raw: "", want: nil},
		{name: "single", raw: "12", want: []int32{12}},
		{name: "list with spaces", raw: "12, 40 ,7", want: []int32{12, 40, 7}},
		{name: "duplicates dropped", raw: "3,3,1", want: []int32{3, 1}},
		{name: "zero rejected", raw: "0", wantErr: true},
		{name: "text rejected", raw: "12,abc", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePinFlag(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateURLAndLocal(t *testing.T) {
	assert.NoError(t, ValidateURLAndLocal("", false))
	assert.NoError(t, ValidateURLAndLocal("http://x/stats", false))
	assert.NoError(t, ValidateURLAndLocal("", true))

	err := ValidateURLAndLocal("http://x/stats", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be used together")
}

func TestAddSourceAndViewFlags(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	var src SourceFlags
	var view ViewFlags
	AddSourceFlags(cmd, &src)
	AddViewFlags(cmd, &view)

	for _, name := range []string{"url", "local", "timeout", "sort", "asc", "pin"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "missing --%s", name)
	}

	require.NoError(t, cmd.Flags().Set("url", "http://box:8080/stats"))
	require.NoError(t, cmd.Flags().Set("local", "true"))
	require.NoError(t, cmd.Flags().Set("sort", "memory"))
	require.NoError(t, cmd.Flags().Set("asc", "true"))
	require.NoError(t, cmd.Flags().Set("pin", "1,2"))

	assert.Equal(t, "http://box:8080/stats", src.URL)
	assert.True(t, src.Local)
	assert.Equal(t, "memory", view.Sort)
	assert.True(t, view.Asc)
	assert.Equal(t, "1,2", view.Pin)
}

// viewCmd returns a command with view flags registered and set from args.
func viewCmd(t *testing.T, args ...string) (*cobra.Command, *ViewFlags) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	flags := &ViewFlags{}
	AddViewFlags(cmd, flags)
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, flags
}

func TestResolveViewState(t *testing.T) {
	t.Run("config defaults", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.View.Sort = "name"
		cfg.View.Ascending = true
		cfg.View.Pins = []int32{7}

		cmd, flags := viewCmd(t)
		state, err := resolveViewState(cmd, cfg, *flags)
		require.NoError(t, err)

		assert.Equal(t, proctable.KeyName, state.SortKey)
		assert.True(t, state.Ascending)
		assert.True(t, state.Pins.Contains(7))
	})

	t.Run("flags override config", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.View.Ascending = true
		cfg.View.Pins = []int32{7}

		cmd, flags := viewCmd(t, "--sort", "MEM%", "--asc=false", "--pin", "1,2")
		state, err := resolveViewState(cmd, cfg, *flags)
		require.NoError(t, err)

		assert.Equal(t, proctable.KeyMemory, state.SortKey)
		assert.False(t, state.Ascending)
		assert.ElementsMatch(t, []int32{1, 2}, state.Pins.PIDs())
		assert.False(t, state.Pins.Contains(7), "--pin replaces configured pins")
	})

	t.Run("unknown column", func(t *testing.T) {
		cmd, flags := viewCmd(t, "--sort", "colour")
		_, err := resolveViewState(cmd, config.DefaultConfig(), *flags)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown sort column")
	})

	t.Run("column that can't be sorted", func(t *testing.T) {
		cmd, flags := viewCmd(t, "--sort", "pid")
		_, err := resolveViewState(cmd, config.DefaultConfig(), *flags)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "can't be sorted")
	})

	t.Run("bad pin list", func(t *testing.T) {
		cmd, flags := viewCmd(t, "--pin=-3")
		_, err := resolveViewState(cmd, config.DefaultConfig(), *flags)
		require.Error(t, err)
	})
}

func TestThresholdsFrom(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.View.Thresholds.Warning = 40
	cfg.View.Thresholds.Critical = 90

	assert.Equal(t, proctable.Thresholds{Medium: 40, High: 90}, thresholdsFrom(cfg))
}

func TestBuildSource(t *testing.T) {
	cfg := config.DefaultConfig()

	t.Run("config url", func(t *testing.T) {
		src, timeout, err := buildSource(cfg, SourceFlags{}, logger.Noop())
		require.NoError(t, err)
		assert.Equal(t, cfg.Source.URL, src.Describe())
		assert.Equal(t, cfg.Source.Timeout, timeout)
		assert.IsType(t, &source.HTTPSource{}, src)
	})

	t.Run("url and timeout flags", func(t *testing.T) {
		src, timeout, err := buildSource(cfg, SourceFlags{URL: "http://box:9000/stats", Timeout: "750ms"}, logger.Noop())
		require.NoError(t, err)
		assert.Equal(t, "http://box:9000/stats", src.Describe())
		assert.Equal(t, 750*time.Millisecond, timeout)
	})

	t.Run("local", func(t *testing.T) {
		src, _, err := buildSource(cfg, SourceFlags{Local: true}, logger.Noop())
		require.NoError(t, err)
		assert.Equal(t, "local", src.Describe())
		assert.IsType(t, &source.LocalSource{}, src)
	})

	t.Run("url with local", func(t *testing.T) {
		_, _, err := buildSource(cfg, SourceFlags{URL: "http://x/stats", Local: true}, logger.Noop())
		assert.Error(t, err)
	})

	t.Run("bad timeout", func(t *testing.T) {
		_, _, err := buildSource(cfg, SourceFlags{Timeout: "soon"}, logger.Noop())
		assert.Error(t, err)
	})
}

func TestResolvePolicy(t *testing.T) {
	cfg := config.DefaultConfig()

	got, err := resolvePolicy(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, config.PolicySerialize, got)

	got, err = resolvePolicy(cfg, config.PolicyOverlap)
	require.NoError(t, err)
	assert.Equal(t, config.PolicyOverlap, got)

	_, err = resolvePolicy(cfg, "sometimes")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
