package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rileyhilliard/statdash/internal/config"
	"github.com/rileyhilliard/statdash/internal/export"
	"github.com/rileyhilliard/statdash/internal/logger"
	"github.com/rileyhilliard/statdash/internal/prefs"
	"github.com/rileyhilliard/statdash/internal/proctable"
	"github.com/rileyhilliard/statdash/internal/source"
	"github.com/rileyhilliard/statdash/internal/stats"
	"github.com/rileyhilliard/statdash/internal/ui"
	"github.com/rileyhilliard/statdash/internal/util"
)

// Defaults used when Options leaves a duration unset.
const (
	DefaultInterval = 2 * time.Second
	DefaultClock    = time.Second
	DefaultTimeout  = 5 * time.Second
)

// Preferences persists the auto-refresh toggle. *prefs.Store satisfies it.
type Preferences interface {
	Bool(key string, def bool) bool
	SetBool(key string, value bool) error
}

// Options configures a dashboard Model.
type Options struct {
	Source source.StatsSource

	Interval time.Duration
	Clock    time.Duration
	Timeout  time.Duration

	// Policy is config.PolicySerialize (default) or config.PolicyOverlap.
	Policy string

	State      proctable.ViewState
	Thresholds proctable.Thresholds

	// Prefs may be nil, in which case auto-refresh starts on and is not saved.
	Prefs     Preferences
	ExportDir string

	Logger  logger.Logger
	Context context.Context
	Now     func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.Clock <= 0 {
		o.Clock = DefaultClock
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Policy == "" {
		o.Policy = config.PolicySerialize
	}
	if !o.State.SortKey.Valid() {
		o.State.SortKey = proctable.KeyCPU
	}
	if o.Thresholds == (proctable.Thresholds{}) {
		o.Thresholds = proctable.DefaultThresholds
	}
	if o.Logger == nil {
		o.Logger = logger.Noop()
	}
	if o.Context == nil {
		o.Context = context.Background()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Model is the Bubble Tea model for the dashboard.
type Model struct {
	ctx        context.Context
	source     source.StatsSource
	prefs      Preferences
	log        logger.Logger
	now        func() time.Time
	interval   time.Duration
	clock      time.Duration
	timeout    time.Duration
	policy     string
	thresholds proctable.Thresholds
	exportDir  string

	store   proctable.Store
	state   proctable.ViewState
	view    proctable.TableView
	history *History

	// Polling. gen invalidates pending poll ticks when auto-refresh is
	// switched off; seq numbers every request.
	autoRefresh bool
	gen         int
	seq         int
	inFlight    int
	lastErr     error

	clockNow time.Time
	notice   string
	noticeOK bool

	focus       int
	selected    int
	selectedPID int32

	width    int
	height   int
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	showHelp bool
	quitting bool
}

// pollTickMsg fires on the refresh interval. Ticks from an older
// generation are ignored.
type pollTickMsg struct {
	gen int
}

// clockTickMsg advances the header clock.
type clockTickMsg time.Time

// snapshotMsg carries the outcome of one poll.
type snapshotMsg struct {
	seq  int
	snap *stats.Snapshot
	err  error
	at   time.Time
	took time.Duration
}

// exportMsg reports a finished CSV export.
type exportMsg struct {
	path string
	err  error
}

// NewModel builds a dashboard. The first poll is counted as in flight
// immediately; Init issues it.
func NewModel(opts Options) Model {
	opts = opts.withDefaults()

	auto := true
	if opts.Prefs != nil {
		auto = opts.Prefs.Bool(prefs.AutoRefresh, true)
	}

	m := Model{
		ctx:         opts.Context,
		source:      opts.Source,
		prefs:       opts.Prefs,
		log:         opts.Logger,
		now:         opts.Now,
		interval:    opts.Interval,
		clock:       opts.Clock,
		timeout:     opts.Timeout,
		policy:      opts.Policy,
		thresholds:  opts.Thresholds,
		exportDir:   opts.ExportDir,
		state:       opts.State,
		history:     NewHistory(DefaultHistorySize),
		autoRefresh: auto,
		seq:         1,
		inFlight:    1,
		clockNow:    opts.Now(),
		viewport:    viewport.New(0, 0),
		spinner:     ui.NewSpinner(),
		help:        help.New(),
		keys:        DefaultKeyMap(),
	}
	m.focus = m.focusIndex(m.state.SortKey)
	m.rerender()
	return m
}

// Init issues the first poll and starts both timers.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.fetchCmd(m.seq),
		m.clockTickCmd(),
		m.spinner.Tick,
	}
	if m.autoRefresh {
		cmds = append(cmds, m.pollTickCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if handled, cmd := m.HandleKeyMsg(msg); handled {
			return m, cmd
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.layout()

	case pollTickMsg:
		if msg.gen != m.gen || !m.autoRefresh {
			return m, nil
		}
		return m, tea.Batch(m.requestPoll(), m.pollTickCmd())

	case clockTickMsg:
		m.clockNow = time.Time(msg)
		return m, m.clockTickCmd()

	case snapshotMsg:
		m.applySnapshot(msg)

	case exportMsg:
		if msg.err != nil {
			m.log.Error("export failed: %v", msg.err)
			m.setNotice("export failed: "+msg.err.Error(), false)
		} else {
			m.log.Info("exported process table to %s", msg.path)
			m.setNotice("saved "+msg.path, true)
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the dashboard.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.showHelp {
		return m.renderHelpOverlay()
	}
	return m.renderDashboard()
}

// requestPoll starts a fetch unless the serialize policy finds one in flight.
func (m *Model) requestPoll() tea.Cmd {
	if m.policy != config.PolicyOverlap && m.inFlight > 0 {
		m.log.Debug("poll skipped, request #%d still in flight", m.seq)
		return nil
	}
	m.seq++
	m.inFlight++
	return m.fetchCmd(m.seq)
}

// fetchCmd runs one FetchSnapshot bounded by the source timeout.
func (m Model) fetchCmd(seq int) tea.Cmd {
	ctx, src, timeout, now := m.ctx, m.source, m.timeout, m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		start := now()
		snap, err := src.FetchSnapshot(ctx)
		at := now()
		return snapshotMsg{seq: seq, snap: snap, err: err, at: at, took: at.Sub(start)}
	}
}

func (m Model) pollTickCmd() tea.Cmd {
	gen := m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return pollTickMsg{gen: gen}
	})
}

func (m Model) clockTickCmd() tea.Cmd {
	return tea.Tick(m.clock, func(t time.Time) tea.Msg {
		return clockTickMsg(t)
	})
}

// applySnapshot stores a successful poll. A failed poll keeps the previous
// snapshot and view state and only records the error.
func (m *Model) applySnapshot(msg snapshotMsg) {
	if m.inFlight > 0 {
		m.inFlight--
	}

	if msg.err == nil && msg.snap == nil {
		msg.err = source.NoSnapshot(m.source)
	}
	if msg.err != nil {
		m.lastErr = msg.err
		m.log.Warn("poll #%d failed after %s: %v", msg.seq, msg.took, msg.err)
		return
	}

	m.lastErr = nil
	m.store.Replace(msg.snap, msg.at)
	m.history.Push(msg.snap)
	m.log.Debug("poll #%d applied in %s, %d processes", msg.seq, msg.took, len(msg.snap.Processes))
	m.rerender()
	m.layout()
}

// toggleAutoRefresh flips the timer, persists the choice and re-arms the
// timer when turning it back on. An in-flight poll is left alone.
func (m *Model) toggleAutoRefresh() tea.Cmd {
	m.autoRefresh = !m.autoRefresh
	m.gen++

	if m.prefs != nil {
		if err := m.prefs.SetBool(prefs.AutoRefresh, m.autoRefresh); err != nil {
			m.log.Warn("couldn't save auto-refresh preference: %v", err)
		}
	}

	if m.autoRefresh {
		m.setNotice("auto-refresh on", true)
		return m.pollTickCmd()
	}
	m.setNotice("auto-refresh paused", true)
	return nil
}

func (m *Model) exportCmd() tea.Cmd {
	if !m.store.Loaded() {
		m.setNotice("nothing to export yet", false)
		return nil
	}
	view, dir, at := m.view, m.exportDir, m.now()
	return func() tea.Msg {
		path, err := export.SaveTable(dir, view, at)
		return exportMsg{path: path, err: err}
	}
}

func (m *Model) setNotice(text string, ok bool) {
	m.notice = text
	m.noticeOK = ok
}

// rerender rebuilds the table view from the store and keeps the cursor on
// the same pid when it is still listed.
func (m *Model) rerender() {
	m.view = proctable.Render(m.store.Records(), m.state)

	rows := m.view.Rows()
	for i, r := range rows {
		if r.PID == m.selectedPID {
			m.selected = i
			m.syncViewport()
			return
		}
	}
	m.selectIndex(m.selected)
}

func (m *Model) selectIndex(i int) {
	rows := m.view.Rows()
	if len(rows) == 0 {
		m.selected = 0
		m.selectedPID = 0
		m.syncViewport()
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(rows) {
		i = len(rows) - 1
	}
	m.selected = i
	m.selectedPID = rows[i].PID
	m.syncViewport()
}

func (m *Model) moveSelection(delta int) {
	m.selectIndex(m.selected + delta)
}

func (m *Model) togglePinSelected() {
	rows := m.view.Rows()
	if len(rows) == 0 {
		return
	}
	pid := rows[m.selected].PID
	m.state = m.state.TogglePin(pid)
	m.selectedPID = pid
	m.rerender()
	m.layout()
}

// clearPins drops every pin, which is the only way to unpin a pid that has
// exited.
func (m *Model) clearPins() {
	n := m.state.Pins.Len()
	if n == 0 {
		return
	}
	m.state = m.state.ClearPins()
	m.rerender()
	m.layout()
	m.setNotice(fmt.Sprintf("unpinned %d %s", n, util.Pluralize(n, "process", "processes")), true)
}

func (m *Model) sortBy(key proctable.SortKey) {
	if !key.Valid() {
		return
	}
	m.state = m.state.ToggleSort(key)
	if key.Sortable() {
		m.focus = m.focusIndex(key)
	}
	m.rerender()
}

// sortByNumber maps "1".."9" and "0" (tenth) onto the sortable columns.
func (m *Model) sortByNumber(digit string) {
	if len(digit) != 1 || digit[0] < '0' || digit[0] > '9' {
		return
	}
	n := int(digit[0] - '0')
	if n == 0 {
		n = 10
	}
	keys := proctable.SortableKeys()
	if n > len(keys) {
		return
	}
	m.sortBy(keys[n-1])
}

func (m *Model) moveFocus(delta int) {
	keys := proctable.SortableKeys()
	m.focus = (m.focus + delta + len(keys)) % len(keys)
}

// FocusedKey is the column that s/enter sorts by.
func (m Model) FocusedKey() proctable.SortKey {
	return proctable.SortableKeys()[m.focus]
}

func (m Model) focusIndex(key proctable.SortKey) int {
	for i, k := range proctable.SortableKeys() {
		if k == key {
			return i
		}
	}
	return 0
}

// layout sizes the process viewport to whatever the summary leaves free.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}
	used := lipgloss.Height(m.renderTop()) + 1 // footer
	h := m.height - used
	if h < 3 {
		h = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	m.syncViewport()
}

// syncViewport refreshes the process table content and scrolls the
// selected row into view.
func (m *Model) syncViewport() {
	content, line := m.renderProcesses()
	m.viewport.SetContent(content)
	if line < 0 || m.viewport.Height <= 0 {
		return
	}
	switch {
	case line < m.viewport.YOffset:
		m.viewport.SetYOffset(line)
	case line >= m.viewport.YOffset+m.viewport.Height:
		m.viewport.SetYOffset(line - m.viewport.Height + 1)
	}
}

func (m *Model) scrollBy(lines int) {
	m.viewport.SetYOffset(m.viewport.YOffset + lines)
}

// State returns the current view state.
func (m Model) State() proctable.ViewState {
	return m.state
}

// AutoRefresh reports whether the poll timer is running.
func (m Model) AutoRefresh() bool {
	return m.autoRefresh
}

// LastError is the error from the most recent poll, or nil after a success.
func (m Model) LastError() error {
	return m.lastErr
}

// SelectedPID returns the pid under the cursor, or 0 when the table is empty.
func (m Model) SelectedPID() int32 {
	return m.selectedPID
}
