package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"reservation-monitor/config"
	"reservation-monitor/models"
	"reservation-monitor/storage"
	"reservation-monitor/utils"

	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	slots map[string][]string
	errs  map[string]error
	calls []string

	// latency simulates page load time; starts and ends record each call
	latency time.Duration
	starts  []time.Time
	ends    []time.Time
}

func (f *fakeExtractor) Extract(ctx context.Context, target models.Target, date string) ([]string, error) {
	key := models.StoreKey(target, date)
	f.calls = append(f.calls, key)
	f.starts = append(f.starts, time.Now())
	if f.latency > 0 {
		time.Sleep(f.latency)
	}
	defer func() { f.ends = append(f.ends, time.Now()) }()
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.slots[key], nil
}

type memStore struct {
	state   *models.State
	loadErr error
	saveErr error
	saved   *models.State
}

func (s *memStore) Load(ctx context.Context) (*models.State, error) {
	if s.loadErr != nil {
		return models.NewState(), s.loadErr
	}
	if s.state == nil {
		return models.NewState(), nil
	}
	return s.state, nil
}

func (s *memStore) Save(ctx context.Context, state *models.State) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = state
	return nil
}

func (s *memStore) Close() error { return nil }

type memSink struct {
	findings []models.Finding
	err      error
}

func (s *memSink) SaveFindings(findings []models.Finding, runAt time.Time) error {
	s.findings = append(s.findings, findings...)
	return s.err
}

var (
	otMarksman = models.Target{Name: "The Marksman", Area: "Shoreditch", Platform: models.PlatformOpenTable, Locator: "https://www.opentable.co.uk/r/the-marksman-hackney-london"}
	resyOak    = models.Target{Name: "The Royal Oak Marylebone", Area: "Marylebone", Platform: models.PlatformResy, Locator: "the-royal-oak-marylebone", City: "lon"}
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Targets = []models.Target{otMarksman, resyOak}
	cfg.Dates = []string{"2026-02-28", "2026-03-01"}
	cfg.RateLimitDelay = 0
	return cfg
}

func newTestMonitor(ext SlotExtractor, store *memStore, sink *memSink) (*Monitor, *bytes.Buffer) {
	var out bytes.Buffer
	var history storage.FindingSink
	if sink != nil {
		history = sink
	}
	m := NewMonitor(testConfig(), ext, store, history, NewReporter(&out), utils.Discard())
	m.now = func() time.Time { return time.Date(2026, 2, 27, 18, 0, 0, 0, time.UTC) }
	return m, &out
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	return lines[len(lines)-1]
}

func TestMonitorVisitsTargetsThenDates(t *testing.T) {
	ext := &fakeExtractor{}
	m, _ := newTestMonitor(ext, &memStore{}, nil)

	_, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{
		"The Marksman|opentable|2026-02-28",
		"The Marksman|opentable|2026-03-01",
		"The Royal Oak Marylebone|resy|2026-02-28",
		"The Royal Oak Marylebone|resy|2026-03-01",
	}, ext.calls)
}

func TestMonitorReportsNewSlotsAndSaves(t *testing.T) {
	ext := &fakeExtractor{slots: map[string][]string{
		"The Marksman|opentable|2026-02-28":        {" 19:00", "19:30 "},
		"The Royal Oak Marylebone|resy|2026-03-01": {"18:00"},
	}}
	prior := models.NewState()
	prior.Found["The Royal Oak Marylebone|resy|2026-03-01"] = []string{"18:00"}
	prior.Found["The Royal Oak Marylebone|resy|2026-02-28"] = []string{"21:00"}
	store := &memStore{state: prior}
	sink := &memSink{}

	m, out := newTestMonitor(ext, store, sink)
	res, err := m.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Findings, 1)
	f := res.Findings[0]
	require.Equal(t, otMarksman, f.Target)
	require.Equal(t, []string{"19:00", "19:30"}, f.Slots)
	require.True(t, f.IsNew)

	require.NotNil(t, store.saved)
	require.Equal(t, map[string][]string{
		"The Marksman|opentable|2026-02-28":        {"19:00", "19:30"},
		"The Royal Oak Marylebone|resy|2026-03-01": {"18:00"},
		"The Royal Oak Marylebone|resy|2026-02-28": {"21:00"},
	}, store.saved.Found)
	require.Equal(t, time.Date(2026, 2, 27, 18, 0, 0, 0, time.UTC), store.saved.LastRun)

	require.Equal(t, res.Findings, sink.findings)

	text := out.String()
	require.Contains(t, text, "  Checking The Marksman (opentable) on 2026-02-28... ✅ 2 slot(s): 19:00, 19:30\n")
	require.Contains(t, text, "  Checking The Marksman (opentable) on 2026-03-01... ❌ None\n")
	require.Contains(t, text, "  Checking The Royal Oak Marylebone (resy) on 2026-03-01... ✅ 1 slot(s): 18:00\n")
	require.Contains(t, text, "🎉 NEW AVAILABILITY FOUND:")
	require.Contains(t, text, "  🍽️  The Marksman (Shoreditch) — Saturday 28 February\n")
	require.Equal(t, "NOTIFY:The Marksman on Sat 28 Feb (19:00/19:30) via opentable", lastLine(text))

	require.Equal(t, 4, res.Summary.Checks)
	require.Equal(t, 2, res.Summary.ChecksWithSlots)
	require.Equal(t, 1, res.Summary.Findings)
}

func TestMonitorExtractionErrorIsEmptyResult(t *testing.T) {
	ext := &fakeExtractor{
		slots: map[string][]string{"The Royal Oak Marylebone|resy|2026-02-28": {"19:00"}},
		errs:  map[string]error{"The Marksman|opentable|2026-02-28": errors.New("navigation timeout")},
	}
	prior := models.NewState()
	prior.Found["The Marksman|opentable|2026-02-28"] = []string{"20:00"}
	store := &memStore{state: prior}

	m, out := newTestMonitor(ext, store, nil)
	res, err := m.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, ext.calls, 4, "a failing pair must not abort the run")
	require.Equal(t, 1, res.Summary.Failures)
	require.Equal(t, []string{"20:00"}, store.saved.Found["The Marksman|opentable|2026-02-28"])
	require.Contains(t, out.String(), "on 2026-02-28... ❌ None")
	require.Len(t, res.Findings, 1)
}

func TestMonitorNoFindings(t *testing.T) {
	m, out := newTestMonitor(&fakeExtractor{}, &memStore{}, nil)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, res.Findings)
	require.Contains(t, out.String(), "No new availability found.")
	require.Equal(t, "NOTIFY:none", lastLine(out.String()))
}

func TestMonitorUnreadableStateStartsFresh(t *testing.T) {
	ext := &fakeExtractor{slots: map[string][]string{"The Marksman|opentable|2026-03-01": {"19:00"}}}
	store := &memStore{loadErr: errors.New("corrupt")}

	m, _ := newTestMonitor(ext, store, nil)
	res, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, res.Findings, 1)
	require.Equal(t, []string{"19:00"}, store.saved.Found["The Marksman|opentable|2026-03-01"])
}

func TestMonitorSaveFailureIsFatal(t *testing.T) {
	store := &memStore{saveErr: errors.New("read-only file system")}
	m, out := newTestMonitor(&fakeExtractor{}, store, nil)

	res, err := m.Run(context.Background())
	require.Error(t, err)
	require.Nil(t, res)
	require.NotContains(t, out.String(), "NOTIFY:")
}

func TestMonitorHistoryFailureIsNotFatal(t *testing.T) {
	ext := &fakeExtractor{slots: map[string][]string{"The Marksman|opentable|2026-03-01": {"19:00"}}}
	sink := &memSink{err: errors.New("disk full")}
	m, out := newTestMonitor(ext, &memStore{}, sink)

	_, err := m.Run(context.Background())
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(lastLine(out.String()), "NOTIFY:The Marksman on Sun 1 Mar"))
}

func TestMonitorStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := &memStore{}
	m, _ := newTestMonitor(&fakeExtractor{}, store, nil)

	_, err := m.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Nil(t, store.saved)
}

func TestMonitorSecondRunIsQuiet(t *testing.T) {
	ext := &fakeExtractor{slots: map[string][]string{"The Marksman|opentable|2026-02-28": {"19:00"}}}
	store := &memStore{}

	m, _ := newTestMonitor(ext, store, nil)
	first, err := m.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, first.Findings, 1)

	store.state = store.saved
	m2, out := newTestMonitor(ext, store, nil)
	second, err := m2.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, second.Findings)
	require.Equal(t, "NOTIFY:none", lastLine(out.String()))
}

func TestMonitorPausesAfterEverySlowCheck(t *testing.T) {
	const pause = 80 * time.Millisecond
	ext := &fakeExtractor{latency: 2 * pause}
	cfg := testConfig()
	cfg.RateLimitDelay = int(pause / time.Millisecond)

	var out bytes.Buffer
	m := NewMonitor(cfg, ext, &memStore{}, nil, NewReporter(&out), utils.Discard())
	_, err := m.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, ext.starts, 4)
	for i := 1; i < len(ext.starts); i++ {
		gap := ext.starts[i].Sub(ext.ends[i-1])
		require.GreaterOrEqual(t, gap, pause-5*time.Millisecond, "gap before check %d", i)
	}
}

func TestMonitorCancelledDuringPause(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	ext := &fakeExtractor{}
	cfg := testConfig()
	cfg.RateLimitDelay = 10_000
	store := &memStore{}

	var out bytes.Buffer
	m := NewMonitor(cfg, ext, store, nil, NewReporter(&out), utils.Discard())
	time.AfterFunc(50*time.Millisecond, cancel)

	_, err := m.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, ext.calls, 1)
	require.Nil(t, store.saved)
}
