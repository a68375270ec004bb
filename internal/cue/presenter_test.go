package cue

import (
	"sync"
	"testing"
	"time"

	"github.com/silasdani/bandaid/internal/model"
)

// changeLog records onChange calls for assertions.
type changeLog struct {
	mu      sync.Mutex
	changes []*model.Cue
}

func (l *changeLog) record(c *model.Cue) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.changes = append(l.changes, c)
}

func (l *changeLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.changes)
}

func (l *changeLog) last() *model.Cue {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.changes) == 0 {
		return nil
	}
	return l.changes[len(l.changes)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestShowThenExpireWithDefaultDuration(t *testing.T) {
	t.Parallel()
	log := &changeLog{}
	p := NewPresenter(50*time.Millisecond, log.record)
	defer p.Stop()

	p.Show(model.Cue{Text: "X2 Ref"})
	if got := p.Current(); got == nil || got.Text != "X2 Ref" {
		t.Fatalf("Current after Show: got %v", got)
	}

	waitFor(t, func() bool { return p.Current() == nil })
	if last := log.last(); last != nil {
		t.Errorf("final change: got %v, want nil", last)
	}
}

func TestExplicitDurationOverridesDefault(t *testing.T) {
	t.Parallel()
	p := NewPresenter(10*time.Second, func(*model.Cue) {})
	defer p.Stop()

	p.Show(model.Cue{Text: "short", Duration: 40})
	waitFor(t, func() bool { return p.Current() == nil })
}

func TestNewCueSupersedesPendingExpiry(t *testing.T) {
	t.Parallel()
	p := NewPresenter(time.Second, func(*model.Cue) {})
	defer p.Stop()

	p.Show(model.Cue{Text: "first", Duration: 40})
	p.Show(model.Cue{Text: "second", Duration: 5000})

	// The first cue's timer must not clear the second cue.
	time.Sleep(150 * time.Millisecond)
	got := p.Current()
	if got == nil || got.Text != "second" {
		t.Errorf("Current: got %v, want second cue still visible", got)
	}
}

func TestEmptyTextClearsImmediately(t *testing.T) {
	t.Parallel()
	log := &changeLog{}
	p := NewPresenter(time.Second, log.record)
	defer p.Stop()

	p.Show(model.Cue{Text: "visible", Duration: 5000})
	p.Show(model.Cue{Text: ""})

	if got := p.Current(); got != nil {
		t.Errorf("Current after empty cue: got %v, want nil", got)
	}
	if last := log.last(); last != nil {
		t.Errorf("last change: got %v, want nil", last)
	}
}

func TestClearCancelsPendingExpiry(t *testing.T) {
	t.Parallel()
	log := &changeLog{}
	p := NewPresenter(time.Second, log.record)
	defer p.Stop()

	p.Show(model.Cue{Text: "visible", Duration: 40})
	p.Clear()
	if got := p.Current(); got != nil {
		t.Fatalf("Current after Clear: got %v, want nil", got)
	}

	// The cancelled timer must not fire a second clear notification.
	calls := log.len()
	time.Sleep(120 * time.Millisecond)
	if got := log.len(); got != calls {
		t.Errorf("changes after Clear: got %d, want %d", got, calls)
	}
}

func TestClearWhenNothingVisibleIsSilent(t *testing.T) {
	t.Parallel()
	log := &changeLog{}
	p := NewPresenter(time.Second, log.record)
	defer p.Stop()

	p.Clear()
	if got := log.len(); got != 0 {
		t.Errorf("changes: got %d, want 0", got)
	}
}

func TestStopKeepsVisibleCue(t *testing.T) {
	t.Parallel()
	p := NewPresenter(time.Second, func(*model.Cue) {})

	p.Show(model.Cue{Text: "visible", Duration: 40})
	p.Stop()

	time.Sleep(120 * time.Millisecond)
	if got := p.Current(); got == nil || got.Text != "visible" {
		t.Errorf("Current after Stop: got %v, want cue untouched", got)
	}
}
