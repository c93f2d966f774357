// Package progress renders terminal progress for a pipeline run. The noop
// implementation keeps piped or scripted invocations quiet.
package progress

import (
	"sync/atomic"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Tracker follows one pipeline run through its stages.
type Tracker interface {
	Stage(name string) // mark the start of a named stage
	Advance()          // mark the current stage complete
	Done()
}

// Manager creates trackers and owns the terminal output.
type Manager interface {
	StartRun(stages int) Tracker
	Wait()
}

// MPBManager implements Manager using the mpb multi-progress-bar library.
type MPBManager struct {
	container *mpb.Progress
}

// NewMPBManager creates an mpb-based progress manager.
func NewMPBManager() *MPBManager {
	return &MPBManager{container: mpb.New(mpb.WithWidth(60))}
}

func (m *MPBManager) StartRun(stages int) Tracker {
	stageName := &atomic.Value{}
	stageName.Store("starting")

	bar := m.container.AddBar(int64(stages),
		mpb.PrependDecorators(
			decor.Name("bedsmap ", decor.WCSyncSpaceR),
			decor.CountersNoUnit("%d/%d stages"),
		),
		mpb.AppendDecorators(
			decor.Any(func(decor.Statistics) string {
				return stageName.Load().(string)
			}),
		),
	)

	return &mpbTracker{bar: bar, stageName: stageName}
}

func (m *MPBManager) Wait() { m.container.Wait() }

type mpbTracker struct {
	bar       *mpb.Bar
	stageName *atomic.Value
}

func (t *mpbTracker) Stage(name string) { t.stageName.Store(name) }
func (t *mpbTracker) Advance()          { t.bar.Increment() }

func (t *mpbTracker) Done() {
	t.stageName.Store("done")
	t.bar.SetTotal(-1, true)
}

// NoopManager discards all progress output.
type NoopManager struct{}

func (NoopManager) StartRun(int) Tracker { return noopTracker{} }
func (NoopManager) Wait()                {}

type noopTracker struct{}

func (noopTracker) Stage(string) {}
func (noopTracker) Advance()     {}
func (noopTracker) Done()        {}
