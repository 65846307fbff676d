// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package display

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/fastcp/pkg/progress"
)

// fakeSurface records renders so tests can observe the coordinator without a
// terminal.
type fakeSurface struct {
	started  bool
	stopped  bool
	bars     []*fakeBar
	released int
}

func (s *fakeSurface) Start() { s.started = true }
func (s *fakeSurface) Stop()  { s.stopped = true }

func (s *fakeSurface) NewBar(label string, total int64) Bar {
	b := &fakeBar{surface: s, label: label, total: total}
	s.bars = append(s.bars, b)
	return b
}

// live counts bars that hold a render slot.
func (s *fakeSurface) live() int {
	n := 0
	for _, b := range s.bars {
		if !b.released {
			n++
		}
	}
	return n
}

type fakeBar struct {
	surface  *fakeSurface
	label    string
	total    int64
	position int64
	finished bool
	failed   bool
	released bool
}

func (b *fakeBar) Advance(bytesSoFar int64) { b.position = bytesSoFar }

func (b *fakeBar) Finish(label string, failed bool) {
	b.finished = true
	b.failed = failed
}

func (b *fakeBar) Release() {
	b.released = true
	b.surface.released++
}

func newTestCoordinator(opts Options) (*Coordinator, *fakeSurface) {
	surface := &fakeSurface{}
	return New(surface, opts), surface
}

func TestHandleLifecycle(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4, TotalItems: 1})

	c.handle(progress.NewItem{ID: 1, DisplayPath: "a.txt", TotalSize: 10})
	require.Len(t, surface.bars, 1, "NewItem should create a bar")

	c.handle(progress.Advanced{ID: 1, BytesSoFar: 4})
	assert.Equal(t, int64(4), surface.bars[0].position, "Advanced should move the bar")

	c.handle(progress.Advanced{ID: 1, BytesSoFar: 10})
	c.handle(progress.Done{ID: 1})
	assert.True(t, surface.bars[0].finished, "Done should render completion")
	assert.False(t, surface.bars[0].failed)

	// Progress after Done is ignored, not an error.
	c.handle(progress.Advanced{ID: 1, BytesSoFar: 3})
	assert.Equal(t, int64(10), surface.bars[0].position, "finished bars must not move")
}

func TestHandleUnknownIDIgnored(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4})

	c.handle(progress.Advanced{ID: 99, BytesSoFar: 5})
	assert.Empty(t, surface.bars, "advisory progress for unknown ids is dropped silently")
}

func TestCapEvictsOnlyFinished(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 2, TotalItems: 10})

	c.handle(progress.NewItem{ID: 1, DisplayPath: "one", TotalSize: 1})
	c.handle(progress.NewItem{ID: 2, DisplayPath: "two", TotalSize: 1})
	assert.Equal(t, 2, surface.live(), "cap not yet reached")

	// Nothing finished: the cap is a soft budget, the third bar still
	// renders.
	c.handle(progress.NewItem{ID: 3, DisplayPath: "three", TotalSize: 1})
	assert.Equal(t, 3, surface.live(), "soft cap: no finished bar to evict")
	assert.Zero(t, surface.released)

	// Finish the first; the next admit evicts it and only it.
	c.handle(progress.Done{ID: 1})
	c.handle(progress.NewItem{ID: 4, DisplayPath: "four", TotalSize: 1})
	assert.Equal(t, 3, surface.live(), "eviction should free exactly one slot")
	assert.True(t, surface.bars[0].released, "the finished bar is the one evicted")
	assert.False(t, surface.bars[1].released, "unfinished bars are never evicted")
}

func TestCapInvariantUnderInterleavings(t *testing.T) {
	const displayCap = 3
	c, _ := newTestCoordinator(Options{Cap: displayCap})

	// Steady state: every admit beyond the cap is preceded by a finish, so
	// live indicators never exceed the cap.
	for i := 1; i <= 20; i++ {
		c.handle(progress.NewItem{ID: progress.ID(i), DisplayPath: "item", TotalSize: 1})
		if i >= displayCap {
			c.handle(progress.Done{ID: progress.ID(i - displayCap + 1)})
		}
		assert.LessOrEqual(t, len(c.active), displayCap, "live indicators stay within the budget")
	}
}

func TestDoneAdvancesAggregate(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4, TotalItems: 3})

	// Drive Run so the aggregate bar gets created.
	events := make(chan progress.Event, 16)
	done := make(chan struct{})
	go func() {
		c.Run(events)
		close(done)
	}()

	events <- progress.NewItem{ID: 1, DisplayPath: "a", TotalSize: 1}
	events <- progress.Done{ID: 1}
	events <- progress.NewItem{ID: 2, DisplayPath: "b", TotalSize: 1}
	events <- progress.Done{ID: 2, Failed: true}
	close(events)
	<-done

	require.True(t, surface.started, "Run owns the surface lifecycle")
	require.True(t, surface.stopped)

	aggregate := surface.bars[0]
	assert.Equal(t, "total", aggregate.label, "first bar is the aggregate")
	assert.Equal(t, int64(3), aggregate.total)
	assert.Equal(t, int64(3), aggregate.position, "finalize completes the aggregate")
	assert.True(t, aggregate.finished)

	// The failed item renders distinctly but still counts as settled.
	assert.True(t, surface.bars[2].failed, "failed Done renders the failure glyph")
}

func TestNoAggregateForSingleItem(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4, TotalItems: 1})

	events := make(chan progress.Event, 4)
	done := make(chan struct{})
	go func() {
		c.Run(events)
		close(done)
	}()

	events <- progress.NewItem{ID: 1, DisplayPath: "only", TotalSize: 5}
	events <- progress.Done{ID: 1}
	close(events)
	<-done

	require.Len(t, surface.bars, 1, "single-file mode has no aggregate bar")
	assert.Equal(t, "only", surface.bars[0].label)
}

func TestFinalizeSettlesUnfinished(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4})

	c.handle(progress.NewItem{ID: 1, DisplayPath: "stuck", TotalSize: 100})
	c.handle(progress.Advanced{ID: 1, BytesSoFar: 40})
	c.finalize()

	assert.True(t, surface.bars[0].finished, "channel closure renders every remaining bar as finished")
	assert.True(t, surface.bars[0].released, "finalize releases every slot")
	assert.Empty(t, c.active)
}

func TestRetireStale(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4, EvictAfter: time.Second})

	base := time.Unix(1000, 0)
	c.now = func() time.Time { return base }

	c.handle(progress.NewItem{ID: 1, DisplayPath: "old", TotalSize: 1})
	c.handle(progress.NewItem{ID: 2, DisplayPath: "young", TotalSize: 1})
	c.handle(progress.Done{ID: 1})

	// Not old enough yet.
	c.retireStale(base.Add(500 * time.Millisecond))
	assert.False(t, surface.bars[0].released, "finished bars linger until the eviction age")

	c.retireStale(base.Add(2 * time.Second))
	assert.True(t, surface.bars[0].released, "stale finished bars give their slot back on the tick")
	assert.False(t, surface.bars[1].released, "unfinished bars are untouched by maintenance")
}

func TestLabelsAreShortened(t *testing.T) {
	c, surface := newTestCoordinator(Options{Cap: 4, LabelWidth: 12})

	long := "some/extremely/long/path/to/a/file.txt"
	c.handle(progress.NewItem{ID: 1, DisplayPath: long, TotalSize: 1})

	require.Len(t, surface.bars, 1)
	assert.LessOrEqual(t, len([]rune(surface.bars[0].label)), 12, "labels respect the width budget")
	assert.NotEqual(t, long, surface.bars[0].label)
}
