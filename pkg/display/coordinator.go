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
	"time"

	"github.com/walteh/fastcp/pkg/config"
	"github.com/walteh/fastcp/pkg/format"
	"github.com/walteh/fastcp/pkg/progress"
)

const (
	// maintenanceInterval is how often the coordinator wakes up without
	// events to retire long-finished bars. Purely cosmetic housekeeping;
	// correctness never depends on the tick firing.
	maintenanceInterval = 250 * time.Millisecond
	// defaultEvictAfter is how long a finished bar lingers before the
	// maintenance pass may retire it.
	defaultEvictAfter = 2 * time.Second
)

// 🔧 Options configures a coordinator.
type Options struct {
	Cap        int           // max simultaneously rendered item bars (soft)
	TotalItems int           // aggregate bar total; no aggregate when < 2
	LabelWidth int           // display width budget for item labels
	EvictAfter time.Duration // finished-bar retirement age for the tick pass
}

// 🧠 Coordinator is the single consumer of progress events. It owns every
// indicator outright; nothing here is shared with another goroutine.
type Coordinator struct {
	surface   Surface
	opts      Options
	active    []*indicator // insertion order
	aggregate Bar
	completed int
	now       func() time.Time
}

type indicator struct {
	id         progress.ID
	label      string
	bar        Bar
	finished   bool
	failed     bool
	finishedAt time.Time
}

// 🏭 New creates a coordinator rendering onto surface.
func New(surface Surface, opts Options) *Coordinator {
	if opts.Cap <= 0 {
		opts.Cap = config.DefaultDisplayCap
	}
	if opts.LabelWidth <= 0 {
		opts.LabelWidth = config.DefaultLabelWidth
	}
	if opts.EvictAfter <= 0 {
		opts.EvictAfter = defaultEvictAfter
	}

	return &Coordinator{
		surface: surface,
		opts:    opts,
		now:     time.Now,
	}
}

// 🏃 Run consumes events until the channel closes, then finalizes the
// display and returns. Run blocks; callers start it in its own goroutine and
// join it after closing the channel.
func (c *Coordinator) Run(events <-chan progress.Event) {
	c.surface.Start()
	defer c.surface.Stop()

	if c.opts.TotalItems > 1 {
		c.aggregate = c.surface.NewBar("total", int64(c.opts.TotalItems))
	}

	ticker := time.NewTicker(maintenanceInterval)
	defer ticker.Stop()

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				c.finalize()
				return
			}
			c.handle(ev)
		case <-ticker.C:
			c.retireStale(c.now())
		}
	}
}

func (c *Coordinator) handle(ev progress.Event) {
	switch ev := ev.(type) {
	case progress.NewItem:
		c.admit(ev)
	case progress.Advanced:
		// Unknown or already-finished ids are ignored; progress is
		// advisory.
		if ind := c.find(ev.ID); ind != nil && !ind.finished {
			ind.bar.Advance(ev.BytesSoFar)
		}
	case progress.Done:
		if ind := c.find(ev.ID); ind != nil && !ind.finished {
			ind.finished = true
			ind.failed = ev.Failed
			ind.finishedAt = c.now()
			ind.bar.Finish(ind.label, ev.Failed)
		}
		c.completed++
		if c.aggregate != nil {
			c.aggregate.Advance(int64(c.completed))
		}
	}
}

// admit creates an indicator for a new item, making room first when at the
// cap. When nothing has finished yet the cap is simply exceeded: it budgets
// display real estate, it does not throttle workers.
func (c *Coordinator) admit(ev progress.NewItem) {
	if len(c.active) >= c.opts.Cap {
		c.evictOneFinished()
	}

	label := format.ShortenPath(ev.DisplayPath, c.opts.LabelWidth)
	c.active = append(c.active, &indicator{
		id:    ev.ID,
		label: label,
		bar:   c.surface.NewBar(label, ev.TotalSize),
	})
}

// evictOneFinished releases the oldest finished indicator, if any.
func (c *Coordinator) evictOneFinished() {
	for i, ind := range c.active {
		if ind.finished {
			ind.bar.Release()
			c.active = append(c.active[:i], c.active[i+1:]...)
			return
		}
	}
}

// retireStale is the maintenance pass: finished bars past the eviction age
// give their slots back even before a new item needs one.
func (c *Coordinator) retireStale(now time.Time) {
	kept := c.active[:0]
	for _, ind := range c.active {
		if ind.finished && now.Sub(ind.finishedAt) >= c.opts.EvictAfter {
			ind.bar.Release()
			continue
		}
		kept = append(kept, ind)
	}
	c.active = kept
}

// finalize settles everything left after the channel closed: unfinished
// indicators render as finished and the aggregate completes.
func (c *Coordinator) finalize() {
	for _, ind := range c.active {
		if !ind.finished {
			ind.bar.Finish(ind.label, false)
		}
		ind.bar.Release()
	}
	c.active = nil

	if c.aggregate != nil {
		c.aggregate.Advance(int64(c.opts.TotalItems))
		c.aggregate.Finish("total", false)
		c.aggregate.Release()
		c.aggregate = nil
	}
}

func (c *Coordinator) find(id progress.ID) *indicator {
	for _, ind := range c.active {
		if ind.id == id {
			return ind
		}
	}
	return nil
}
