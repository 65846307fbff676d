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

// Package runner wires the pipeline together: enumerate, fan items out to a
// bounded worker pool, and drain progress through the single display
// coordinator. The shutdown order is the contract: join every worker, close
// the channel, join the coordinator.
package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/fastcp/pkg/config"
	"github.com/walteh/fastcp/pkg/copier"
	"github.com/walteh/fastcp/pkg/display"
	"github.com/walteh/fastcp/pkg/enumerate"
	"github.com/walteh/fastcp/pkg/log"
	"github.com/walteh/fastcp/pkg/progress"
)

// 📊 Result summarizes one run. Per-item failures are counted here, not
// propagated as errors.
type Result struct {
	Enumerated int
	Copied     int
	Failed     int
	Bytes      int64
	Elapsed    time.Duration
}

// Rate returns the average transfer rate in bytes per second.
func (r *Result) Rate() float64 {
	secs := r.Elapsed.Seconds()
	if secs <= 0 {
		return 0
	}
	return float64(r.Bytes) / secs
}

// 🏃 Runner executes one copy run.
type Runner struct {
	settings config.Settings
	surface  display.Surface
	reporter *log.Reporter
}

// 🏭 New creates a runner rendering onto surface.
func New(settings config.Settings, surface display.Surface) *Runner {
	return &Runner{settings: settings, surface: surface}
}

// WithReporter attaches a verbose per-item reporter. Pair it with a nop
// surface: the reporter and the live bars both want the terminal.
func (r *Runner) WithReporter(reporter *log.Reporter) *Runner {
	r.reporter = reporter
	return r
}

func (r *Runner) report(item enumerate.Item, fail bool) {
	if r.reporter == nil {
		return
	}
	r.reporter.LogItemOutcome(log.ItemOutcome{
		Path:   item.DestPath,
		Kind:   item.Kind.String(),
		Size:   item.Size,
		Failed: fail,
	})
}

// 🎯 Run copies every source into dest. The returned error is fatal and
// pre-flight only (bad settings, missing source, uncreatable destination);
// once workers start, failures are contained to their items and reported in
// the Result.
func (r *Runner) Run(ctx context.Context, sources []string, dest string) (*Result, error) {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	if err := r.settings.Validate(); err != nil {
		return nil, errors.Errorf("validating settings: %w", err)
	}

	items, err := enumerate.Enumerate(ctx, sources, dest, enumerate.Options{
		Symlinks: r.settings.Symlinks,
		Excludes: r.settings.Excludes,
	})
	if err != nil {
		return nil, errors.Errorf("enumerating sources: %w", err)
	}

	result := &Result{Enumerated: len(items)}
	if len(items) == 0 {
		result.Elapsed = time.Since(start)
		logger.Debug().Msg("nothing to copy")
		return result, nil
	}

	hub := progress.NewHub(r.settings.EventBuffer)

	coordinator := display.New(r.surface, display.Options{
		Cap:        r.settings.DisplayCap,
		TotalItems: len(items),
		LabelWidth: r.settings.LabelWidth,
	})
	coordinatorDone := make(chan struct{})
	go func() {
		coordinator.Run(hub.Events())
		close(coordinatorDone)
	}()

	var copied, failed atomic.Int64
	var bytes atomic.Int64

	cp := copier.New(r.settings.BufferSize)
	group := new(errgroup.Group)
	group.SetLimit(r.settings.Workers)

	for _, item := range items {
		item := item
		group.Go(func() error {
			id := hub.NextID()
			if cerr := cp.Copy(ctx, item, id, hub.Emit); cerr != nil {
				// Bulkhead: the failure stays with this item.
				failed.Add(1)
				logger.Error().
					Str("source", item.SourcePath).
					Str("dest", item.DestPath).
					Err(cerr).
					Msg("item failed")
				r.report(item, true)
				return nil
			}

			copied.Add(1)
			bytes.Add(item.Size)
			r.report(item, false)
			return nil
		})
	}

	// Workers first, then the channel, then the coordinator. Closing the
	// channel before the join would race a worker's Emit against close.
	_ = group.Wait()
	hub.Close()
	<-coordinatorDone

	result.Copied = int(copied.Load())
	result.Failed = int(failed.Load())
	result.Bytes = bytes.Load()
	result.Elapsed = time.Since(start)

	logger.Debug().
		Int("copied", result.Copied).
		Int("failed", result.Failed).
		Int64("bytes", result.Bytes).
		Dur("elapsed", result.Elapsed).
		Msg("run complete")

	return result, nil
}
