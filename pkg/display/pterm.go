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
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

// 🎨 ptermSurface renders bars through a pterm MultiPrinter. MultiPrinter
// lines cannot be destroyed once created, so released slots go on a freelist
// and the next bar overwrites the old line instead of adding one. That is
// what keeps the on-screen area bounded by the display cap.
type ptermSurface struct {
	multi pterm.MultiPrinter
	free  []io.Writer
}

// NewPtermSurface returns the live terminal surface.
func NewPtermSurface() Surface {
	return &ptermSurface{}
}

func (s *ptermSurface) Start() {
	s.multi = pterm.DefaultMultiPrinter
	_, _ = s.multi.Start()
}

func (s *ptermSurface) Stop() {
	_, _ = s.multi.Stop()
}

func (s *ptermSurface) NewBar(label string, total int64) Bar {
	var w io.Writer
	if n := len(s.free); n > 0 {
		w = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		w = s.multi.NewWriter()
	}

	// pterm needs a positive total; zero-byte items render as a 1-step bar
	// that Finish fills.
	t := total
	if t < 1 {
		t = 1
	}

	pb, _ := pterm.DefaultProgressbar.
		WithTotal(int(t)).
		WithWriter(w).
		WithShowCount(false).
		WithShowElapsedTime(false).
		Start(label)

	return &ptermBar{surface: s, writer: w, bar: pb, total: t}
}

type ptermBar struct {
	surface *ptermSurface
	writer  io.Writer
	bar     *pterm.ProgressbarPrinter
	current int64
	total   int64
}

func (b *ptermBar) Advance(bytesSoFar int64) {
	if bytesSoFar > b.total {
		bytesSoFar = b.total
	}
	if delta := bytesSoFar - b.current; delta > 0 {
		b.bar.Add(int(delta))
		b.current = bytesSoFar
	}
}

func (b *ptermBar) Finish(label string, failed bool) {
	glyph := color.GreenString("✓")
	if failed {
		glyph = color.RedString("✗")
	}
	b.bar.UpdateTitle(glyph + " " + label)

	if b.current < b.total {
		b.bar.Add(int(b.total - b.current))
		b.current = b.total
	}
	_, _ = b.bar.Stop()
}

func (b *ptermBar) Release() {
	b.surface.free = append(b.surface.free, b.writer)
}
