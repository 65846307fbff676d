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

package log

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"

	"github.com/walteh/fastcp/pkg/format"
)

// 🎨 Display configuration
const (
	fileIndent = 4  // spaces to indent item entries
	nameWidth  = 45 // Base width for item path
	kindWidth  = 8  // Width for item kind
	sizeWidth  = 10 // Width for formatted size
)

// 🎯 ItemOutcome records one finished copy for the verbose listing
type ItemOutcome struct {
	Path   string // Destination-relative path
	Kind   string // Item kind (file/symlink)
	Size   int64  // Bytes written
	Failed bool   // Whether the copy failed
}

// 🎯 Reporter prints one line per finished item. Workers call it
// concurrently, so every print holds the mutex.
type Reporter struct {
	console io.Writer
	mu      sync.Mutex
	items   int
	failed  int
}

// 🏭 NewReporter creates a reporter writing to console
func NewReporter(console io.Writer) *Reporter {
	return &Reporter{console: console}
}

// 📝 formatItemOutcome formats one outcome for display
func (r *Reporter) formatItemOutcome(out ItemOutcome) string {
	var symbol rune
	var symbolColor color.Attribute
	if out.Failed {
		symbol = '✗'
		symbolColor = color.FgRed
	} else {
		symbol = '✓'
		symbolColor = color.FgGreen
	}

	var kindColor color.Attribute
	switch out.Kind {
	case "symlink":
		kindColor = color.FgYellow
	default:
		kindColor = color.FgCyan
	}

	return fmt.Sprintf("%s%s %s %s %s",
		fmt.Sprintf("%*s", fileIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, out.Path),
		color.New(kindColor).Sprint(fmt.Sprintf("%-*s", kindWidth, out.Kind)),
		fmt.Sprintf("%*s", sizeWidth, format.Bytes(out.Size)))
}

// 📝 LogItemOutcome prints one finished item
func (r *Reporter) LogItemOutcome(out ItemOutcome) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items++
	if out.Failed {
		r.failed++
	}

	fmt.Fprintln(r.console, r.formatItemOutcome(out))
}

// 📝 Header prints the run header before the first item line
func (r *Reporter) Header(sources int, dest string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := color.New(color.Bold, color.FgCyan).Sprint("fastcp")
	fmt.Fprintf(r.console, "\n%s %s\n\n", name,
		color.New(color.Faint).Sprintf("• copying %d source(s) to %s", sources, dest))
}

// 📝 Summary prints the closing totals line
func (r *Reporter) Summary(bytes int64, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	line := fmt.Sprintf("%d item(s), %s in %s",
		r.items-r.failed, format.Bytes(bytes), elapsed.Round(time.Millisecond))
	if r.failed > 0 {
		fmt.Fprintf(r.console, "\n⚠️  %s\n",
			color.New(color.FgYellow).Sprintf("%s, %d failed", line, r.failed))
		return
	}
	fmt.Fprintf(r.console, "\n✅ %s\n", color.New(color.FgGreen).Sprint(line))
}
