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

// 🖥️ Surface is the render backend for the coordinator. Implementations are
// only ever called from the coordinator goroutine, so they need no locking of
// their own.
type Surface interface {
	// Start claims the terminal area (or does nothing for quiet backends).
	Start()
	// Stop releases it again.
	Stop()
	// NewBar creates a bar at the next free render slot.
	NewBar(label string, total int64) Bar
}

// 📊 Bar is one rendered progress indicator.
type Bar interface {
	// Advance moves the bar to an absolute position in bytes.
	Advance(bytesSoFar int64)
	// Finish renders the completion state: a check mark, or a failure mark
	// when failed is set.
	Finish(label string, failed bool)
	// Release frees the bar's render slot for reuse by a future bar. The
	// bar must not be used afterwards.
	Release()
}

// 🙊 NewNopSurface returns a surface that renders nothing, for --quiet runs.
func NewNopSurface() Surface {
	return nopSurface{}
}

type nopSurface struct{}

func (nopSurface) Start()                   {}
func (nopSurface) Stop()                    {}
func (nopSurface) NewBar(string, int64) Bar { return nopBar{} }

type nopBar struct{}

func (nopBar) Advance(int64)       {}
func (nopBar) Finish(string, bool) {}
func (nopBar) Release()            {}
