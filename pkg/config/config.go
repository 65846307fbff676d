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

// Package config holds the run settings for fastcp. There is no config file
// and no persisted state; everything comes from flags and defaults.
package config

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// Defaults for a run.
const (
	// DefaultWorkers is the number of concurrent copy workers.
	DefaultWorkers = 4
	// DefaultDisplayCap is the maximum number of per-item progress bars
	// rendered at once. It is a display-real-estate budget, not a
	// concurrency throttle.
	DefaultDisplayCap = 8
	// DefaultBufferSize is the copy buffer size in bytes. Larger buffers
	// trade memory for fewer syscalls.
	DefaultBufferSize = 64 * 1024
	// DefaultEventBuffer is the progress channel buffer size.
	DefaultEventBuffer = 256
	// DefaultLabelWidth is the display width budget for item labels.
	DefaultLabelWidth = 40
)

// 🔗 SymlinkPolicy controls how symbolic links in the source are handled.
// Dereferencing and skipping both lose information, so the choice belongs to
// the caller.
type SymlinkPolicy int

const (
	// SymlinkPreserve recreates links at the destination pointing at the
	// original target.
	SymlinkPreserve SymlinkPolicy = iota
	// SymlinkFollow copies the bytes of the link target instead.
	SymlinkFollow
	// SymlinkSkip drops links during enumeration.
	SymlinkSkip
)

// String returns the flag spelling of the policy.
func (p SymlinkPolicy) String() string {
	switch p {
	case SymlinkPreserve:
		return "preserve"
	case SymlinkFollow:
		return "follow"
	case SymlinkSkip:
		return "skip"
	default:
		return fmt.Sprintf("unknown(%d)", int(p))
	}
}

// 🎯 ParseSymlinkPolicy parses the --symlinks flag value.
func ParseSymlinkPolicy(s string) (SymlinkPolicy, error) {
	switch s {
	case "preserve":
		return SymlinkPreserve, nil
	case "follow":
		return SymlinkFollow, nil
	case "skip":
		return SymlinkSkip, nil
	default:
		return SymlinkPreserve, errors.Errorf("invalid symlink policy %q (want preserve, follow or skip)", s)
	}
}

// 📚 Settings represents one run's configuration.
type Settings struct {
	Workers     int           // concurrent copy workers
	DisplayCap  int           // max simultaneously rendered progress bars
	BufferSize  int           // copy buffer size in bytes
	EventBuffer int           // progress channel buffer size
	LabelWidth  int           // display width budget for item labels
	Symlinks    SymlinkPolicy // symlink handling
	Excludes    []string      // doublestar globs matched against relative paths
	Quiet       bool          // disable the live display
	Verbose     bool          // print one line per finished item instead of bars
}

// 🏭 Default returns the default settings.
func Default() Settings {
	return Settings{
		Workers:     DefaultWorkers,
		DisplayCap:  DefaultDisplayCap,
		BufferSize:  DefaultBufferSize,
		EventBuffer: DefaultEventBuffer,
		LabelWidth:  DefaultLabelWidth,
	}
}

// 🔍 Validate checks bounds and fills zero values with defaults.
func (s *Settings) Validate() error {
	if s.Workers == 0 {
		s.Workers = DefaultWorkers
	}
	if s.Workers < 0 {
		return errors.Errorf("workers must be positive, got %d", s.Workers)
	}
	if s.DisplayCap == 0 {
		s.DisplayCap = DefaultDisplayCap
	}
	if s.DisplayCap < 0 {
		return errors.Errorf("display cap must be positive, got %d", s.DisplayCap)
	}
	if s.BufferSize == 0 {
		s.BufferSize = DefaultBufferSize
	}
	if s.BufferSize < 0 {
		return errors.Errorf("buffer size must be positive, got %d", s.BufferSize)
	}
	if s.EventBuffer == 0 {
		s.EventBuffer = DefaultEventBuffer
	}
	if s.EventBuffer < 0 {
		return errors.Errorf("event buffer must be positive, got %d", s.EventBuffer)
	}
	if s.LabelWidth == 0 {
		s.LabelWidth = DefaultLabelWidth
	}

	return nil
}
