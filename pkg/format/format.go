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

// Package format holds pure string helpers for the console display: byte and
// rate formatting and path shortening. Everything here is side-effect free so
// it can be tested without a terminal.
package format

import "fmt"

var units = [...]string{"B", "KB", "MB", "GB", "TB", "PB"}

const bytesPerUnit = 1024.0

// Ellipsis is the marker inserted where path material was elided.
const Ellipsis = "…"

// 📏 Bytes formats a byte count with one decimal place, scaling by 1024.
func Bytes(n int64) string {
	return scale(float64(n))
}

// ⚡ Rate formats a transfer rate as scaled bytes per second, e.g. "3.4 MB/s".
func Rate(bytesPerSec float64) string {
	return scale(bytesPerSec) + "/s"
}

func scale(size float64) string {
	idx := 0
	for size >= bytesPerUnit && idx < len(units)-1 {
		size /= bytesPerUnit
		idx++
	}
	return fmt.Sprintf("%.1f %s", size, units[idx])
}

// ✂️ ShortenPath returns path trimmed to at most maxWidth runes, keeping both
// ends and favoring the filename end, with Ellipsis marking the elision.
func ShortenPath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) <= maxWidth {
		return path
	}
	if maxWidth <= 1 {
		return Ellipsis
	}

	// One slot goes to the ellipsis; the tail gets the bigger share so the
	// filename stays recognizable.
	keep := maxWidth - 1
	head := keep / 3
	tail := keep - head

	return string(runes[:head]) + Ellipsis + string(runes[len(runes)-tail:])
}
