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

package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want string
	}{
		{name: "zero", in: 0, want: "0.0 B/s"},
		{name: "bytes", in: 512, want: "512.0 B/s"},
		{name: "kilobytes", in: 2048, want: "2.0 KB/s"},
		{name: "megabytes", in: 3.5 * 1024 * 1024, want: "3.5 MB/s"},
		{name: "gigabytes", in: 1024 * 1024 * 1024, want: "1.0 GB/s"},
		{name: "petabytes_cap", in: 1 << 62, want: "4096.0 PB/s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rate(tt.in), "rate should scale by 1024 with one decimal")
		})
	}
}

func TestBytes(t *testing.T) {
	tests := []struct {
		name string
		in   int64
		want string
	}{
		{name: "zero", in: 0, want: "0.0 B"},
		{name: "under_one_kb", in: 1023, want: "1023.0 B"},
		{name: "exactly_one_kb", in: 1024, want: "1.0 KB"},
		{name: "ten_mb", in: 10 * 1024 * 1024, want: "10.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Bytes(tt.in), "bytes should scale by 1024 with one decimal")
		})
	}
}

func TestShortenPath(t *testing.T) {
	tests := []struct {
		name string
		path string
		max  int
		want string
	}{
		{name: "fits", path: "a/b.txt", max: 20, want: "a/b.txt"},
		{name: "exact_fit", path: "abcde", max: 5, want: "abcde"},
		{name: "elides_middle", path: "some/deep/nested/dir/file.txt", max: 16, want: "some/" + Ellipsis + "r/file.txt"},
		{name: "tiny_width", path: "longpath", max: 1, want: Ellipsis},
		{name: "zero_width", path: "longpath", max: 0, want: Ellipsis},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShortenPath(tt.path, tt.max), "shortened path should keep both ends")
		})
	}
}

func TestShortenPathProperties(t *testing.T) {
	paths := []string{
		"a/very/long/path/to/some/file/called/archive.tar.gz",
		strings.Repeat("x", 200) + "/name.bin",
		"unicode/路径/ファイル.dat",
	}

	for _, p := range paths {
		for _, max := range []int{5, 10, 20, 40} {
			got := ShortenPath(p, max)
			assert.LessOrEqual(t, len([]rune(got)), max, "shortened path must fit the width budget")

			if idx := strings.Index(got, Ellipsis); idx >= 0 && got != Ellipsis {
				tail := got[idx+len(Ellipsis):]
				assert.True(t, strings.HasSuffix(p, tail), "tail of the shortened path should be a suffix of the original")
			}
		}
	}
}
