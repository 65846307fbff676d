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

// Package enumerate walks the sources and produces the flat list of copy
// items. It creates every destination directory up front so workers never
// race to create a shared parent.
package enumerate

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fastcp/pkg/config"
)

// ErrSourceNotFound marks the fatal pre-flight error for a missing source.
var ErrSourceNotFound = errors.New("source does not exist")

const dirPerm = 0755

// SymlinkSize is the synthetic size reported for symlink items so they render
// like any other item without a zero-size special case.
const SymlinkSize = 1

// 📄 Kind distinguishes the two copyable item types.
type Kind int

const (
	KindFile Kind = iota
	KindSymlink
)

// String returns a short name for logging.
func (k Kind) String() string {
	if k == KindSymlink {
		return "symlink"
	}
	return "file"
}

// 📦 Item is one unit of copy work with resolved paths. Items are never
// mutated after enumeration and are consumed exactly once by a worker.
type Item struct {
	SourcePath string
	DestPath   string
	Kind       Kind
	Size       int64 // regular file size; SymlinkSize for links
}

// 🔧 Options controls enumeration behavior.
type Options struct {
	Symlinks config.SymlinkPolicy
	Excludes []string // doublestar globs matched against source-relative paths
}

// 🎯 Enumerate resolves every source against dest and returns the items to
// copy. Any error here is fatal for the whole run; nothing has been copied
// yet.
func Enumerate(ctx context.Context, sources []string, dest string, opts Options) ([]Item, error) {
	logger := zerolog.Ctx(ctx)

	var items []Item
	for _, source := range sources {
		info, err := os.Lstat(source)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Errorf("%w: %s", ErrSourceNotFound, source)
			}
			return nil, errors.Errorf("inspecting source %s: %w", source, err)
		}

		switch {
		case info.IsDir():
			items, err = appendTree(ctx, items, source, dest, opts)
		default:
			items, err = appendSingle(ctx, items, source, info, dest, opts)
		}
		if err != nil {
			return nil, err
		}
	}

	logger.Debug().Int("items", len(items)).Msg("enumeration complete")

	return items, nil
}

// appendSingle handles a source that is itself a file or symlink. When dest
// is an existing directory the item lands at dest/basename(source).
func appendSingle(ctx context.Context, items []Item, source string, info os.FileInfo, dest string, opts Options) ([]Item, error) {
	target := dest
	if di, err := os.Stat(dest); err == nil && di.IsDir() {
		target = filepath.Join(dest, filepath.Base(source))
	}

	item, ok, err := resolveItem(ctx, source, target, info.Mode(), opts.Symlinks)
	if err != nil {
		return nil, err
	}
	if ok {
		items = append(items, item)
	}

	return items, nil
}

// appendTree walks a directory source. Mirroring cp, an existing destination
// directory receives the tree under dest/basename(source); otherwise dest
// itself becomes the tree root. Directories with no copyable entries are
// still created at the destination.
func appendTree(ctx context.Context, items []Item, source, dest string, opts Options) ([]Item, error) {
	logger := zerolog.Ctx(ctx)

	root := dest
	if di, err := os.Stat(dest); err == nil && di.IsDir() {
		root = filepath.Join(dest, filepath.Base(source))
	}

	walkErr := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return errors.Errorf("walking %s: %w", path, err)
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return errors.Errorf("relativizing %s: %w", path, err)
		}

		if rel != "." && excluded(ctx, rel, opts.Excludes) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		target := filepath.Join(root, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, dirPerm); err != nil {
				return errors.Errorf("creating destination directory %s: %w", target, err)
			}
			return nil
		}

		item, ok, rerr := resolveItem(ctx, path, target, d.Type(), opts.Symlinks)
		if rerr != nil {
			return rerr
		}
		if ok {
			items = append(items, item)
		} else {
			logger.Debug().Str("path", path).Msg("skipping non-copyable entry")
		}

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	return items, nil
}

// resolveItem turns one filesystem entry into a copy item, applying the
// symlink policy. ok is false when the entry is skipped.
func resolveItem(ctx context.Context, source, target string, mode fs.FileMode, policy config.SymlinkPolicy) (Item, bool, error) {
	logger := zerolog.Ctx(ctx)

	if mode&fs.ModeSymlink != 0 {
		switch policy {
		case config.SymlinkSkip:
			logger.Debug().Str("path", source).Msg("skipping symlink")
			return Item{}, false, nil
		case config.SymlinkFollow:
			// Copy the target's bytes. Links to directories (or dangling
			// links) cannot be followed as a single item.
			ti, err := os.Stat(source)
			if err != nil || !ti.Mode().IsRegular() {
				logger.Warn().Str("path", source).Msg("cannot follow symlink, skipping")
				return Item{}, false, nil
			}
			return Item{SourcePath: source, DestPath: target, Kind: KindFile, Size: ti.Size()}, true, nil
		default:
			return Item{SourcePath: source, DestPath: target, Kind: KindSymlink, Size: SymlinkSize}, true, nil
		}
	}

	if !mode.IsRegular() {
		return Item{}, false, nil
	}

	info, err := os.Lstat(source)
	if err != nil {
		return Item{}, false, errors.Errorf("inspecting %s: %w", source, err)
	}

	return Item{SourcePath: source, DestPath: target, Kind: KindFile, Size: info.Size()}, true, nil
}

// excluded reports whether rel matches any exclude glob. Bad patterns are
// logged and ignored, matching the tolerant glob handling elsewhere.
func excluded(ctx context.Context, rel string, globs []string) bool {
	logger := zerolog.Ctx(ctx)

	for _, pattern := range globs {
		matched, err := doublestar.Match(pattern, filepath.ToSlash(rel))
		if err != nil {
			logger.Debug().Str("pattern", pattern).Str("path", rel).Err(err).Msg("error matching pattern")
			continue
		}
		if matched {
			return true
		}
	}

	return false
}
