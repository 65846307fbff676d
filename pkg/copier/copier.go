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

// Package copier moves the bytes of one item and reports progress as it goes.
// Failures here are contained to the item: the batch keeps running and the
// display still settles because Done is always emitted once NewItem was.
package copier

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/fastcp/pkg/config"
	"github.com/walteh/fastcp/pkg/enumerate"
	"github.com/walteh/fastcp/pkg/progress"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// 📦 Copier copies single items through a fixed-size reused buffer.
type Copier struct {
	bufferSize int
}

// 🏭 New creates a copier. bufferSize <= 0 falls back to the default.
func New(bufferSize int) *Copier {
	if bufferSize <= 0 {
		bufferSize = config.DefaultBufferSize
	}
	return &Copier{bufferSize: bufferSize}
}

// 🏃 Copy copies one item to its destination, emitting NewItem, Advanced and
// Done events under the given tracking ID. The returned error is the item's
// failure, already reflected in the Done event; callers log and count it but
// never abort the batch over it.
func (c *Copier) Copy(ctx context.Context, item enumerate.Item, id progress.ID, emit func(progress.Event)) error {
	if item.Kind == enumerate.KindSymlink {
		return c.copySymlink(ctx, item, id, emit)
	}
	return c.copyFile(ctx, item, id, emit)
}

// copyFile streams a regular file through the buffer. On a mid-stream error
// the loop breaks early and Done still fires, so a failed item shows as
// finished (short of its byte count) rather than wedging the display.
func (c *Copier) copyFile(ctx context.Context, item enumerate.Item, id progress.ID, emit func(progress.Event)) error {
	logger := zerolog.Ctx(ctx)

	src, err := os.Open(item.SourcePath)
	if err != nil {
		// The item never started; settle it in the display and give up.
		emit(progress.NewItem{ID: id, DisplayPath: item.SourcePath, TotalSize: item.Size})
		emit(progress.Done{ID: id, Failed: true})
		return errors.Errorf("opening source %s: %w", item.SourcePath, err)
	}
	defer src.Close()

	totalSize := item.Size
	if info, serr := src.Stat(); serr == nil {
		totalSize = info.Size()
	}
	emit(progress.NewItem{ID: id, DisplayPath: item.SourcePath, TotalSize: totalSize})

	dst, err := c.createDest(item.DestPath)
	if err != nil {
		emit(progress.Done{ID: id, Failed: true})
		return err
	}
	defer dst.Close()

	// One allocation for the whole file.
	buf := make([]byte, c.bufferSize)

	var copied int64
	var streamErr error

	for {
		if cerr := ctx.Err(); cerr != nil {
			streamErr = cerr
			break
		}

		n, rerr := src.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				streamErr = errors.Errorf("writing %s: %w", item.DestPath, werr)
				break
			}
			copied += int64(n)
			emit(progress.Advanced{ID: id, BytesSoFar: copied})
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			streamErr = errors.Errorf("reading %s: %w", item.SourcePath, rerr)
			break
		}
	}

	emit(progress.Done{ID: id, Failed: streamErr != nil})

	if streamErr != nil {
		logger.Error().Str("source", item.SourcePath).Err(streamErr).Msg("copy broke mid-stream")
		return streamErr
	}

	if err := dst.Close(); err != nil {
		return errors.Errorf("closing %s: %w", item.DestPath, err)
	}

	return nil
}

// copySymlink recreates the link at the destination pointing at the original
// target. The synthetic one-byte progress keeps the item visually consistent
// with file items.
func (c *Copier) copySymlink(ctx context.Context, item enumerate.Item, id progress.ID, emit func(progress.Event)) error {
	logger := zerolog.Ctx(ctx)

	emit(progress.NewItem{ID: id, DisplayPath: item.SourcePath, TotalSize: enumerate.SymlinkSize})

	err := c.recreateSymlink(item)
	if err != nil {
		emit(progress.Done{ID: id, Failed: true})
		logger.Error().Str("source", item.SourcePath).Err(err).Msg("symlink recreation failed")
		return err
	}

	emit(progress.Advanced{ID: id, BytesSoFar: enumerate.SymlinkSize})
	emit(progress.Done{ID: id})

	return nil
}

func (c *Copier) recreateSymlink(item enumerate.Item) error {
	target, err := os.Readlink(item.SourcePath)
	if err != nil {
		return errors.Errorf("reading link %s: %w", item.SourcePath, err)
	}

	if err := os.MkdirAll(filepath.Dir(item.DestPath), dirPerm); err != nil {
		return errors.Errorf("creating parent directories: %w", err)
	}

	// Symlink fails on an existing path, so clear it first.
	if err := os.Remove(item.DestPath); err != nil && !os.IsNotExist(err) {
		return errors.Errorf("removing existing %s: %w", item.DestPath, err)
	}

	if err := os.Symlink(target, item.DestPath); err != nil {
		return errors.Errorf("creating link %s: %w", item.DestPath, err)
	}

	return nil
}

func (c *Copier) createDest(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, errors.Errorf("creating parent directories: %w", err)
	}

	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return nil, errors.Errorf("creating destination %s: %w", path, err)
	}

	return dst, nil
}
