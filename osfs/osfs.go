// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package osfs provides OS Filesystem access.
package osfs

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.chromium.org/infra/build/labrat/o11y/clog"
)

// slowOp is a threshold to log a slow filesystem operation.
const slowOp = 10 * time.Second

// OSFS provides OS Filesystem access.
// It counts operations and bytes read/written.
type OSFS struct {
	mu    sync.Mutex
	stats Stats
}

// Stats holds I/O counters of OSFS.
type Stats struct {
	// Number of operations other than reads and writes.
	Ops     int64
	OpsErrs int64

	// Number of file reads and bytes read.
	ROps   int64
	RBytes int64
	RErrs  int64

	// Number of file writes and bytes written.
	WOps   int64
	WBytes int64
	WErrs  int64
}

// New creates new OSFS.
func New() *OSFS {
	return &OSFS{}
}

// Stats returns the snapshot of I/O counters.
func (fsys *OSFS) Stats() Stats {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	return fsys.stats
}

func (fsys *OSFS) opsDone(err error) {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	fsys.stats.Ops++
	if err != nil {
		fsys.stats.OpsErrs++
	}
}

func (fsys *OSFS) readDone(n int, err error) {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	fsys.stats.ROps++
	fsys.stats.RBytes += int64(n)
	if err != nil {
		fsys.stats.RErrs++
	}
}

func (fsys *OSFS) writeDone(n int, err error) {
	fsys.mu.Lock()
	defer fsys.mu.Unlock()
	fsys.stats.WOps++
	fsys.stats.WBytes += int64(n)
	if err != nil {
		fsys.stats.WErrs++
	}
}

func logSlow(ctx context.Context, name string, started time.Time, err error) {
	dur := time.Since(started)
	if dur < slowOp {
		return
	}
	buf := make([]byte, 4*1024)
	n := runtime.Stack(buf, false)
	clog.Warningf(ctx, "slow op %s: %s %v\n%s", name, dur, err, buf[:n])
}

// ReadFile reads the named file and returns the contents.
func (fsys *OSFS) ReadFile(ctx context.Context, name string) ([]byte, error) {
	started := time.Now()
	buf, err := os.ReadFile(name)
	fsys.readDone(len(buf), err)
	logSlow(ctx, name, started, err)
	return buf, err
}

// ReadDir reads the named directory, returning its entries sorted by filename.
func (fsys *OSFS) ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error) {
	started := time.Now()
	ents, err := os.ReadDir(name)
	fsys.opsDone(err)
	logSlow(ctx, name, started, err)
	return ents, err
}

// Stat returns a FileInfo describing the named file, following symlinks.
func (fsys *OSFS) Stat(ctx context.Context, name string) (fs.FileInfo, error) {
	started := time.Now()
	fi, err := os.Stat(name)
	fsys.opsDone(err)
	logSlow(ctx, name, started, err)
	return fi, err
}

// RealPath returns the absolute path of name after evaluating symlinks.
func (fsys *OSFS) RealPath(ctx context.Context, name string) (string, error) {
	started := time.Now()
	p, err := filepath.EvalSymlinks(name)
	if err == nil {
		p, err = filepath.Abs(p)
	}
	fsys.opsDone(err)
	logSlow(ctx, name, started, err)
	return p, err
}

// WriteFile writes data to the named file, creating it if necessary.
func (fsys *OSFS) WriteFile(ctx context.Context, name string, data []byte, perm fs.FileMode) error {
	started := time.Now()
	err := os.WriteFile(name, data, perm)
	fsys.writeDone(len(data), err)
	logSlow(ctx, name, started, err)
	return err
}

// UpdateFile writes data to the named file unless it already has
// the same contents. It reports whether the file was written.
func (fsys *OSFS) UpdateFile(ctx context.Context, name string, data []byte, perm fs.FileMode) (bool, error) {
	old, err := fsys.ReadFile(ctx, name)
	if err == nil && bytes.Equal(old, data) {
		return false, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		clog.Warningf(ctx, "failed to read %s: %v", name, err)
	}
	err = fsys.WriteFile(ctx, name, data, perm)
	if err != nil {
		return false, err
	}
	return true, nil
}
