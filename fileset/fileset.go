// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package fileset collects candidate source files under a root directory.
package fileset

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"

	"go.chromium.org/infra/build/labrat/o11y/clog"
)

// FS is a filesystem used to enumerate files.
type FS interface {
	// ReadDir returns entries of the directory sorted by filename.
	ReadDir(ctx context.Context, name string) ([]fs.DirEntry, error)
	// Stat returns FileInfo of name, following symlinks.
	Stat(ctx context.Context, name string) (fs.FileInfo, error)
	// RealPath returns the absolute path of name with symlinks evaluated.
	RealPath(ctx context.Context, name string) (string, error)
}

// Option is an option to collect files.
type Option struct {
	// Framework is the framework's own file name (e.g. "labrat.h").
	// Files with this base name are excluded, or, in SelfTest mode,
	// are the only files collected.
	Framework string
	SelfTest  bool

	// Exclude are slash separated glob patterns (path.Match) relative
	// to root. A matching directory is not descended.
	Exclude []string
}

// File is a collected file.
type File struct {
	// Path is the path to open, i.e. joined with root.
	Path string
	// Rel is the slash separated path relative to root.
	Rel string
}

// Collect returns regular files under root in depth first,
// lexical order.
// Symlinks are followed, but each directory and file is visited at most
// once, identified by its real path, so symlink cycles terminate.
// Unreadable directories and broken symlinks are logged and skipped.
func Collect(ctx context.Context, fsys FS, root string, opt Option) ([]File, error) {
	for _, pat := range opt.Exclude {
		if _, err := path.Match(pat, ""); err != nil {
			return nil, fmt.Errorf("bad exclude pattern %q: %w", pat, err)
		}
	}
	fi, err := fsys.Stat(ctx, root)
	if err != nil {
		return nil, err
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", root)
	}
	c := &collector{
		fsys:    fsys,
		opt:     opt,
		visited: make(map[string]bool),
	}
	err = c.walkDir(ctx, root, "")
	if err != nil {
		return nil, err
	}
	return c.files, nil
}

type collector struct {
	fsys    FS
	opt     Option
	visited map[string]bool
	files   []File
}

// visit marks fname visited. It returns false if it was already visited.
func (c *collector) visit(ctx context.Context, fname string) bool {
	rpath, err := c.fsys.RealPath(ctx, fname)
	if err != nil {
		clog.Warningf(ctx, "failed to resolve %s: %v", fname, err)
		return false
	}
	if c.visited[rpath] {
		if clog.V(1) {
			clog.Infof(ctx, "already visited %s as %s", fname, rpath)
		}
		return false
	}
	c.visited[rpath] = true
	return true
}

func (c *collector) excluded(rel string) bool {
	for _, pat := range c.opt.Exclude {
		if ok, _ := path.Match(pat, rel); ok {
			return true
		}
	}
	return false
}

// skipFile reports whether the file is filtered out by the framework rule.
func (c *collector) skipFile(rel string) bool {
	if c.opt.Framework == "" {
		return c.opt.SelfTest
	}
	isFramework := path.Base(rel) == path.Base(c.opt.Framework)
	if c.opt.SelfTest {
		return !isFramework
	}
	return isFramework
}

func (c *collector) walkDir(ctx context.Context, dir, rel string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !c.visit(ctx, dir) {
		return nil
	}
	ents, err := c.fsys.ReadDir(ctx, dir)
	if err != nil {
		clog.Warningf(ctx, "failed to read dir %s: %v", dir, err)
		return nil
	}
	for _, ent := range ents {
		name := filepath.Join(dir, ent.Name())
		entRel := path.Join(rel, ent.Name())
		if c.excluded(entRel) {
			if clog.V(1) {
				clog.Infof(ctx, "exclude %s", entRel)
			}
			continue
		}
		mode := ent.Type()
		if mode&fs.ModeSymlink != 0 {
			fi, err := c.fsys.Stat(ctx, name)
			if err != nil {
				clog.Warningf(ctx, "skip broken symlink %s: %v", name, err)
				continue
			}
			mode = fi.Mode().Type()
		}
		switch {
		case mode.IsDir():
			err := c.walkDir(ctx, name, entRel)
			if err != nil {
				return err
			}
		case mode.IsRegular():
			if c.skipFile(entRel) {
				continue
			}
			if !c.visit(ctx, name) {
				continue
			}
			c.files = append(c.files, File{Path: name, Rel: entRel})
		default:
			if clog.V(1) {
				clog.Infof(ctx, "skip non regular file %s %s", name, mode)
			}
		}
	}
	return nil
}
