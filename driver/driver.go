// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package driver runs test discovery over a source tree.
//
// It collects files under the root, tokenizes each file, matches
// TEST_CASE/BENCHMARK declarations in files that include the framework
// header, and writes the artifact for the build.
// Files are processed one at a time in collection order, which is
// the order of entries in the artifact.
package driver

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.chromium.org/luci/common/errors"

	"go.chromium.org/infra/build/labrat/artifact"
	"go.chromium.org/infra/build/labrat/config"
	"go.chromium.org/infra/build/labrat/fileset"
	"go.chromium.org/infra/build/labrat/lexer"
	"go.chromium.org/infra/build/labrat/matcher"
	"go.chromium.org/infra/build/labrat/o11y/clog"
	"go.chromium.org/infra/build/labrat/osfs"
	"go.chromium.org/infra/build/labrat/registry"
)

// Driver runs discovery.
type Driver struct {
	// Progress, if set, is called with each file's relative path
	// before it is scanned.
	Progress func(rel string)

	fs      *osfs.OSFS
	cfg     *config.Config
	matcher *matcher.Matcher
}

// New creates a new driver for cfg.
func New(fsys *osfs.OSFS, cfg *config.Config) (*Driver, error) {
	m, err := matcher.New(cfg.Matcher())
	if err != nil {
		return nil, err
	}
	if cfg.Output == "" {
		return nil, fmt.Errorf("no output filename")
	}
	if cfg.Format == artifact.XMacro {
		err = cfg.Hooks.Validate()
		if err != nil {
			return nil, err
		}
	}
	return &Driver{
		fs:      fsys,
		cfg:     cfg,
		matcher: m,
	}, nil
}

// Result is a result of Run.
type Result struct {
	Registry *registry.Registry

	// Files is the number of collected files.
	Files int
	// CacheHits is the number of files whose matches came from the cache.
	CacheHits int
	// Failed holds errors of files that could not be read.
	// These files were skipped.
	Failed errors.MultiError
	// Written reports whether the artifact was (re)written.
	// It is false if the artifact was up to date.
	Written bool
}

// Run discovers entry points under root and writes the artifact.
// Relative output, manifest and cache filenames are relative to root.
// Unreadable files are skipped and reported in Result.Failed.
// It returns an error if files can't be collected or the artifact can't
// be written.
func (d *Driver) Run(ctx context.Context, root string) (*Result, error) {
	output := d.path(root, d.cfg.Output)
	manifest := d.path(root, d.cfg.Manifest)
	cacheFile := d.path(root, d.cfg.Cache)

	opt := fileset.Option{
		Framework: d.cfg.Framework,
		SelfTest:  d.cfg.SelfTest,
		Exclude:   append([]string{}, d.cfg.Exclude...),
	}
	for _, fname := range []string{output, manifest, cacheFile} {
		if pat, ok := relPattern(root, fname); ok {
			opt.Exclude = append(opt.Exclude, pat)
		}
	}
	files, err := fileset.Collect(ctx, d.fs, root, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to collect files in %s: %w", root, err)
	}
	clog.Infof(ctx, "collected %d files in %s", len(files), root)

	cache := loadCache(ctx, d.fs, cacheFile, d.matcher.Config().Fingerprint())
	result := &Result{
		Registry: &registry.Registry{},
		Files:    len(files),
	}
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if d.Progress != nil {
			d.Progress(f.Rel)
		}
		fctx := clog.NewSpan(ctx, f.Rel, map[string]string{"file": f.Rel})
		records, err := d.scanFile(fctx, f, cache)
		if err != nil {
			clog.Warningf(fctx, "failed to read file: %v", err)
			result.Failed = append(result.Failed, fmt.Errorf("%s: %w", f.Rel, err))
			continue
		}
		result.Registry.Add(records...)
	}
	result.CacheHits = cache.hitCount()
	if err := cache.save(ctx, d.fs); err != nil {
		clog.Warningf(ctx, "failed to save cache %s: %v", cacheFile, err)
	}
	for _, dup := range result.Registry.Duplicates() {
		clog.Warningf(ctx, "duplicate %s %q at %s (first at %s)", dup.Dup.Kind, dup.Dup.Name, dup.Dup.Location(), dup.First.Location())
	}

	result.Written, err = d.emit(ctx, output, d.cfg.Format, result.Registry)
	if err != nil {
		return nil, err
	}
	if manifest != "" {
		_, err = d.emit(ctx, manifest, artifact.JSON, result.Registry)
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

// Scan returns the records of a single file's contents.
// rel is the file path recorded in the records.
func (d *Driver) Scan(rel string, buf []byte) []registry.Record {
	tokens := lexer.Scan(buf)
	matches := d.matcher.Match(tokens)
	if len(matches) == 0 {
		return nil
	}
	records := make([]registry.Record, 0, len(matches))
	line, off := 1, 0
	for _, m := range matches {
		// matches are in increasing Pos.
		line += bytes.Count(buf[off:m.Pos], []byte{'\n'})
		off = m.Pos
		records = append(records, registry.Record{
			Kind:  m.Kind,
			Name:  m.Name,
			Param: m.Param,
			File:  rel,
			Line:  line,
		})
	}
	return records
}

func (d *Driver) scanFile(ctx context.Context, f fileset.File, cache *scanCache) ([]registry.Record, error) {
	buf, err := d.fs.ReadFile(ctx, f.Path)
	if err != nil {
		return nil, err
	}
	digest := digestOf(buf)
	if records, ok := cache.lookup(f.Rel, digest); ok {
		if clog.V(1) {
			clog.Infof(ctx, "cache hit: %d records", len(records))
		}
		return records, nil
	}
	records := d.Scan(f.Rel, buf)
	if clog.V(1) {
		clog.Infof(ctx, "scanned %d bytes: %d records", len(buf), len(records))
	}
	cache.store(f.Rel, digest, records)
	return records, nil
}

func (d *Driver) emit(ctx context.Context, fname string, format artifact.Format, reg *registry.Registry) (bool, error) {
	buf, err := artifact.Render(format, reg, d.cfg.Hooks)
	if err != nil {
		return false, fmt.Errorf("failed to render %s: %w", fname, err)
	}
	written, err := d.fs.UpdateFile(ctx, fname, buf, 0644)
	if err != nil {
		return false, fmt.Errorf("failed to write %s: %w", fname, err)
	}
	if written {
		clog.Infof(ctx, "wrote %s: %d tests, %d benchmarks", fname, len(reg.Tests()), len(reg.Benchmarks()))
	} else {
		clog.Infof(ctx, "%s is up to date", fname)
	}
	return written, nil
}

func (d *Driver) path(root, fname string) string {
	if fname == "" || filepath.IsAbs(fname) {
		return fname
	}
	return filepath.Join(root, fname)
}

// relPattern returns an exclude pattern matching exactly fname,
// if fname is under root.
func relPattern(root, fname string) (string, bool) {
	if fname == "" {
		return "", false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absName, err := filepath.Abs(fname)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absName)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return escapeGlob(filepath.ToSlash(rel)), true
}

func escapeGlob(s string) string {
	var sb strings.Builder
	for _, c := range s {
		switch c {
		case '*', '?', '[', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(c)
	}
	return sb.String()
}
