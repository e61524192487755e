// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"

	"github.com/klauspost/compress/zstd"

	"go.chromium.org/infra/build/labrat/o11y/clog"
	"go.chromium.org/infra/build/labrat/osfs"
	"go.chromium.org/infra/build/labrat/registry"
)

type cacheEntry struct {
	Digest  string         `json:"digest"`
	Records []cachedRecord `json:"records,omitempty"`
}

// cachedRecord is a registry.Record of the file, in discovery order.
type cachedRecord struct {
	Kind  registry.Kind `json:"kind"`
	Name  string        `json:"name"`
	Param string        `json:"param,omitempty"`
	Line  int           `json:"line"`
}

type cacheFile struct {
	// Fingerprint is the matcher config fingerprint the entries were
	// computed with.
	Fingerprint string                `json:"fingerprint"`
	Files       map[string]cacheEntry `json:"files"`
}

// scanCache caches match results per file, keyed by content digest.
// A nil *scanCache is a disabled cache.
type scanCache struct {
	fname       string
	fingerprint string
	old         map[string]cacheEntry
	cur         map[string]cacheEntry
	hits        int
}

func digestOf(buf []byte) string {
	h := sha256.Sum256(buf)
	return hex.EncodeToString(h[:])
}

// loadCache loads the cache file. A missing, corrupt or stale cache
// results in an empty cache. It returns nil if fname is empty.
func loadCache(ctx context.Context, fsys *osfs.OSFS, fname, fingerprint string) *scanCache {
	if fname == "" {
		return nil
	}
	c := &scanCache{
		fname:       fname,
		fingerprint: fingerprint,
		old:         make(map[string]cacheEntry),
		cur:         make(map[string]cacheEntry),
	}
	buf, err := fsys.ReadFile(ctx, fname)
	if errors.Is(err, fs.ErrNotExist) {
		return c
	}
	if err != nil {
		clog.Warningf(ctx, "failed to read cache %s: %v", fname, err)
		return c
	}
	cf, err := decodeCache(buf)
	if err != nil {
		clog.Warningf(ctx, "ignore corrupt cache %s: %v", fname, err)
		return c
	}
	if cf.Fingerprint != fingerprint {
		clog.Infof(ctx, "ignore cache %s: config changed", fname)
		return c
	}
	c.old = cf.Files
	if c.old == nil {
		c.old = make(map[string]cacheEntry)
	}
	return c
}

func decodeCache(buf []byte) (*cacheFile, error) {
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	buf, err = dec.DecodeAll(buf, nil)
	if err != nil {
		return nil, err
	}
	var cf cacheFile
	err = json.Unmarshal(buf, &cf)
	if err != nil {
		return nil, err
	}
	return &cf, nil
}

func encodeCache(cf *cacheFile) ([]byte, error) {
	buf, err := json.Marshal(cf)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(buf, nil), nil
}

// lookup returns cached records of the file if its digest is unchanged.
func (c *scanCache) lookup(rel, digest string) ([]registry.Record, bool) {
	if c == nil {
		return nil, false
	}
	e, ok := c.old[rel]
	if !ok || e.Digest != digest {
		return nil, false
	}
	c.hits++
	c.cur[rel] = e
	var records []registry.Record
	for _, r := range e.Records {
		records = append(records, registry.Record{
			Kind:  r.Kind,
			Name:  r.Name,
			Param: r.Param,
			File:  rel,
			Line:  r.Line,
		})
	}
	return records, true
}

func (c *scanCache) store(rel, digest string, records []registry.Record) {
	if c == nil {
		return
	}
	e := cacheEntry{Digest: digest}
	for _, r := range records {
		e.Records = append(e.Records, cachedRecord{
			Kind:  r.Kind,
			Name:  r.Name,
			Param: r.Param,
			Line:  r.Line,
		})
	}
	c.cur[rel] = e
}

// save writes entries of files seen in this run.
func (c *scanCache) save(ctx context.Context, fsys *osfs.OSFS) error {
	if c == nil {
		return nil
	}
	buf, err := encodeCache(&cacheFile{
		Fingerprint: c.fingerprint,
		Files:       c.cur,
	})
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}
	_, err = fsys.UpdateFile(ctx, c.fname, buf, 0644)
	return err
}

func (c *scanCache) hitCount() int {
	if c == nil {
		return 0
	}
	return c.hits
}
