// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package fileset

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/labrat/osfs"
)

func setupFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for fname, content := range files {
		fullpath := filepath.Join(dir, filepath.FromSlash(fname))
		err := os.MkdirAll(filepath.Dir(fullpath), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(fullpath, []byte(content), 0644)
		if err != nil {
			t.Fatal(err)
		}
	}
}

func rels(files []File) []string {
	var r []string
	for _, f := range files {
		r = append(r, f.Rel)
	}
	return r
}

func TestCollect(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"calc.c":              "",
		"labrat.h":            "",
		"src/b.c":             "",
		"src/a.c":             "",
		"src/deep/x/y.h":      "",
		"third_party/z.c":     "",
		"vendor/labrat.h":     "",
		"out/labrat_data.c":   "",
		"docs/readme.md":      "",
		"src/deep/x/labrat.h": "",
	})

	for _, tc := range []struct {
		name string
		opt  Option
		want []string
	}{
		{
			name: "default",
			opt:  Option{Framework: "labrat.h"},
			want: []string{
				"calc.c",
				"docs/readme.md",
				"out/labrat_data.c",
				"src/a.c",
				"src/b.c",
				"src/deep/x/y.h",
				"third_party/z.c",
			},
		},
		{
			name: "exclude",
			opt: Option{
				Framework: "labrat.h",
				Exclude:   []string{"third_party", "out/*", "*.md", "docs"},
			},
			want: []string{
				"calc.c",
				"src/a.c",
				"src/b.c",
				"src/deep/x/y.h",
			},
		},
		{
			name: "self_test",
			opt:  Option{Framework: "labrat.h", SelfTest: true},
			want: []string{
				"labrat.h",
				"src/deep/x/labrat.h",
				"vendor/labrat.h",
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Collect(ctx, osfs.New(), dir, tc.opt)
			if err != nil {
				t.Fatalf("Collect(ctx, fs, %q, %+v)=_, %v; want nil err", dir, tc.opt, err)
			}
			if diff := cmp.Diff(tc.want, rels(got)); diff != "" {
				t.Errorf("Collect diff -want +got:\n%s", diff)
			}
			for _, f := range got {
				if want := filepath.Join(dir, filepath.FromSlash(f.Rel)); f.Path != want {
					t.Errorf("Path=%q; want %q", f.Path, want)
				}
			}
		})
	}
}

func TestCollectSymlinkCycle(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink requires privilege on windows")
	}
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{
		"a/a.c": "",
		"b/b.c": "",
	})
	// a/loop -> .. (cycle), b/to_a -> ../a (same dir twice),
	// b/alias.c -> b.c (same file twice), b/broken -> missing.
	for link, target := range map[string]string{
		"a/loop":    "..",
		"b/to_a":    "../a",
		"b/alias.c": "b.c",
		"b/broken":  "missing",
	} {
		err := os.Symlink(target, filepath.Join(dir, filepath.FromSlash(link)))
		if err != nil {
			t.Fatal(err)
		}
	}
	got, err := Collect(ctx, osfs.New(), dir, Option{Framework: "labrat.h"})
	if err != nil {
		t.Fatalf("Collect=%v", err)
	}
	want := []string{
		"a/a.c",
		"b/alias.c",
	}
	if diff := cmp.Diff(want, rels(got)); diff != "" {
		t.Errorf("Collect diff -want +got:\n%s", diff)
	}
}

func TestCollectErrors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	setupFiles(t, dir, map[string]string{"f.c": ""})

	_, err := Collect(ctx, osfs.New(), filepath.Join(dir, "missing"), Option{})
	if err == nil {
		t.Errorf("Collect(missing)=nil; want error")
	}
	_, err = Collect(ctx, osfs.New(), filepath.Join(dir, "f.c"), Option{})
	if err == nil {
		t.Errorf("Collect(file)=nil; want error")
	}
	_, err = Collect(ctx, osfs.New(), dir, Option{Exclude: []string{"["}})
	if err == nil {
		t.Errorf("Collect(bad pattern)=nil; want error")
	}
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = Collect(cctx, osfs.New(), dir, Option{})
	if err == nil {
		t.Errorf("Collect(canceled)=nil; want error")
	}
}
