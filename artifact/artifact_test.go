// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package artifact

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"go.chromium.org/infra/build/labrat/registry"
)

func testRegistry() *registry.Registry {
	reg := &registry.Registry{}
	reg.Add(
		registry.Record{Kind: registry.Test, Name: "test_adds", File: "calc.c", Line: 40},
		registry.Record{Kind: registry.Benchmark, Name: "bench_parse", Param: "n", File: "calc.c", Line: 60},
		registry.Record{Kind: registry.Test, Name: "test_subtracts", File: "calc.c", Line: 48},
	)
	return reg
}

func TestWriteXMacro(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXMacro(&buf, testRegistry(), DefaultHooks())
	if err != nil {
		t.Fatalf("WriteXMacro=%v", err)
	}
	want := `// Code generated by labrat gen. DO NOT EDIT.
#ifndef TEST_DEFINITION
#define TEST_DEFINITION(id)
#endif
#ifndef BENCH_DEFINITION
#define BENCH_DEFINITION(id)
#endif
TEST_DEFINITION(test_adds)
TEST_DEFINITION(test_subtracts)
BENCH_DEFINITION(bench_parse)
#undef TEST_DEFINITION
#undef BENCH_DEFINITION
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteXMacro diff -want +got:\n%s", diff)
	}
}

func TestWriteXMacroEmpty(t *testing.T) {
	var buf bytes.Buffer
	err := WriteXMacro(&buf, &registry.Registry{}, Hooks{Test: "T", Benchmark: "B"})
	if err != nil {
		t.Fatalf("WriteXMacro=%v", err)
	}
	want := `// Code generated by labrat gen. DO NOT EDIT.
#ifndef T
#define T(id)
#endif
#ifndef B
#define B(id)
#endif
#undef T
#undef B
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteXMacro diff -want +got:\n%s", diff)
	}
}

func TestWriteXMacroBadHooks(t *testing.T) {
	for _, hooks := range []Hooks{
		{},
		{Test: "T"},
		{Test: "H", Benchmark: "H"},
		{Test: "A B", Benchmark: "BENCH_DEFINITION"},
		{Test: "TEST_DEFINITION", Benchmark: "B(x)"},
		{Test: "1T", Benchmark: "B"},
	} {
		var buf bytes.Buffer
		if err := WriteXMacro(&buf, testRegistry(), hooks); err == nil {
			t.Errorf("WriteXMacro(%+v)=nil; want error", hooks)
		}
	}
}

func TestManifestRoundTrip(t *testing.T) {
	reg := testRegistry()
	var buf bytes.Buffer
	err := NewManifest(reg).Write(&buf)
	if err != nil {
		t.Fatalf("Write=%v", err)
	}
	m, err := ReadManifest(&buf)
	if err != nil {
		t.Fatalf("ReadManifest=%v", err)
	}
	got := m.Registry()
	if diff := cmp.Diff(reg.Tests(), got.Tests()); diff != "" {
		t.Errorf("tests diff -want +got:\n%s", diff)
	}
	if diff := cmp.Diff(reg.Benchmarks(), got.Benchmarks()); diff != "" {
		t.Errorf("benchmarks diff -want +got:\n%s", diff)
	}
}

func TestManifestFormat(t *testing.T) {
	reg := &registry.Registry{}
	reg.Add(registry.Record{Kind: registry.Benchmark, Name: "b", Param: "n", File: "x.c", Line: 2})
	buf, err := Render(JSON, reg, DefaultHooks())
	if err != nil {
		t.Fatal(err)
	}
	want := `{
  "version": 1,
  "tests": [],
  "benchmarks": [
    {
      "name": "b",
      "param": "n",
      "file": "x.c",
      "line": 2
    }
  ]
}
`
	if diff := cmp.Diff(want, string(buf)); diff != "" {
		t.Errorf("Render(json) diff -want +got:\n%s", diff)
	}
}

func TestReadManifestErrors(t *testing.T) {
	for _, s := range []string{
		``,
		`{`,
		`{"version": 2, "tests": [], "benchmarks": []}`,
		`{"version": 1, "tests": [{"file": "a.c"}], "benchmarks": []}`,
		`{"version": 1, "tests": [], "benchmarks": [{"param": "n"}]}`,
		`{"version": 1, "tests": [{"name": "a(void); int x"}], "benchmarks": []}`,
		`{"version": 1, "tests": [{"name": "9b"}], "benchmarks": []}`,
		`{"version": 1, "tests": [], "benchmarks": [{"name": "9b", "param": "n"}]}`,
		`{"version": 1, "tests": [], "benchmarks": [{"name": "bench", "param": "n m"}]}`,
		`{"version": 1, "tests": [{"name": "t\"); x(\""}], "benchmarks": []}`,
	} {
		if _, err := ReadManifest(strings.NewReader(s)); err == nil {
			t.Errorf("ReadManifest(%q)=nil error; want error", s)
		}
	}
}

func TestWriteTable(t *testing.T) {
	m := NewManifest(testRegistry())
	var buf bytes.Buffer
	err := WriteTable(&buf, m)
	if err != nil {
		t.Fatalf("WriteTable=%v", err)
	}
	want := `// Code generated by labrat table. DO NOT EDIT.
#include <stddef.h>
#include <stdint.h>

void test_adds(void); // calc.c:40
void test_subtracts(void); // calc.c:48

void bench_parse(int64_t n); // calc.c:60

void (*const lr_tests[])(void) = {
    test_adds,
    test_subtracts,
    NULL,
};
const char *const lr_test_names[] = {
    "test_adds",
    "test_subtracts",
    NULL,
};
const size_t lr_test_count = 2;

void (*const lr_benchmarks[])(int64_t) = {
    bench_parse,
    NULL,
};
const char *const lr_benchmark_names[] = {
    "bench_parse",
    NULL,
};
const size_t lr_benchmark_count = 1;
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("WriteTable diff -want +got:\n%s", diff)
	}
}

func TestParseFormat(t *testing.T) {
	for _, s := range []string{"xmacro", "json"} {
		f, err := ParseFormat(s)
		if err != nil || string(f) != s {
			t.Errorf("ParseFormat(%q)=%q, %v; want %q, nil", s, f, err, s)
		}
	}
	if _, err := ParseFormat("yaml"); err == nil {
		t.Errorf("ParseFormat(yaml)=nil error; want error")
	}
}
