// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package registry holds discovered test and benchmark entry points.
package registry

import "fmt"

// Kind is a kind of discovered entry point.
type Kind int

const (
	// Test is a test case, invoked without arguments.
	Test Kind = iota
	// Benchmark is a benchmark, invoked with an iteration count.
	Benchmark
)

func (k Kind) String() string {
	switch k {
	case Test:
		return "test"
	case Benchmark:
		return "benchmark"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Record is a discovered entry point.
// All fields are owned copies; records don't alias source buffers.
type Record struct {
	Kind Kind   `json:"-"`
	Name string `json:"name"`
	// Param is the iteration count parameter name of a benchmark.
	Param string `json:"param,omitempty"`
	// File is a slash separated path relative to the scanned root.
	File string `json:"file,omitempty"`
	// Line is 1-based line of the macro name.
	Line int `json:"line,omitempty"`
}

// Location returns "file:line" of the record.
func (r Record) Location() string {
	return fmt.Sprintf("%s:%d", r.File, r.Line)
}

func (r Record) String() string {
	if r.Kind == Benchmark {
		return fmt.Sprintf("%s %s(%s) at %s", r.Kind, r.Name, r.Param, r.Location())
	}
	return fmt.Sprintf("%s %s at %s", r.Kind, r.Name, r.Location())
}

// Registry is an ordered, append-only collection of records.
// Order is discovery order: file enumeration order, then position
// in the file.
type Registry struct {
	tests      []Record
	benchmarks []Record
}

// Add appends records to the registry.
func (r *Registry) Add(records ...Record) {
	for _, rec := range records {
		switch rec.Kind {
		case Test:
			r.tests = append(r.tests, rec)
		case Benchmark:
			r.benchmarks = append(r.benchmarks, rec)
		}
	}
}

// Tests returns test records in discovery order.
// The caller must not modify the returned slice.
func (r *Registry) Tests() []Record {
	return r.tests
}

// Benchmarks returns benchmark records in discovery order.
// The caller must not modify the returned slice.
func (r *Registry) Benchmarks() []Record {
	return r.benchmarks
}

// Len returns the number of records.
func (r *Registry) Len() int {
	return len(r.tests) + len(r.benchmarks)
}

// Duplicate is a record whose name was already registered with the same kind.
type Duplicate struct {
	First, Dup Record
}

// Duplicates returns records that reuse the name of an earlier record
// of the same kind. Those would be redefinitions in generated code.
func (r *Registry) Duplicates() []Duplicate {
	var dups []Duplicate
	for _, records := range [][]Record{r.tests, r.benchmarks} {
		seen := make(map[string]Record)
		for _, rec := range records {
			if first, ok := seen[rec.Name]; ok {
				dups = append(dups, Duplicate{First: first, Dup: rec})
				continue
			}
			seen[rec.Name] = rec
		}
	}
	return dups
}
