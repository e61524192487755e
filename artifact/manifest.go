// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package artifact

import (
	"encoding/json"
	"fmt"
	"io"

	"go.chromium.org/infra/build/labrat/lexer"
	"go.chromium.org/infra/build/labrat/registry"
)

// ManifestVersion is the version of the manifest format.
const ManifestVersion = 1

// Manifest is the json form of a registry.
type Manifest struct {
	Version    int               `json:"version"`
	Tests      []registry.Record `json:"tests"`
	Benchmarks []registry.Record `json:"benchmarks"`
}

// NewManifest creates a manifest of reg.
func NewManifest(reg *registry.Registry) *Manifest {
	m := &Manifest{
		Version:    ManifestVersion,
		Tests:      append([]registry.Record{}, reg.Tests()...),
		Benchmarks: append([]registry.Record{}, reg.Benchmarks()...),
	}
	return m
}

// Write writes the manifest as indented json.
func (m *Manifest) Write(w io.Writer) error {
	buf, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	buf = append(buf, '\n')
	_, err = w.Write(buf)
	return err
}

// ReadManifest reads a manifest written by Write.
func ReadManifest(r io.Reader) (*Manifest, error) {
	var m Manifest
	err := json.NewDecoder(r).Decode(&m)
	if err != nil {
		return nil, fmt.Errorf("failed to decode manifest: %w", err)
	}
	if m.Version != ManifestVersion {
		return nil, fmt.Errorf("unsupported manifest version %d (want %d)", m.Version, ManifestVersion)
	}
	for i := range m.Tests {
		m.Tests[i].Kind = registry.Test
		err := checkRecord(m.Tests[i])
		if err != nil {
			return nil, fmt.Errorf("test %d: %w", i, err)
		}
	}
	for i := range m.Benchmarks {
		m.Benchmarks[i].Kind = registry.Benchmark
		err := checkRecord(m.Benchmarks[i])
		if err != nil {
			return nil, fmt.Errorf("benchmark %d: %w", i, err)
		}
	}
	return &m, nil
}

// checkRecord checks that names of r can be emitted into C source.
func checkRecord(r registry.Record) error {
	if !lexer.IsIdent(r.Name) {
		return fmt.Errorf("name %q is not an identifier", r.Name)
	}
	if r.Param != "" && !lexer.IsIdent(r.Param) {
		return fmt.Errorf("param %q is not an identifier", r.Param)
	}
	return nil
}

// Registry returns a registry of the manifest's records.
func (m *Manifest) Registry() *registry.Registry {
	reg := &registry.Registry{}
	reg.Add(m.Tests...)
	reg.Add(m.Benchmarks...)
	return reg
}
