// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package artifact renders discovered entry points for the build.
//
// The default format is an x-macro file (labrat_data.c):
//
//	#ifndef TEST_DEFINITION
//	#define TEST_DEFINITION(id)
//	#endif
//	#ifndef BENCH_DEFINITION
//	#define BENCH_DEFINITION(id)
//	#endif
//	TEST_DEFINITION(test_adds)
//	BENCH_DEFINITION(bench_parse)
//	#undef TEST_DEFINITION
//	#undef BENCH_DEFINITION
//
// Consumers define the hooks and include the file, possibly several
// times with different definitions, to produce declarations or tables.
//
// The json format is a manifest that `labrat table` turns into a C
// dispatch table without preprocessor tricks.
package artifact

import (
	"bytes"
	"fmt"

	"go.chromium.org/infra/build/labrat/lexer"
	"go.chromium.org/infra/build/labrat/registry"
)

// Format is an artifact format.
type Format string

const (
	// XMacro is the hook invocation format.
	XMacro Format = "xmacro"
	// JSON is the manifest format.
	JSON Format = "json"
)

// ParseFormat parses an artifact format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case XMacro, JSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown artifact format %q (want %q or %q)", s, XMacro, JSON)
	}
}

// Hooks are names of the hook macros in the x-macro format.
type Hooks struct {
	Test      string
	Benchmark string
}

// DefaultHooks returns TEST_DEFINITION and BENCH_DEFINITION.
func DefaultHooks() Hooks {
	return Hooks{
		Test:      "TEST_DEFINITION",
		Benchmark: "BENCH_DEFINITION",
	}
}

// Render renders reg in the format.
// Validate checks that hooks are distinct identifiers.
func (h Hooks) Validate() error {
	for _, hook := range []string{h.Test, h.Benchmark} {
		if !lexer.IsIdent(hook) {
			return fmt.Errorf("hook name %q is not an identifier", hook)
		}
	}
	if h.Test == h.Benchmark {
		return fmt.Errorf("test and benchmark hooks are both %q", h.Test)
	}
	return nil
}

func Render(format Format, reg *registry.Registry, hooks Hooks) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case XMacro:
		err = WriteXMacro(&buf, reg, hooks)
	case JSON:
		err = NewManifest(reg).Write(&buf)
	default:
		err = fmt.Errorf("unknown artifact format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
