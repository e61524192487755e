// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package matcher finds test and benchmark declarations in token streams.
//
// It recognizes invocations of the form
//
//	TEST_CASE(name)
//	BENCHMARK(name, iterations)
//
// but only after the file includes the framework header:
//
//	#include "labrat.h"
//
// so files that merely contain the same token shapes are ignored.
// In self-test mode, the include is not required.
package matcher

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"go.chromium.org/infra/build/labrat/lexer"
	"go.chromium.org/infra/build/labrat/registry"
)

// DefaultFramework is the default framework header name.
const DefaultFramework = "labrat.h"

// Shape is a macro invocation shape
//
//	Macro ( ident [, ident]... )
//
// with Arity identifiers. The first identifier is the entry point name,
// the second (if any) is the benchmark iteration parameter name.
type Shape struct {
	Kind  registry.Kind
	Macro string
	// Placeholder is the macro parameter name used in the framework's
	// own macro definition, e.g. `#define TEST_CASE(__lr_test_id__)`.
	// It is never reported as an entry point.
	Placeholder string
	Arity       int
}

// width returns the number of tokens of the shape.
func (s Shape) width() int {
	// Macro ( ident {, ident} )
	return 2*s.Arity + 2
}

// DefaultShapes returns shapes of TEST_CASE and BENCHMARK.
func DefaultShapes() []Shape {
	return []Shape{
		{
			Kind:        registry.Test,
			Macro:       "TEST_CASE",
			Placeholder: "__lr_test_id__",
			Arity:       1,
		},
		{
			Kind:        registry.Benchmark,
			Macro:       "BENCHMARK",
			Placeholder: "__lr_bench_id__",
			Arity:       2,
		},
	}
}

// Config is a matcher configuration.
type Config struct {
	// Framework is the header name that enables matching in a file
	// once `#include "<Framework>"` appears.
	Framework string
	// SelfTest enables matching from the first token, without include.
	SelfTest bool
	// Shapes are recognized shapes, tried in order at each token.
	Shapes []Shape
}

// DefaultConfig returns a config for labrat.h with the default shapes.
func DefaultConfig() Config {
	return Config{
		Framework: DefaultFramework,
		Shapes:    DefaultShapes(),
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.Framework == "" && !c.SelfTest {
		return errors.New("matcher: empty framework name")
	}
	if len(c.Shapes) == 0 {
		return errors.New("matcher: no shapes")
	}
	for _, s := range c.Shapes {
		if !lexer.IsIdent(s.Macro) {
			return fmt.Errorf("matcher: macro name %q is not an identifier", s.Macro)
		}
		if s.Placeholder != "" && !lexer.IsIdent(s.Placeholder) {
			return fmt.Errorf("matcher: placeholder %q of %s is not an identifier", s.Placeholder, s.Macro)
		}
		switch s.Kind {
		case registry.Test:
			if s.Arity != 1 {
				return fmt.Errorf("matcher: test shape %s has arity %d, want 1", s.Macro, s.Arity)
			}
		case registry.Benchmark:
			if s.Arity != 2 {
				return fmt.Errorf("matcher: benchmark shape %s has arity %d, want 2", s.Macro, s.Arity)
			}
		default:
			return fmt.Errorf("matcher: unknown kind %v in shape %s", s.Kind, s.Macro)
		}
	}
	return nil
}

// Fingerprint returns a digest identifying the config.
// Scan results produced under configs with the same fingerprint are
// interchangeable.
func (c Config) Fingerprint() string {
	buf, err := json.Marshal(c)
	if err != nil {
		// Config only has marshalable fields.
		panic(err)
	}
	h := sha256.Sum256(buf)
	return hex.EncodeToString(h[:])
}

// Matcher matches shapes in token streams.
type Matcher struct {
	cfg          Config
	placeholders map[string]bool
}

// New creates a new matcher for cfg.
func New(cfg Config) (*Matcher, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	m := &Matcher{
		cfg:          cfg,
		placeholders: make(map[string]bool),
	}
	for _, s := range cfg.Shapes {
		if s.Placeholder != "" {
			m.placeholders[s.Placeholder] = true
		}
	}
	return m, nil
}

// Config returns the matcher's config.
func (m *Matcher) Config() Config {
	return m.cfg
}

// Match is a matched shape.
type Match struct {
	Kind  registry.Kind
	Name  string
	Param string
	// Pos is the byte offset of the macro name in the source buffer.
	Pos int
}

// Match returns matches in tokens, in token order.
// Names are copied, so the result doesn't alias the source buffer.
func (m *Matcher) Match(tokens []lexer.Token) []Match {
	var matches []Match
	included := m.cfg.SelfTest
	for i := range tokens {
		if !included {
			included = m.isInclude(tokens[i:])
		}
		if !included {
			continue
		}
		for _, s := range m.cfg.Shapes {
			match, ok := m.matchShape(s, tokens[i:])
			if ok {
				matches = append(matches, match)
				break
			}
		}
	}
	return matches
}

// isInclude reports whether tokens starts with `#include "<framework>"`.
func (m *Matcher) isInclude(tokens []lexer.Token) bool {
	if len(tokens) < 3 {
		return false
	}
	if tokens[0].Kind != lexer.Pound || !tokens[1].Is("include") {
		return false
	}
	v, ok := tokens[2].StringValue()
	return ok && string(v) == m.cfg.Framework
}

func (m *Matcher) matchShape(s Shape, tokens []lexer.Token) (Match, bool) {
	if len(tokens) < s.width() {
		return Match{}, false
	}
	if !tokens[0].Is(s.Macro) || tokens[1].Kind != lexer.LParen {
		return Match{}, false
	}
	var args []string
	i := 2
	for n := range s.Arity {
		if n > 0 {
			if tokens[i].Kind != lexer.Comma {
				return Match{}, false
			}
			i++
		}
		if tokens[i].Kind != lexer.Ident {
			return Match{}, false
		}
		args = append(args, string(tokens[i].Text))
		i++
	}
	if tokens[i].Kind != lexer.RParen {
		return Match{}, false
	}
	if m.placeholders[args[0]] {
		return Match{}, false
	}
	match := Match{
		Kind: s.Kind,
		Name: args[0],
		Pos:  tokens[0].Pos,
	}
	if len(args) > 1 {
		match.Param = args[1]
	}
	return match, true
}
