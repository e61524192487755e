// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package lexer

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tok struct {
	Kind Kind
	Text string
}

func simplify(tokens []Token) []tok {
	var r []tok
	for _, t := range tokens {
		r = append(r, tok{Kind: t.Kind, Text: string(t.Text)})
	}
	return r
}

func TestScan(t *testing.T) {
	for _, tc := range []struct {
		name string
		src  string
		want []tok
	}{
		{
			name: "empty",
			src:  "",
			want: []tok{{EOF, ""}},
		},
		{
			name: "whitespace",
			src:  " \t\r\n\v\f ",
			want: []tok{{EOF, ""}},
		},
		{
			name: "test_case",
			src:  "TEST_CASE(foo) { }",
			want: []tok{
				{Ident, "TEST_CASE"},
				{LParen, "("},
				{Ident, "foo"},
				{RParen, ")"},
				{LBrace, "{"},
				{RBrace, "}"},
				{EOF, ""},
			},
		},
		{
			name: "include",
			src:  `#include "labrat.h"` + "\n#include <stdio.h>\n",
			want: []tok{
				{Pound, "#"},
				{Ident, "include"},
				{String, `"labrat.h"`},
				{Pound, "#"},
				{Ident, "include"},
				{Unknown, "<"},
				{Ident, "stdio"},
				{Period, "."},
				{Ident, "h"},
				{Unknown, ">"},
				{EOF, ""},
			},
		},
		{
			name: "comments",
			src: `// TEST_CASE(line)
a /* TEST_CASE(block)
 */ b // trailing`,
			want: []tok{
				{Ident, "a"},
				{Ident, "b"},
				{EOF, ""},
			},
		},
		{
			name: "numbers",
			src:  "0x1F 3.14 42 1.2.3 9X",
			want: []tok{
				{Number, "0x1F"},
				{Number, "3.14"},
				{Number, "42"},
				{Number, "1.2.3"},
				{Number, "9X"},
				{EOF, ""},
			},
		},
		{
			name: "number_then_ident",
			src:  "10u x1",
			want: []tok{
				{Number, "10"},
				{Ident, "u"},
				{Ident, "x1"},
				{EOF, ""},
			},
		},
		{
			name: "strings",
			src:  `"a\"b" "\x41z" ""`,
			want: []tok{
				{String, `"a\"b"`},
				{String, `"\x41z"`},
				{String, `""`},
				{EOF, ""},
			},
		},
		{
			name: "chars",
			src:  `'a' '\'' '\x7f' '"'`,
			want: []tok{
				{Char, `'a'`},
				{Char, `'\''`},
				{Char, `'\x7f'`},
				{Char, `'"'`},
				{EOF, ""},
			},
		},
		{
			name: "punctuation",
			src:  `(){}[],.*-+!~\/=&#;:?`,
			want: []tok{
				{LParen, "("}, {RParen, ")"},
				{LBrace, "{"}, {RBrace, "}"},
				{LBracket, "["}, {RBracket, "]"},
				{Comma, ","}, {Period, "."}, {Asterisk, "*"},
				{Minus, "-"}, {Plus, "+"}, {Exclamation, "!"},
				{Tilde, "~"}, {Backslash, `\`}, {Slash, "/"},
				{Equals, "="}, {Ampersand, "&"}, {Pound, "#"},
				{Semicolon, ";"}, {Colon, ":"}, {QuestionMark, "?"},
				{EOF, ""},
			},
		},
		{
			name: "unknown",
			src:  "a<b>c%\x00\xff",
			want: []tok{
				{Ident, "a"},
				{Unknown, "<"},
				{Ident, "b"},
				{Unknown, ">"},
				{Ident, "c"},
				{Unknown, "%"},
				{Unknown, "\x00"},
				{Unknown, "\xff"},
				{EOF, ""},
			},
		},
		{
			name: "unterminated_string",
			src:  `x = "abc`,
			want: []tok{
				{Ident, "x"},
				{Equals, "="},
				{String, `"abc`},
				{EOF, ""},
			},
		},
		{
			name: "unterminated_escape",
			src:  `"ab\`,
			want: []tok{
				{String, `"ab\`},
				{EOF, ""},
			},
		},
		{
			name: "unterminated_hex_escape",
			src:  `'\x`,
			want: []tok{
				{Char, `'\x`},
				{EOF, ""},
			},
		},
		{
			name: "unterminated_block_comment",
			src:  "a /* b c",
			want: []tok{
				{Ident, "a"},
				{EOF, ""},
			},
		},
		{
			name: "comment_star_at_end",
			src:  "a /* b *",
			want: []tok{
				{Ident, "a"},
				{EOF, ""},
			},
		},
		{
			name: "lone_slash",
			src:  "a / b /",
			want: []tok{
				{Ident, "a"},
				{Slash, "/"},
				{Ident, "b"},
				{Slash, "/"},
				{EOF, ""},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := simplify(Scan([]byte(tc.src)))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Scan(%q) diff -want +got:\n%s", tc.src, diff)
			}
		})
	}
}

func TestScanPositions(t *testing.T) {
	src := []byte("  foo(\"x\") // c\n  'y'")
	for _, tok := range Scan(src) {
		if !bytes.Equal(src[tok.Pos:tok.Pos+len(tok.Text)], tok.Text) {
			t.Errorf("token %v doesn't alias src at %d", tok, tok.Pos)
		}
	}
}

func TestScannerRepeatsEOF(t *testing.T) {
	s := NewScanner([]byte("a"))
	if tok := s.Next(); tok.Kind != Ident {
		t.Fatalf("Next()=%v; want IDENT", tok)
	}
	for range 3 {
		if tok := s.Next(); tok.Kind != EOF || tok.Pos != 1 {
			t.Errorf("Next()=%v; want EOF@1", tok)
		}
	}
}

func TestIsIdent(t *testing.T) {
	for _, tc := range []struct {
		s    string
		want bool
	}{
		{s: "test_adds", want: true},
		{s: "_x9", want: true},
		{s: "A", want: true},
		{s: ""},
		{s: "9b"},
		{s: "n m"},
		{s: "a(void); int x"},
		{s: "a-b"},
		{s: "caf\u00e9"},
	} {
		if got := IsIdent(tc.s); got != tc.want {
			t.Errorf("IsIdent(%q)=%t; want %t", tc.s, got, tc.want)
		}
	}
}

func TestKindString(t *testing.T) {
	for k := LParen; k <= EOF; k++ {
		if k.String() == "" {
			t.Errorf("Kind(%d).String() is empty", k)
		}
	}
	if got, want := Kind(200).String(), "Kind(200)"; got != want {
		t.Errorf("Kind(200).String()=%q; want %q", got, want)
	}
}

func TestStringValue(t *testing.T) {
	for _, tc := range []struct {
		src    string
		want   string
		wantOK bool
	}{
		{src: `"labrat.h"`, want: "labrat.h", wantOK: true},
		{src: `""`, want: "", wantOK: true},
		{src: `"labrat.h`, wantOK: false},
		{src: `'a'`, wantOK: false},
	} {
		tokens := Scan([]byte(tc.src))
		got, ok := tokens[0].StringValue()
		if ok != tc.wantOK || string(got) != tc.want {
			t.Errorf("StringValue(%q)=%q, %t; want %q, %t", tc.src, got, ok, tc.want, tc.wantOK)
		}
	}
}

// checkCoverage verifies invariants that must hold for any input.
func checkCoverage(t *testing.T, src []byte) {
	t.Helper()
	tokens := Scan(src)
	if len(tokens) == 0 {
		t.Fatalf("Scan(%q) returned no tokens", src)
	}
	for i, tok := range tokens[:len(tokens)-1] {
		if tok.Kind == EOF {
			t.Fatalf("Scan(%q): EOF at %d of %d", src, i, len(tokens))
		}
		if len(tok.Text) == 0 {
			t.Fatalf("Scan(%q): empty token %v", src, tok)
		}
	}
	last := tokens[len(tokens)-1]
	if last.Kind != EOF || last.Pos != len(src) {
		t.Fatalf("Scan(%q): last token %v; want EOF at %d", src, last, len(src))
	}
	// every byte between tokens must be insignificant.
	off := 0
	for _, tok := range tokens {
		if tok.Pos < off {
			t.Fatalf("Scan(%q): token %v overlaps previous token ending at %d", src, tok, off)
		}
		gap := src[off:tok.Pos]
		if skipSpaceAndComments(gap, 0) != len(gap) {
			t.Fatalf("Scan(%q): significant bytes %q skipped before %v", src, gap, tok)
		}
		off = tok.Pos + len(tok.Text)
	}
}

func TestScanRandom(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	alphabet := []byte("ab_19x.\"'\\/*#(), \n\t\x00\xff<")
	for range 2000 {
		buf := make([]byte, r.Intn(64))
		for i := range buf {
			if r.Intn(4) == 0 {
				buf[i] = byte(r.Intn(256))
				continue
			}
			buf[i] = alphabet[r.Intn(len(alphabet))]
		}
		checkCoverage(t, buf)
	}
}

func FuzzScan(f *testing.F) {
	for _, s := range []string{
		"",
		"   ",
		"#include \"labrat.h\"\nTEST_CASE(foo) {}",
		"BENCHMARK(b, n) { }",
		`"unterminated`,
		`'\x`,
		"/* open",
		"// line",
		"0x12.5Xz",
		"\x00\x01\xfe\xff",
	} {
		f.Add([]byte(s))
	}
	f.Fuzz(func(t *testing.T, src []byte) {
		checkCoverage(t, src)
	})
}
