// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

// Package lexer provides a forgiving tokenizer for C-like source text.
//
// It only classifies what is needed to recognize macro invocations:
// single byte punctuation, identifiers, numbers, character and string
// literals. Anything else becomes a one byte Unknown token, so any
// input, including binary garbage, is consumed without error.
// Whitespace, // comments and /* */ comments are skipped.
// An unterminated block comment or literal ends at the end of buffer.
package lexer

// Scanner produces tokens from a source buffer.
type Scanner struct {
	src []byte
	off int
}

// NewScanner returns a scanner over src.
// src is not copied; tokens alias it.
func NewScanner(src []byte) *Scanner {
	return &Scanner{src: src}
}

// Next returns the next token.
// After the EOF token has been returned, it keeps returning EOF.
func (s *Scanner) Next() Token {
	s.off = skipSpaceAndComments(s.src, s.off)
	if s.off >= len(s.src) {
		return Token{Kind: EOF, Pos: len(s.src), Text: s.src[len(s.src):]}
	}
	start := s.off
	kind, n := scanToken(s.src[start:])
	s.off += n
	return Token{Kind: kind, Pos: start, Text: s.src[start:s.off]}
}

// Scan tokenizes src. The result always ends with exactly one EOF token.
func Scan(src []byte) []Token {
	// rough guess to avoid most regrowth; append doubles beyond this.
	tokens := make([]Token, 0, len(src)/4+1)
	s := NewScanner(src)
	for {
		tok := s.Next()
		tokens = append(tokens, tok)
		if tok.Kind == EOF {
			return tokens
		}
	}
}

// scanToken classifies the token at the start of buf and returns its length.
// buf must not be empty. The returned length is always >= 1.
func scanToken(buf []byte) (Kind, int) {
	if k := punct[buf[0]]; k != Unknown {
		return k, 1
	}
	if n := scanNumber(buf); n > 0 {
		return Number, n
	}
	if n := scanQuoted(buf, '"'); n > 0 {
		return String, n
	}
	if n := scanQuoted(buf, '\''); n > 0 {
		return Char, n
	}
	if n := scanIdent(buf); n > 0 {
		return Ident, n
	}
	return Unknown, 1
}

func isSpace(c byte) bool {
	return c == ' ' || (c >= '\t' && c <= '\r')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isWordChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
}

// skipSpaceAndComments returns the offset of the first significant byte
// at or after off.
func skipSpaceAndComments(buf []byte, off int) int {
	for off < len(buf) {
		switch {
		case isSpace(buf[off]):
			off++
		case off+1 < len(buf) && buf[off] == '/' && buf[off+1] == '/':
			off += 2
			for off < len(buf) && buf[off] != '\n' {
				off++
			}
		case off+1 < len(buf) && buf[off] == '/' && buf[off+1] == '*':
			off += 2
			for off < len(buf) && !(buf[off] == '*' && off+1 < len(buf) && buf[off+1] == '/') {
				off++
			}
			// skip "*/", or stay at end of an unterminated comment.
			off = min(off+2, len(buf))
		default:
			return off
		}
	}
	return off
}

// IsIdent reports whether s is spelled as a single identifier token,
// i.e. [A-Za-z_][A-Za-z0-9_]*.
func IsIdent(s string) bool {
	return s != "" && scanIdent([]byte(s)) == len(s)
}

func scanIdent(buf []byte) int {
	if !isWordChar(buf[0]) {
		return 0
	}
	n := 1
	for n < len(buf) && (isWordChar(buf[n]) || isDigit(buf[n])) {
		n++
	}
	return n
}
