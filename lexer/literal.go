// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package lexer

// scanNumber returns the length of a numeric literal at the start of buf,
// or 0 if buf doesn't start with a digit.
// It accepts a digit followed by any run of digits, '.', 'x' or 'X'.
// It is loose (e.g. "1.2.3" or "0xx" are one token), but never splits
// integer, hex or plain float literals.
func scanNumber(buf []byte) int {
	if !isDigit(buf[0]) {
		return 0
	}
	n := 1
	for n < len(buf) {
		c := buf[n]
		if !isDigit(c) && c != '.' && c != 'x' && c != 'X' {
			break
		}
		n++
	}
	return n
}

// scanQuoted returns the length of a quote delimited literal at the start
// of buf including both quotes, or 0 if buf doesn't start with quote.
// `\x` starts a 4 byte escape span (e.g. `\x1f`), any other backslash
// a 2 byte one. Spans are clamped to buf, so an unterminated literal
// extends to the end of buf.
func scanQuoted(buf []byte, quote byte) int {
	if buf[0] != quote {
		return 0
	}
	n := 1
	for n < len(buf) {
		switch buf[n] {
		case '\\':
			if n+1 < len(buf) && buf[n+1] == 'x' {
				n += 4
			} else {
				n += 2
			}
			n = min(n, len(buf))
		case quote:
			return n + 1
		default:
			n++
		}
	}
	return n
}
