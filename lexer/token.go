// Copyright 2026 The Chromium Authors
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package lexer

import "fmt"

// Kind is a token classification.
type Kind uint8

// Token kinds.
const (
	LParen Kind = iota
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Period
	Asterisk
	Minus
	Plus
	Exclamation
	Tilde
	Backslash
	Slash
	Equals
	Ampersand
	Pound
	Semicolon
	Colon
	QuestionMark
	Ident
	Number
	Char
	String
	Unknown
	EOF
)

var kindNames = [...]string{
	LParen:       "LPAREN",
	RParen:       "RPAREN",
	LBrace:       "LBRACE",
	RBrace:       "RBRACE",
	LBracket:     "LBRACKET",
	RBracket:     "RBRACKET",
	Comma:        "COMMA",
	Period:       "PERIOD",
	Asterisk:     "ASTERISK",
	Minus:        "MINUS",
	Plus:         "PLUS",
	Exclamation:  "EXCLAMATION",
	Tilde:        "TILDE",
	Backslash:    "BACKSLASH",
	Slash:        "SLASH",
	Equals:       "EQ",
	Ampersand:    "AMPERSAND",
	Pound:        "POUND",
	Semicolon:    "SEMICOLON",
	Colon:        "COLON",
	QuestionMark: "QUESTION_MARK",
	Ident:        "IDENT",
	Number:       "NUMBER",
	Char:         "CHAR",
	String:       "STRING",
	Unknown:      "UNKNOWN",
	EOF:          "EOF",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// punct maps single byte structural punctuation to its kind.
var punct = [256]Kind{}

func init() {
	for i := range punct {
		punct[i] = Unknown
	}
	for c, k := range map[byte]Kind{
		'(':  LParen,
		')':  RParen,
		'{':  LBrace,
		'}':  RBrace,
		'[':  LBracket,
		']':  RBracket,
		',':  Comma,
		'.':  Period,
		'*':  Asterisk,
		'-':  Minus,
		'+':  Plus,
		'!':  Exclamation,
		'~':  Tilde,
		'\\': Backslash,
		'/':  Slash,
		'=':  Equals,
		'&':  Ampersand,
		'#':  Pound,
		';':  Semicolon,
		':':  Colon,
		'?':  QuestionMark,
	} {
		punct[c] = k
	}
}

// Token is a classified span of a source buffer.
// Text aliases the buffer it was scanned from; it is valid only
// as long as the buffer is.
type Token struct {
	Kind Kind
	// Pos is the byte offset of Text in the source buffer.
	Pos  int
	Text []byte
}

// Is reports whether tok is an identifier spelled name.
func (tok Token) Is(name string) bool {
	return tok.Kind == Ident && string(tok.Text) == name
}

// StringValue returns the content of a string literal between its
// quotes. ok is false if tok is not a string literal or is not
// terminated by a closing quote.
func (tok Token) StringValue() (value []byte, ok bool) {
	if tok.Kind != String || len(tok.Text) < 2 || tok.Text[len(tok.Text)-1] != '"' {
		return nil, false
	}
	return tok.Text[1 : len(tok.Text)-1], true
}

func (tok Token) String() string {
	return fmt.Sprintf("%s@%d %q", tok.Kind, tok.Pos, tok.Text)
}
