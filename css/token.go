// Package css parses and matches CSS selectors against a dom tree. Tokenizing
// follows CSS Syntax Module Level 3, restricted to the tokens selectors use.
// Reference: https://www.w3.org/TR/css-syntax-3/
package css

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// TokenType represents the type of a CSS token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIdent
	TokenFunction
	TokenAtKeyword
	TokenHash
	TokenString
	TokenBadString
	TokenDelim
	TokenNumber
	TokenPercentage
	TokenDimension
	TokenWhitespace
	TokenColon
	TokenSemicolon
	TokenComma
	TokenOpenSquare  // [
	TokenCloseSquare // ]
	TokenOpenParen   // (
	TokenCloseParen  // )
	TokenOpenCurly   // {
	TokenCloseCurly  // }
)

// HashType indicates whether a hash token is an ID or unrestricted.
type HashType int

const (
	HashUnrestricted HashType = iota
	HashID
)

// Token represents a CSS token.
type Token struct {
	Type     TokenType
	Value    string   // The string value of the token
	NumValue float64  // Numeric value for number/percentage/dimension
	Unit     string   // Unit for dimension tokens
	HashType HashType // Type flag for hash tokens
	Delim    rune     // The delimiter character for delim tokens
	Pos      int      // Byte offset in the source
}

func (t Token) String() string {
	switch t.Type {
	case TokenEOF:
		return "<EOF>"
	case TokenIdent:
		return fmt.Sprintf("<IDENT %q>", t.Value)
	case TokenFunction:
		return fmt.Sprintf("<FUNCTION %q>", t.Value)
	case TokenAtKeyword:
		return fmt.Sprintf("<AT-KEYWORD %q>", t.Value)
	case TokenHash:
		if t.HashType == HashID {
			return fmt.Sprintf("<HASH id %q>", t.Value)
		}
		return fmt.Sprintf("<HASH %q>", t.Value)
	case TokenString:
		return fmt.Sprintf("<STRING %q>", t.Value)
	case TokenBadString:
		return "<BAD-STRING>"
	case TokenDelim:
		return fmt.Sprintf("<DELIM %q>", string(t.Delim))
	case TokenNumber:
		return fmt.Sprintf("<NUMBER %v>", t.NumValue)
	case TokenPercentage:
		return fmt.Sprintf("<PERCENTAGE %v%%>", t.NumValue)
	case TokenDimension:
		return fmt.Sprintf("<DIMENSION %v%s>", t.NumValue, t.Unit)
	case TokenWhitespace:
		return "<WHITESPACE>"
	case TokenColon:
		return "<COLON>"
	case TokenSemicolon:
		return "<SEMICOLON>"
	case TokenComma:
		return "<COMMA>"
	case TokenOpenSquare:
		return "<[>"
	case TokenCloseSquare:
		return "<]>"
	case TokenOpenParen:
		return "<(>"
	case TokenCloseParen:
		return "<)>"
	case TokenOpenCurly:
		return "<{>"
	case TokenCloseCurly:
		return "<}>"
	default:
		return "<UNKNOWN>"
	}
}

// Tokenizer splits selector text into tokens.
type Tokenizer struct {
	input []rune
	pos   int
	// byte offsets of each rune, for error positions
	offsets []int
}

// NewTokenizer creates a tokenizer for input. CRLF, CR and FF are normalized
// to LF and NUL to U+FFFD per §3.3.
func NewTokenizer(input string) *Tokenizer {
	input = strings.NewReplacer("\r\n", "\n", "\r", "\n", "\f", "\n", "\x00", "�").Replace(input)
	t := &Tokenizer{input: make([]rune, 0, len(input))}
	for i, r := range input {
		t.input = append(t.input, r)
		t.offsets = append(t.offsets, i)
	}
	t.offsets = append(t.offsets, len(input))
	return t
}

const eof = rune(-1)

func (t *Tokenizer) peekN(n int) rune {
	if t.pos+n >= len(t.input) {
		return eof
	}
	return t.input[t.pos+n]
}

func (t *Tokenizer) peek() rune {
	return t.peekN(0)
}

func (t *Tokenizer) consume() rune {
	r := t.peek()
	if r != eof {
		t.pos++
	}
	return r
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isNameStartCodePoint(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_' || r >= 0x80
}

func isNameCodePoint(r rune) bool {
	return isNameStartCodePoint(r) || isDigit(r) || r == '-'
}

func (t *Tokenizer) validEscapeAt(n int) bool {
	return t.peekN(n) == '\\' && t.peekN(n+1) != '\n' && t.peekN(n+1) != eof
}

// startsIdentifierAt implements §4.3.9.
func (t *Tokenizer) startsIdentifierAt(n int) bool {
	switch r := t.peekN(n); {
	case r == '-':
		next := t.peekN(n + 1)
		return isNameStartCodePoint(next) || next == '-' || t.validEscapeAt(n+1)
	case isNameStartCodePoint(r):
		return true
	case r == '\\':
		return t.validEscapeAt(n)
	}
	return false
}

// startsNumber implements §4.3.10.
func (t *Tokenizer) startsNumber() bool {
	r := t.peek()
	switch {
	case r == '+' || r == '-':
		next := t.peekN(1)
		return isDigit(next) || (next == '.' && isDigit(t.peekN(2)))
	case r == '.':
		return isDigit(t.peekN(1))
	}
	return isDigit(r)
}

// consumeEscape is called after the backslash has been consumed.
func (t *Tokenizer) consumeEscape() rune {
	r := t.consume()
	if r == eof {
		return utf8.RuneError
	}
	if !isHexDigit(r) {
		return r
	}
	hex := []rune{r}
	for len(hex) < 6 && isHexDigit(t.peek()) {
		hex = append(hex, t.consume())
	}
	if isWhitespace(t.peek()) {
		t.consume()
	}
	n, _ := strconv.ParseUint(string(hex), 16, 32)
	if n == 0 || n > utf8.MaxRune || (n >= 0xD800 && n <= 0xDFFF) {
		return utf8.RuneError
	}
	return rune(n)
}

func (t *Tokenizer) consumeName() string {
	var sb strings.Builder
	for {
		r := t.peek()
		switch {
		case isNameCodePoint(r):
			sb.WriteRune(t.consume())
		case t.validEscapeAt(0):
			t.consume()
			sb.WriteRune(t.consumeEscape())
		default:
			return sb.String()
		}
	}
}

func (t *Tokenizer) consumeNumber() (float64, string) {
	start := t.pos
	if r := t.peek(); r == '+' || r == '-' {
		t.consume()
	}
	for isDigit(t.peek()) {
		t.consume()
	}
	if t.peek() == '.' && isDigit(t.peekN(1)) {
		t.consume()
		for isDigit(t.peek()) {
			t.consume()
		}
	}
	if r := t.peek(); r == 'e' || r == 'E' {
		next := t.peekN(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(t.peekN(2))) {
			t.consume()
			t.consume()
			for isDigit(t.peek()) {
				t.consume()
			}
		}
	}
	repr := string(t.input[start:t.pos])
	v, _ := strconv.ParseFloat(repr, 64)
	return v, repr
}

func (t *Tokenizer) consumeNumericToken(pos int) Token {
	v, repr := t.consumeNumber()
	if t.startsIdentifierAt(0) {
		return Token{Type: TokenDimension, NumValue: v, Value: repr, Unit: t.consumeName(), Pos: pos}
	}
	if t.peek() == '%' {
		t.consume()
		return Token{Type: TokenPercentage, NumValue: v, Value: repr, Pos: pos}
	}
	return Token{Type: TokenNumber, NumValue: v, Value: repr, Pos: pos}
}

// consumeString is called after the opening quote has been consumed.
func (t *Tokenizer) consumeString(quote rune, pos int) Token {
	var sb strings.Builder
	for {
		r := t.consume()
		switch {
		case r == quote || r == eof:
			return Token{Type: TokenString, Value: sb.String(), Pos: pos}
		case r == '\n':
			t.pos--
			return Token{Type: TokenBadString, Pos: pos}
		case r == '\\':
			if t.peek() == eof {
				continue
			}
			if t.peek() == '\n' {
				t.consume()
				continue
			}
			sb.WriteRune(t.consumeEscape())
		default:
			sb.WriteRune(r)
		}
	}
}

// NextToken consumes and returns the next token.
func (t *Tokenizer) NextToken() Token {
	pos := t.offsets[t.pos]
	r := t.peek()
	switch {
	case r == eof:
		return Token{Type: TokenEOF, Pos: pos}
	case isWhitespace(r):
		for isWhitespace(t.peek()) {
			t.consume()
		}
		return Token{Type: TokenWhitespace, Pos: pos}
	case r == '/' && t.peekN(1) == '*':
		t.pos += 2
		for t.peek() != eof && !(t.peek() == '*' && t.peekN(1) == '/') {
			t.consume()
		}
		if t.peek() != eof {
			t.pos += 2
		}
		return t.NextToken()
	case r == '"' || r == '\'':
		t.consume()
		return t.consumeString(r, pos)
	case r == '#':
		t.consume()
		if isNameCodePoint(t.peek()) || t.validEscapeAt(0) {
			hashType := HashUnrestricted
			if t.startsIdentifierAt(0) {
				hashType = HashID
			}
			return Token{Type: TokenHash, HashType: hashType, Value: t.consumeName(), Pos: pos}
		}
		return Token{Type: TokenDelim, Delim: '#', Pos: pos}
	case t.startsNumber():
		return t.consumeNumericToken(pos)
	case t.startsIdentifierAt(0):
		name := t.consumeName()
		if t.peek() == '(' {
			t.consume()
			return Token{Type: TokenFunction, Value: name, Pos: pos}
		}
		return Token{Type: TokenIdent, Value: name, Pos: pos}
	case r == '@' && t.startsIdentifierAt(1):
		t.consume()
		return Token{Type: TokenAtKeyword, Value: t.consumeName(), Pos: pos}
	}

	t.consume()
	switch r {
	case ':':
		return Token{Type: TokenColon, Pos: pos}
	case ';':
		return Token{Type: TokenSemicolon, Pos: pos}
	case ',':
		return Token{Type: TokenComma, Pos: pos}
	case '[':
		return Token{Type: TokenOpenSquare, Pos: pos}
	case ']':
		return Token{Type: TokenCloseSquare, Pos: pos}
	case '(':
		return Token{Type: TokenOpenParen, Pos: pos}
	case ')':
		return Token{Type: TokenCloseParen, Pos: pos}
	case '{':
		return Token{Type: TokenOpenCurly, Pos: pos}
	case '}':
		return Token{Type: TokenCloseCurly, Pos: pos}
	}
	return Token{Type: TokenDelim, Delim: r, Pos: pos}
}

// TokenizeAll returns every token up to, but not including, EOF.
func (t *Tokenizer) TokenizeAll() []Token {
	var tokens []Token
	for {
		tok := t.NextToken()
		if tok.Type == TokenEOF {
			return tokens
		}
		tokens = append(tokens, tok)
	}
}
