package lexer

import (
	"strings"

	"its-hmny.dev/zontanos/pkg/token"
)

// ----------------------------------------------------------------------------
// Scanner

// This section defines the Scanner for the Zontanos language.
//
// The scanner is a single-pass, one-character-lookahead tokenizer over a
// random-access rune buffer. Multi-character tokens are recognized by consuming
// one character more than needed and stepping back ('advanceBack') whenever the
// lookahead turns out to belong to the next token. The current 0-based line is
// tracked by counting newlines and stamped on every produced token.
type Scanner struct {
	chars []rune // The whole source as a random-access rune buffer
	pos   int    // Cursor, index of the next character to be consumed
	prev  rune   // The last character consumed (the one current scans start from)
	line  int    // Current 0-based line, incremented on every newline

	dropped []token.Token // Invalid tokens filtered out by Lex, kept as diagnostics
}

// New initializes and returns to the caller a brand new 'Scanner' struct.
// Requires the full source 'src' upfront since the buffer is random-access.
func New(src string) *Scanner {
	return &Scanner{chars: []rune(src)}
}

// Consumes and returns the next character, reporting false at end of input.
func (s *Scanner) next() (rune, bool) {
	if s.pos >= len(s.chars) {
		return 0, false
	}
	s.prev = s.chars[s.pos]
	s.pos++
	return s.prev, true
}

// Peeks at the next character without consuming it.
func (s *Scanner) peek() (rune, bool) {
	if s.pos >= len(s.chars) {
		return 0, false
	}
	return s.chars[s.pos], true
}

// Walks the cursor back by 'n' characters so they can be consumed again.
func (s *Scanner) advanceBack(n int) {
	s.pos -= n
	if s.pos > 0 {
		s.prev = s.chars[s.pos-1]
	}
}

// ----------------------------------------------------------------------------
// Entrypoints

// Scan tokenizes the whole source and returns every token produced, the
// Invalid ones included. The token order matches the source order and line
// numbers are monotonically non-decreasing.
func (s *Scanner) Scan() []token.Token {
	tokens := []token.Token{}

	for {
		char, ok := s.next()
		if !ok {
			return tokens
		}

		switch {
		case char == '\n':
			s.line++
		case char == ' ' || char == '\t' || char == '\r':
			continue
		case char == '"':
			tokens = append(tokens, s.scanString())
		case char == '\'':
			tokens = append(tokens, s.scanChar())
		case char == '=':
			tokens = append(tokens, s.scanPair('=', token.Eq, token.EqEq))
		case char == '<':
			tokens = append(tokens, s.scanPair('=', token.Less, token.LessEq))
		case char == '>':
			tokens = append(tokens, s.scanPair('=', token.More, token.MoreEq))
		case char == '!':
			tokens = append(tokens, s.scanPair('=', token.Bang, token.Nq))
		case char == '&':
			tokens = append(tokens, s.scanPair('&', token.And, token.AndAnd))
		case char == '|':
			tokens = append(tokens, s.scanPair('|', token.Or, token.OrOr))
		case char == '+':
			tokens = append(tokens, s.scanPair('=', token.Plus, token.PlusIs))
		case char == '*':
			tokens = append(tokens, s.scanPair('=', token.Times, token.TimesIs))
		case char == '-':
			tokens = append(tokens, s.scanMin(tokens))
		case char == '/':
			tokens = append(tokens, s.scanSlash())
		case char >= '0' && char <= '9':
			tokens = append(tokens, s.scanNumber(false))
		case isLetter(char):
			tokens = append(tokens, s.scanIdentifier())
		default:
			tokens = append(tokens, token.FromChar(s.line, char))
		}
	}
}

// Lex tokenizes the whole source like Scan but drops every Invalid token from
// the returned stream. The parser will then fail on the resulting absence with
// a positional message. The dropped tokens are recorded and can be retrieved
// through Diagnostics so the front-end can still warn about them.
func (s *Scanner) Lex() []token.Token {
	filtered := []token.Token{}
	for _, tok := range s.Scan() {
		if tok.Kind == token.Invalid {
			s.dropped = append(s.dropped, tok)
			continue
		}
		filtered = append(filtered, tok)
	}
	return filtered
}

// Diagnostics returns the Invalid tokens dropped by the last call to Lex.
func (s *Scanner) Diagnostics() []token.Token {
	return s.dropped
}

// ----------------------------------------------------------------------------
// Specialized scan functions (one per token family)

// Specialized scan function for string literals, expects '"' to be the
// previous character. Reads up to the closing '"', an unterminated string
// yields an Invalid token with reason StringNoEnd.
func (s *Scanner) scanString() token.Token {
	var sb strings.Builder
	for {
		char, ok := s.next()
		if !ok {
			return token.NewInvalid(s.line, token.StringNoEnd, sb.String())
		}
		if char == '"' {
			return token.New(s.line, token.String, sb.String())
		}
		if char == '\n' {
			s.line++
		}
		sb.WriteRune(char)
	}
}

// Specialized scan function for char literals, expects a single quote to be the previous
// character. Accepts a single letter or one of the escapes \n \t \\ \0 and
// requires the closing quote right after it.
func (s *Scanner) scanChar() token.Token {
	char, ok := s.next()
	if !ok {
		return token.NewInvalid(s.line, token.CharNoEnd, "")
	}

	if char == '\\' {
		escape, ok := s.next()
		if !ok {
			return token.NewInvalid(s.line, token.CharNoEnd, "\\")
		}
		switch escape {
		case 'n':
			char = '\n'
		case 't':
			char = '\t'
		case '\\':
			char = '\\'
		case '0':
			char = 0
		default:
			return token.NewInvalid(s.line, token.InvalidChar, string(escape))
		}
	} else if !isLetter(char) {
		return token.NewInvalid(s.line, token.InvalidChar, string(char))
	}

	if closing, ok := s.next(); !ok || closing != '\'' {
		return token.NewInvalid(s.line, token.CharNoEnd, string(char))
	}
	return token.New(s.line, token.Char, string(char))
}

// Specialized scan function for the two-character operator families: consumes
// one more character and tests it against 'second', stepping back when the
// lookahead is not part of the operator.
func (s *Scanner) scanPair(second rune, single, double token.Kind) token.Token {
	char, ok := s.next()
	if !ok {
		return token.New(s.line, single, string(single))
	}
	if char == second {
		return token.New(s.line, double, string(double))
	}
	s.advanceBack(1)
	return token.New(s.line, single, string(single))
}

// Specialized scan function for '-': it can start a MinusIs operator, a
// NegativeNumber (when directly followed by a digit and the previous token is
// not a value that '-' could subtract from) or be a plain Min operator.
func (s *Scanner) scanMin(produced []token.Token) token.Token {
	char, ok := s.peek()
	if !ok {
		return token.New(s.line, token.Min, "-")
	}

	if char == '=' {
		s.next()
		return token.New(s.line, token.MinusIs, "-=")
	}

	if char >= '0' && char <= '9' && !s.binaryMinContext(produced) {
		s.next()
		return s.scanNumber(true)
	}

	return token.New(s.line, token.Min, "-")
}

// Reports whether the last produced token can act as the left operand of a
// binary minus, in which case '-' is subtraction and not a negative literal.
func (s *Scanner) binaryMinContext(produced []token.Token) bool {
	if len(produced) == 0 {
		return false
	}
	switch produced[len(produced)-1].Kind {
	case token.Number, token.NegativeNumber, token.FloatNumber,
		token.Identifier, token.CloseBrace, token.CloseBracket:
		return true
	}
	return false
}

// Specialized scan function for numeric literals, expects a digit to be the
// previous character. Underscores are readability separators and are skipped,
// a dot anywhere in-between the digits upgrades a Number to a FloatNumber (a
// NegativeNumber keeps its kind, the dot is still kept in the lexeme).
func (s *Scanner) scanNumber(negative bool) token.Token {
	kind := token.Number
	var sb strings.Builder
	if negative {
		kind = token.NegativeNumber
		sb.WriteRune('-')
	}
	sb.WriteRune(s.prev)

	for {
		char, ok := s.next()
		if !ok {
			return token.New(s.line, kind, sb.String())
		}
		switch {
		case char >= '0' && char <= '9':
			sb.WriteRune(char)
		case char == '.':
			if kind != token.NegativeNumber {
				kind = token.FloatNumber
			}
			sb.WriteRune(char)
		case char == '_':
			continue
		default:
			s.advanceBack(1)
			return token.New(s.line, kind, sb.String())
		}
	}
}

// Specialized scan function for identifiers and keywords, expects a letter to
// be the previous character. The scanned lexeme is matched against the boolean
// literals first, then against the keyword table, then falls back to Identifier.
func (s *Scanner) scanIdentifier() token.Token {
	var sb strings.Builder
	sb.WriteRune(s.prev)

	for {
		char, ok := s.next()
		if !ok {
			break
		}
		if isLetter(char) || char == '_' || (char >= '0' && char <= '9') {
			sb.WriteRune(char)
			continue
		}
		s.advanceBack(1)
		break
	}

	lexeme := sb.String()
	switch lexeme {
	case "true":
		return token.New(s.line, token.BoolTrue, lexeme)
	case "false":
		return token.New(s.line, token.BoolFalse, lexeme)
	}
	if kw, ok := token.Keyword(lexeme); ok {
		return token.New(s.line, kw, lexeme)
	}
	return token.New(s.line, token.Identifier, lexeme)
}

// Specialized scan function for '/': either the start of a '//' line comment
// (consumed up to, but not including, the next newline) or a Slash operator.
func (s *Scanner) scanSlash() token.Token {
	char, ok := s.peek()
	if !ok || char != '/' {
		return token.New(s.line, token.Slash, "/")
	}
	s.next()

	var sb strings.Builder
	for {
		char, ok := s.peek()
		if !ok || char == '\n' {
			return token.New(s.line, token.Comment, sb.String())
		}
		s.next()
		sb.WriteRune(char)
	}
}

func isLetter(char rune) bool {
	return (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z')
}
