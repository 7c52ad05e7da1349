package genome

import "fmt"

// Scanner tokenizes genome text left to right in a single pass.
type Scanner struct {
	input string
	pos   int
}

// NewScanner returns a scanner positioned at the start of g.
func NewScanner(g Genome) *Scanner {
	return &Scanner{input: string(g)}
}

// Next returns the next token. After EOF it keeps returning EOF.
func (s *Scanner) Next() Token {
	s.skipWhitespace()

	if s.pos >= len(s.input) {
		return Token{Kind: TokenEOF, Pos: s.pos}
	}

	start := s.pos
	ch := s.input[s.pos]

	switch ch {
	case '(':
		return s.single(TokenLParen)
	case ')':
		return s.single(TokenRParen)
	case '[':
		return s.single(TokenLBracket)
	case ']':
		return s.single(TokenRBracket)
	case '{':
		return s.single(TokenLBrace)
	case '}':
		return s.single(TokenRBrace)
	case ',':
		return s.single(TokenComma)
	case ';':
		return s.single(TokenSemicolon)
	case Delimiter:
		return s.single(TokenDelimiter)
	}

	if isNumberStart(ch) {
		return s.readNumber()
	}

	if isLetter(ch) {
		return s.single(TokenTag)
	}

	s.pos++
	return Token{Kind: TokenError, Text: fmt.Sprintf("unexpected character %q", ch), Pos: start}
}

func (s *Scanner) single(kind TokenKind) Token {
	t := Token{Kind: kind, Text: s.input[s.pos : s.pos+1], Pos: s.pos}
	s.pos++
	return t
}

func (s *Scanner) skipWhitespace() {
	for s.pos < len(s.input) && isSpace(s.input[s.pos]) {
		s.pos++
	}
}

// readNumber consumes [+-] (digits [. digits*] | . digits).
func (s *Scanner) readNumber() Token {
	start := s.pos
	end, ok := scanNumber(s.input, s.pos)
	if !ok {
		s.pos = end
		if s.pos == start {
			s.pos++
		}
		return Token{Kind: TokenError, Text: fmt.Sprintf("malformed number %q", s.input[start:s.pos]), Pos: start}
	}
	s.pos = end
	return Token{Kind: TokenNumber, Text: s.input[start:end], Pos: start}
}

// Scan tokenizes the whole genome. The returned slice ends with EOF unless a
// lexical error stops the scan, in which case the error token is last.
func Scan(g Genome) ([]Token, error) {
	s := NewScanner(g)
	var tokens []Token
	for {
		t := s.Next()
		tokens = append(tokens, t)
		switch t.Kind {
		case TokenEOF:
			return tokens, nil
		case TokenError:
			return tokens, &DecodeError{Pos: t.Pos, Token: t, Err: ErrMalformed}
		}
	}
}

// scanNumber reports the end offset of the number starting at start and
// whether it is well formed. It is shared with the value mutator so both
// agree on what a literal is.
func scanNumber(s string, start int) (int, bool) {
	i := start
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	intDigits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		intDigits++
	}
	fracDigits := 0
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			fracDigits++
		}
	}
	return i, intDigits+fracDigits > 0
}

func isNumberStart(ch byte) bool {
	return isDigit(ch) || ch == '+' || ch == '-' || ch == '.'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}
