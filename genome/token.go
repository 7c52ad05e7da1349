package genome

import "fmt"

// TokenKind identifies a lexical token of the genome grammar.
type TokenKind uint8

const (
	TokenError TokenKind = iota
	TokenEOF

	TokenNumber // -1.25
	TokenTag    // single letter: B F P C D S K (others reach the parser as unknown tags)

	TokenLParen    // (
	TokenRParen    // )
	TokenLBracket  // [
	TokenRBracket  // ]
	TokenLBrace    // {
	TokenRBrace    // }
	TokenComma     // ,
	TokenSemicolon // ;
	TokenDelimiter // |
)

var tokenNames = [...]string{
	TokenError:     "error",
	TokenEOF:       "EOF",
	TokenNumber:    "number",
	TokenTag:       "tag",
	TokenLParen:    "'('",
	TokenRParen:    "')'",
	TokenLBracket:  "'['",
	TokenRBracket:  "']'",
	TokenLBrace:    "'{'",
	TokenRBrace:    "'}'",
	TokenComma:     "','",
	TokenSemicolon: "';'",
	TokenDelimiter: "'|'",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// Token is one lexical unit. Pos is the byte offset of its first character.
type Token struct {
	Kind TokenKind
	Text string
	Pos  int
}

func (t Token) String() string {
	switch t.Kind {
	case TokenEOF:
		return "EOF"
	case TokenError:
		return fmt.Sprintf("error(%s)", t.Text)
	}
	return fmt.Sprintf("%q", t.Text)
}
