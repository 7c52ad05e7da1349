package genome

import (
	"errors"
	"testing"
)

func TestScanBodyDefinition(t *testing.T) {
	tokens, err := Scan("B(2,3;D;45)")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	want := []struct {
		kind TokenKind
		text string
	}{
		{TokenTag, "B"},
		{TokenLParen, "("},
		{TokenNumber, "2"},
		{TokenComma, ","},
		{TokenNumber, "3"},
		{TokenSemicolon, ";"},
		{TokenTag, "D"},
		{TokenSemicolon, ";"},
		{TokenNumber, "45"},
		{TokenRParen, ")"},
		{TokenEOF, ""},
	}

	if len(tokens) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Kind != w.kind || tokens[i].Text != w.text {
			t.Errorf("token %d = %v (%s), want %q (%s)", i, tokens[i], tokens[i].Kind, w.text, w.kind)
		}
	}
}

func TestScanNumbers(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"0", "0"},
		{"-1.25", "-1.25"},
		{"+7", "+7"},
		{".5", ".5"},
		{"3.", "3."},
		{"-0.001", "-0.001"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			tok := NewScanner(Genome(tt.input)).Next()
			if tok.Kind != TokenNumber {
				t.Fatalf("kind = %s, want number", tok.Kind)
			}
			if tok.Text != tt.want {
				t.Errorf("text = %q, want %q", tok.Text, tt.want)
			}
		})
	}
}

func TestScanBoundAndDelimiter(t *testing.T) {
	tokens, err := Scan("{-1.5, .5}+2 |")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	kinds := []TokenKind{
		TokenLBrace, TokenNumber, TokenComma, TokenNumber, TokenRBrace,
		TokenNumber, TokenDelimiter, TokenEOF,
	}
	if len(tokens) != len(kinds) {
		t.Fatalf("got %d tokens, want %d", len(tokens), len(kinds))
	}
	for i, k := range kinds {
		if tokens[i].Kind != k {
			t.Errorf("token %d kind = %s, want %s", i, tokens[i].Kind, k)
		}
	}
	if tokens[3].Pos != 7 {
		t.Errorf("'.5' position = %d, want 7", tokens[3].Pos)
	}
}

func TestScanErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		pos   int
	}{
		{"unexpected character", "B(#", 2},
		{"lone sign", "(-,", 1},
		{"lone point", ".", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := Scan(Genome(tt.input))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
			last := tokens[len(tokens)-1]
			if last.Kind != TokenError {
				t.Errorf("last token kind = %s, want error", last.Kind)
			}
			if last.Pos != tt.pos {
				t.Errorf("error position = %d, want %d", last.Pos, tt.pos)
			}
		})
	}
}

func TestScannerKeepsReturningEOF(t *testing.T) {
	s := NewScanner("")
	for i := 0; i < 3; i++ {
		if tok := s.Next(); tok.Kind != TokenEOF {
			t.Fatalf("call %d returned %v, want EOF", i, tok)
		}
	}
}
