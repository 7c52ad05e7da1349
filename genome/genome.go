// Package genome implements the creature genetic code: a compact text grammar
// describing a rigid-body plan with per-value mutability bounds, the decoder
// that realises it against a physics world, and the mutation operators that
// produce child genomes.
package genome

import "strings"

// Delimiter separates independently mutable chunks of a genome.
const Delimiter = '|'

// Genome is the heritable text of a creature. Values are never edited in
// place; every mutation returns a new Genome.
type Genome string

// String returns the genome text.
func (g Genome) String() string {
	return string(g)
}

// Header returns the immutable prefix: everything before the first delimiter.
// A genome without delimiters is all header.
func (g Genome) Header() string {
	header, _ := split(string(g))
	return header
}

// Chunks returns the mutable fixture segments in order. Empty segments are
// not chunks.
func (g Genome) Chunks() []string {
	_, chunks := split(string(g))
	return chunks
}

// ChunkCount returns the number of mutable chunks.
func (g Genome) ChunkCount() int {
	_, chunks := split(string(g))
	return len(chunks)
}

// split divides genome text into header and non-empty chunks.
func split(s string) (string, []string) {
	idx := strings.IndexRune(s, Delimiter)
	if idx < 0 {
		return s, nil
	}
	header := s[:idx]
	parts := strings.Split(s[idx+1:], string(Delimiter))
	chunks := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		chunks = append(chunks, p)
	}
	return header, chunks
}

// join reassembles header and chunks: header|c1|c2|...|
func join(header string, chunks []string) Genome {
	var sb strings.Builder
	n := len(header) + 1
	for _, c := range chunks {
		n += len(c) + 1
	}
	sb.Grow(n)
	sb.WriteString(header)
	sb.WriteRune(Delimiter)
	for _, c := range chunks {
		sb.WriteString(c)
		sb.WriteRune(Delimiter)
	}
	return Genome(sb.String())
}

// AppendChunk returns a new genome with chunk added after the existing ones.
// The chunk must not contain the delimiter.
func AppendChunk(g Genome, chunk string) Genome {
	header, chunks := split(string(g))
	chunks = append(chunks, chunk)
	return join(header, chunks)
}
