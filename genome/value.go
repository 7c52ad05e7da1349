package genome

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
)

// ValueMutate perturbs every bounded literal in g by Uniform(-rate, rate)
// and clamps the result into its bound. Annotations are copied unchanged so
// the bound is inherited; unannotated numbers and all punctuation pass
// through untouched.
func ValueMutate(g Genome, rate float64, rng *rand.Rand) (Genome, error) {
	out, _, err := valueMutate(g, rate, rng)
	return out, err
}

// valueMutate also reports how many literals changed value.
func valueMutate(g Genome, rate float64, rng *rand.Rand) (Genome, int, error) {
	if err := checkRate(rate); err != nil {
		return g, 0, err
	}

	s := string(g)
	var sb strings.Builder
	sb.Grow(len(s) + len(s)/8)

	var (
		bound     Literal
		boundOpen int
		perturbed int
	)

	for i := 0; i < len(s); {
		ch := s[i]

		if ch == '{' {
			if bound.Bounded {
				return g, perturbed, &MutationError{Pos: boundOpen, Err: ErrDanglingBound}
			}
			end, lit, err := scanBound(s, i)
			if err != nil {
				return g, perturbed, err
			}
			sb.WriteString(s[i:end])
			bound, boundOpen = lit, i
			i = end
			continue
		}

		if bound.Bounded && isNumberStart(ch) {
			end, ok := scanNumber(s, i)
			if !ok {
				return g, perturbed, &MutationError{Pos: i, Err: ErrBadLiteral}
			}
			text := s[i:end]
			v, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return g, perturbed, &MutationError{Pos: i, Err: fmt.Errorf("%w: %v", ErrBadLiteral, err)}
			}

			next := v
			if rate > 0 {
				next += rng.Float64()*2*rate - rate
			}
			next = clamp(next, bound.Min, bound.Max)

			written := text
			if next != v {
				written = formatBounded(next, bound.Min, bound.Max)
			}
			sb.WriteString(written)
			// rounding can give back the original text
			if written != text {
				perturbed++
			}
			bound = Literal{}
			i = end
			continue
		}

		// a bound annotates the literal right after it, nothing else
		if bound.Bounded && !isSpace(ch) {
			return g, perturbed, &MutationError{Pos: boundOpen, Err: ErrDanglingBound}
		}

		sb.WriteByte(ch)
		i++
	}

	if bound.Bounded {
		return g, perturbed, &MutationError{Pos: boundOpen, Err: ErrDanglingBound}
	}
	return Genome(sb.String()), perturbed, nil
}

// scanBound reads {min,max} starting at the opening brace and returns the
// offset just past the closing brace. Whitespace inside is tolerated.
func scanBound(s string, open int) (int, Literal, error) {
	var lit Literal
	i := skipSpace(s, open+1)

	lo, i, err := boundNumber(s, i)
	if err != nil {
		return 0, lit, err
	}
	i = skipSpace(s, i)
	if i >= len(s) || s[i] != ',' {
		return 0, lit, &MutationError{Pos: i, Err: fmt.Errorf("%w: expected ',' in bound", ErrMalformed)}
	}
	i = skipSpace(s, i+1)

	hi, i, err := boundNumber(s, i)
	if err != nil {
		return 0, lit, err
	}
	i = skipSpace(s, i)
	if i >= len(s) || s[i] != '}' {
		return 0, lit, &MutationError{Pos: i, Err: fmt.Errorf("%w: expected '}' in bound", ErrMalformed)}
	}
	if lo > hi {
		return 0, lit, &MutationError{Pos: open, Err: ErrInvertedBound}
	}
	return i + 1, Literal{Bounded: true, Min: lo, Max: hi}, nil
}

func boundNumber(s string, i int) (float64, int, error) {
	end, ok := scanNumber(s, i)
	if !ok {
		return 0, i, &MutationError{Pos: i, Err: fmt.Errorf("%w: expected number in bound", ErrMalformed)}
	}
	v, err := strconv.ParseFloat(s[i:end], 64)
	if err != nil {
		return 0, i, &MutationError{Pos: i, Err: fmt.Errorf("%w: %v", ErrBadLiteral, err)}
	}
	return v, end, nil
}

func skipSpace(s string, i int) int {
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	return i
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func checkRate(rate float64) error {
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return fmt.Errorf("%w: %v", ErrInvalidRate, rate)
	}
	return nil
}

// formatBounded formats v like FormatNumber unless rounding would carry it
// outside [lo, hi], in which case the exact shortest form is kept.
func formatBounded(v, lo, hi float64) string {
	text := FormatNumber(v)
	r, err := strconv.ParseFloat(text, 64)
	if err != nil || r < lo || r > hi {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return text
}

// numberPrecision is the number of decimal places kept when a mutated value
// is written back into a genome.
const numberPrecision = 6

// FormatNumber writes v the way mutated literals appear in a genome: at most
// six decimals, no exponent, no trailing zeros, and never "-0".
func FormatNumber(v float64) string {
	scale := math.Pow(10, numberPrecision)
	if math.IsInf(v*scale, 0) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	r := math.Round(v*scale) / scale
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
