package genome

import (
	"errors"
	"fmt"
)

// Decode and mutation failures. They are scoped to a single genome and
// never fatal to the caller's process.
var (
	ErrMalformed       = errors.New("malformed token")
	ErrUnknownBodyType = errors.New("unknown body type")
	ErrUnknownShape    = errors.New("unknown shape tag")
	ErrBadLiteral      = errors.New("unparsable literal")
	ErrInvertedBound   = errors.New("bound min greater than max")
	ErrTooFewVertices  = errors.New("polygon needs at least 3 vertices")
	ErrDanglingBound   = errors.New("bound annotation not followed by a number")
	ErrNoChunks        = errors.New("genome has no chunks")
	ErrInvalidRate     = errors.New("mutation rate must be a non-negative number")
)

// DecodeError reports where decoding stopped.
type DecodeError struct {
	Pos   int
	Token Token
	Err   error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode at offset %d near %s: %v", e.Pos, e.Token, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// MutationError reports where a mutation pass stopped.
type MutationError struct {
	Pos int
	Err error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("mutate at offset %d: %v", e.Pos, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}
