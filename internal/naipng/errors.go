package naipng

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPNG matches every *StructuralError via errors.Is.
	ErrInvalidPNG = errors.New("not a valid PNG file")
	// ErrNAIData matches every *DataError via errors.Is.
	ErrNAIData = errors.New("invalid naidata chunk")
)

type ErrorKind int

const (
	KindMissingSignature ErrorKind = iota + 1
	KindTruncated
	KindUnexpectedEOF
	KindChecksumMismatch
	KindMisplacedHeader
)

func (k ErrorKind) String() string {
	switch k {
	case KindMissingSignature:
		return "missing signature"
	case KindTruncated:
		return "truncated chunk"
	case KindUnexpectedEOF:
		return "ends prematurely"
	case KindChecksumMismatch:
		return "invalid chunk CRC"
	case KindMisplacedHeader:
		return "IHDR chunk missing or misplaced"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// StructuralError reports a datastream that does not follow PNG framing.
// Offset is the byte position of the chunk (or signature) being read.
type StructuralError struct {
	Kind   ErrorKind
	Offset int64
	Err    error
}

func (e *StructuralError) Error() string {
	msg := fmt.Sprintf("%s: %s at offset %d", ErrInvalidPNG, e.Kind, e.Offset)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *StructuralError) Unwrap() error { return e.Err }

func (e *StructuralError) Is(target error) bool { return target == ErrInvalidPNG }

// DecodeStage names the layer of a naidata payload that failed.
type DecodeStage string

const (
	StageBase64 DecodeStage = "base64"
	StageJSON   DecodeStage = "json"
)

// DataError reports a naidata chunk whose payload is not base64-encoded
// JSON object text.
type DataError struct {
	Domain Domain
	Stage  DecodeStage
	Err    error
}

func (e *DataError) Error() string {
	switch e.Stage {
	case StageBase64:
		return fmt.Sprintf("%s, not base64 encoded: %v", ErrNAIData, e.Err)
	default:
		return fmt.Sprintf("%s, could not parse as JSON: %v", ErrNAIData, e.Err)
	}
}

func (e *DataError) Unwrap() error { return e.Err }

func (e *DataError) Is(target error) bool { return target == ErrNAIData }

// KindOf returns the structural error kind carried by err, or 0.
func KindOf(err error) ErrorKind {
	var se *StructuralError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func structural(kind ErrorKind, offset int64, err error) error {
	return &StructuralError{Kind: kind, Offset: offset, Err: err}
}
