package recommendation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Shape is the kind of JSON payload expected inside a model response.
type Shape int

const (
	ShapeObject Shape = iota
	ShapeArray
)

func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

func (s Shape) delimiters() (opening, closing string) {
	if s == ShapeArray {
		return "[", "]"
	}
	return "{", "}"
}

var (
	// ErrNoPayload means the delimiters were missing or inverted.
	ErrNoPayload = errors.New("no structured payload found in response")
	// ErrMalformedPayload means the delimited text did not decode.
	ErrMalformedPayload = errors.New("structured payload could not be decoded")
)

// ExtractPayload returns the text between the first opening delimiter of
// shape and the last closing one.
//
// This is a best-effort scan, not a parser. Known limitations:
//   - a closing delimiter inside a string after the payload (for example
//     trailing prose such as "see [1]") widens the slice and breaks decoding;
//   - prose before the payload containing the opening delimiter does the same;
//   - two separate payloads in one response are sliced together and fail.
//
// All of these surface as errors and the caller falls back.
func ExtractPayload(text string, shape Shape) (string, error) {
	opening, closing := shape.delimiters()
	start := strings.Index(text, opening)
	end := strings.LastIndex(text, closing)
	if start < 0 || end < 0 || end < start {
		return "", fmt.Errorf("%w: expected %s", ErrNoPayload, shape)
	}
	return text[start : end+1], nil
}

// DecodePayload extracts the payload of the given shape and unmarshals it into v.
func DecodePayload(text string, shape Shape, v interface{}) error {
	payload, err := ExtractPayload(text, shape)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	return nil
}
