package outbound

import (
	"context"
	"errors"
)

// GenerateOptions tunes a single completion. Zero values mean "use the
// gateway's configured default".
type GenerateOptions struct {
	Model       string
	Temperature *float64
	MaxTokens   int
}

// TextGenerator sends one prompt to a generative model and returns its raw
// text. Every failure (transport, non-2xx status, malformed envelope) is
// returned as an error; implementations never panic and never retry.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
}

// ErrMalformedEnvelope is matched (via errors.Is) by gateway errors meaning the
// model answered but the response envelope carried no usable completion.
var ErrMalformedEnvelope = errors.New("malformed completion envelope")
