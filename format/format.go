package format

import (
	"encoding"
	"fmt"
	"io"

	"github.com/dhamidi/kaleido/kal/parser"
)

type Encoder interface {
	encoding.TextMarshaler
	Encode(items []parser.TopLevelItem) error
}

// New returns the encoder registered under name, writing to w.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "json":
		return NewASTJSONEncoder(w), nil
	case "kal":
		return NewKalEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or kal)", name)
	}
}
