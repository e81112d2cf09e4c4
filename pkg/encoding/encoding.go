// Package encoding converts layer names between UTF-8 strings and the byte
// encoding stored in mesh files.
package encoding

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// ErrUnknownEncoding is returned by Lookup for unsupported names.
var ErrUnknownEncoding = errors.New("unknown text encoding")

// Encoding names accepted by Lookup.
const (
	Raw         = "raw"
	Latin1      = "latin1"
	Windows1252 = "windows-1252"
	EUCKR       = "euc-kr"
	ShiftJIS    = "shift-jis"
)

// Codec converts between file bytes and Go strings.
// The zero value is the raw codec, which copies bytes unchanged.
type Codec struct {
	name string
	enc  encoding.Encoding
}

// Lookup returns the codec for name. An empty name selects Raw.
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(name) {
	case "", Raw:
		return Codec{name: Raw}, nil
	case Latin1, "iso-8859-1":
		return Codec{name: Latin1, enc: charmap.ISO8859_1}, nil
	case Windows1252, "cp1252":
		return Codec{name: Windows1252, enc: charmap.Windows1252}, nil
	case EUCKR, "cp949":
		return Codec{name: EUCKR, enc: korean.EUCKR}, nil
	case ShiftJIS, "sjis":
		return Codec{name: ShiftJIS, enc: japanese.ShiftJIS}, nil
	default:
		return Codec{}, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}

// Name returns the canonical codec name.
func (c Codec) Name() string {
	if c.name == "" {
		return Raw
	}
	return c.name
}

// Decode converts file bytes to a string.
// Returns the bytes unchanged if conversion fails.
func (c Codec) Decode(data []byte) string {
	if c.enc == nil {
		return string(data)
	}
	result, _, err := transform.Bytes(c.enc.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// Encode converts a string to file bytes.
func (c Codec) Encode(s string) ([]byte, error) {
	if c.enc == nil {
		return []byte(s), nil
	}
	result, _, err := transform.Bytes(c.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %q as %s: %w", s, c.Name(), err)
	}
	return result, nil
}
