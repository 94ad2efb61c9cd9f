// Package transcode converts legacy translation file bytes into canonical
// Unicode text.
//
// Decoding happens in three ordered steps: decode the bytes with the
// resolved encoding, unescape HTML/XML character entities left over from
// older tooling, and normalise the result to NFC. The pipeline is a no-op on
// text that is already canonical UTF-8 with no remaining entities, so it is
// safe to apply more than once.
package transcode

import (
	"bytes"
	"fmt"
	"html"
	"unicode/utf8"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/minios-linux/transkit/charset"
)

// replacementUTF8 is the UTF-8 encoding of U+FFFD, used to tell decoder
// damage apart from a replacement rune that was present in the input.
var replacementUTF8 = []byte("�")

// DecodeError reports bytes that are not valid in the resolved encoding.
// It is recoverable per file: the caller skips the file and continues with
// the rest of the batch.
type DecodeError struct {
	Encoding string
	Err      error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decoding as %s: %v", e.Encoding, e.Err)
	}
	return fmt.Sprintf("bytes are not valid %s", e.Encoding)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decode converts raw file bytes into canonical Unicode text using the
// given encoding name.
func Decode(data []byte, encodingName string) (string, error) {
	enc, err := charset.Lookup(encodingName)
	if err != nil {
		return "", err
	}

	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return "", &DecodeError{Encoding: encodingName, Err: err}
	}

	// x/text decoders substitute U+FFFD for undecodable byte sequences
	// instead of failing. Surface that as a decode error unless the
	// replacement rune was already part of the input.
	if bytes.Contains(out, replacementUTF8) && !bytes.Contains(data, replacementUTF8) {
		return "", &DecodeError{Encoding: encodingName}
	}

	return Canonical(string(out)), nil
}

// Canonical unescapes numeric and named character entities and normalises
// the text to NFC. Idempotent on entity-free canonical text.
func Canonical(s string) string {
	return norm.NFC.String(html.UnescapeString(s))
}

// ValidUTF8 reports whether data is well-formed UTF-8. Used by callers that
// want to short-circuit transcoding for files already migrated.
func ValidUTF8(data []byte) bool {
	return utf8.Valid(data)
}
