package transcode

import (
	"errors"
	"testing"
)

func TestDecodeUTF8Passthrough(t *testing.T) {
	got, err := Decode([]byte("hello"), "utf-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeUnescapesEntities(t *testing.T) {
	got, err := Decode([]byte("caf&eacute; &amp; bar &#169;"), "utf-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "café & bar ©" {
		t.Fatalf("got %q, want entities unescaped", got)
	}
}

func TestDecodeWindows1251(t *testing.T) {
	// "Да" in windows-1251.
	got, err := Decode([]byte{0xC4, 0xE0}, "windows-1251")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "Да" {
		t.Fatalf("got %q, want Да", got)
	}
}

func TestDecodeNormalizesToNFC(t *testing.T) {
	// e + combining acute accent must collapse to the precomposed form.
	got, err := Decode([]byte("é"), "utf-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "é" {
		t.Fatalf("got %q, want precomposed é", got)
	}
}

func TestDecodeInvalidBytes(t *testing.T) {
	_, err := Decode([]byte{0xff, 0xfe, 0x41}, "utf-8")
	if err == nil {
		t.Fatal("expected error for bytes invalid in utf-8")
	}
	var de *DecodeError
	if !errors.As(err, &de) || de.Encoding != "utf-8" {
		t.Fatalf("err = %v, want DecodeError for utf-8", err)
	}
}

func TestDecodeKeepsInputReplacementRune(t *testing.T) {
	// A replacement rune already present in the file is data, not damage.
	got, err := Decode([]byte("broken � marker"), "utf-8")
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != "broken � marker" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeUnknownEncoding(t *testing.T) {
	if _, err := Decode([]byte("x"), "martian-7"); err == nil {
		t.Fatal("expected error for unknown encoding")
	}
}

func TestCanonicalIdempotent(t *testing.T) {
	inputs := []string{
		"plain text",
		"caf&eacute;",
		"é composed",
		"$1 &lt;b&gt;",
	}
	for _, in := range inputs {
		once := Canonical(in)
		twice := Canonical(once)
		if once != twice {
			t.Errorf("Canonical not idempotent on %q: %q != %q", in, once, twice)
		}
	}
}

func TestValidUTF8(t *testing.T) {
	if !ValidUTF8([]byte("прівет")) {
		t.Fatal("valid UTF-8 reported invalid")
	}
	if ValidUTF8([]byte{0xC4, 0xE0}) {
		t.Fatal("windows-1251 bytes reported as valid UTF-8")
	}
}
