package strfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	input := "# header comment\n\ngreeting=Hello\nfarewell=Goodbye\nempty=\n"
	f, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.Len() != 3 {
		t.Fatalf("Len = %d, want 3", f.Len())
	}
	if v, ok := f.Get("greeting"); !ok || v != "Hello" {
		t.Fatalf("greeting = %q, %v", v, ok)
	}
	if got := f.Keys(); len(got) != 3 || got[0] != "greeting" || got[2] != "empty" {
		t.Fatalf("Keys = %v", got)
	}
	if got := f.Missing(); len(got) != 1 || got[0] != "empty" {
		t.Fatalf("Missing = %v, want [empty]", got)
	}
}

func TestParseBOMAndCRLF(t *testing.T) {
	input := "\xef\xbb\xbfa=1\r\nb=2\r\n"
	f, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, ok := f.Get("a"); !ok || v != "1" {
		t.Fatalf("a = %q, %v — BOM not stripped", v, ok)
	}
	if v, _ := f.Get("b"); v != "2" {
		t.Fatalf("b = %q, want 2", v)
	}
}

func TestParseDuplicateLaterWins(t *testing.T) {
	f, err := Parse([]byte("k=first\nother=x\nk=second\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, _ := f.Get("k"); v != "second" {
		t.Fatalf("k = %q, want second", v)
	}
	// Original position kept: k stays first in document order.
	if keys := f.Keys(); keys[0] != "k" {
		t.Fatalf("Keys = %v, want k first", keys)
	}
	if f.Len() != 2 {
		t.Fatalf("Len = %d, want 2", f.Len())
	}
}

func TestParseMalformedLinesPreserved(t *testing.T) {
	input := "no separator here\n=orphan value\nok=yes\n"
	f, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if f.Len() != 1 {
		t.Fatalf("Len = %d, want 1", f.Len())
	}
	out := string(f.Marshal())
	if !strings.Contains(out, "no separator here") {
		t.Fatalf("malformed line dropped from output:\n%s", out)
	}
	if !strings.Contains(out, "=orphan value") {
		t.Fatalf("empty-key line dropped from output:\n%s", out)
	}
}

func TestParseValueWithEquals(t *testing.T) {
	f, err := Parse([]byte("url=https://example.com/?a=1&b=2\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v, _ := f.Get("url"); v != "https://example.com/?a=1&b=2" {
		t.Fatalf("url = %q — value split on later '='", v)
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	input := "# translations\n\na=1\nb=two words\n"
	f, err := Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := string(f.Marshal()); got != input {
		t.Fatalf("round trip changed content:\ngot  %q\nwant %q", got, input)
	}
}

func TestSetAndApply(t *testing.T) {
	f, _ := Parse([]byte("a=\nb=\n"))
	if !f.Set("a", "one") {
		t.Fatal("Set(a) = false, want true")
	}
	if f.Set("nope", "x") {
		t.Fatal("Set of unknown key should return false")
	}
	unknown := f.Apply(map[string]string{"b": "two", "ghost": "boo"})
	if len(unknown) != 1 || unknown[0] != "ghost" {
		t.Fatalf("Apply unknown = %v, want [ghost]", unknown)
	}
	if v, _ := f.Get("b"); v != "two" {
		t.Fatalf("b = %q, want two", v)
	}
}

func TestStats(t *testing.T) {
	f, _ := Parse([]byte("a=1\nb=\nc=3\nd=\n"))
	total, filled, pct := f.Stats()
	if total != 4 || filled != 2 || pct != 50 {
		t.Fatalf("Stats = %d/%d (%v%%), want 4/2 (50%%)", total, filled, pct)
	}
}

func TestFromTemplate(t *testing.T) {
	template, _ := Parse([]byte("# section\n\na=Source A\nb=Source B\n"))
	f := FromTemplate(template)

	if f.Len() != 2 {
		t.Fatalf("Len = %d, want 2", f.Len())
	}
	if got := f.Missing(); len(got) != 2 {
		t.Fatalf("Missing = %v, want both keys empty", got)
	}
	out := string(f.Marshal())
	if !strings.Contains(out, "# section") {
		t.Fatalf("comment rows not mirrored:\n%s", out)
	}
	// The template itself is untouched.
	if v, _ := template.Get("a"); v != "Source A" {
		t.Fatalf("template mutated: a = %q", v)
	}
}

func TestWriteFileCreatesParentDirs(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "sub", "ru"+Ext)

	f, _ := Parse([]byte("a=1\n"))
	if err := f.WriteFile(path); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "a=1\n" {
		t.Fatalf("written content = %q", data)
	}

	back, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if v, _ := back.Get("a"); v != "1" {
		t.Fatalf("reparsed a = %q", v)
	}
}
