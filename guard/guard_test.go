package guard

import (
	"reflect"
	"strings"
	"testing"
)

func TestProtectTextWrapsPlaceholders(t *testing.T) {
	got := Protect("Install $1 now", FormatText)
	want := "Install " + markerOpen + "$1" + markerClose + " now"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestProtectTextWrapsEveryPlaceholderOnce(t *testing.T) {
	got := Protect("Copied $1 of $2 files to $3", FormatText)
	if n := strings.Count(got, markerOpen); n != 3 {
		t.Fatalf("marker count = %d, want 3:\n%s", n, got)
	}
	for _, token := range []string{"$1", "$2", "$3"} {
		if !strings.Contains(got, markerOpen+token+markerClose) {
			t.Fatalf("%s not wrapped:\n%s", token, got)
		}
	}
}

func TestProtectTextSkipsQuotedPlaceholders(t *testing.T) {
	cases := []string{
		`Use "$1" here`,
		`Use '$1' here`,
		"Use `$1` here",
		"Use «$1» here",
		"Use “$1” here",
	}
	for _, in := range cases {
		if got := Protect(in, FormatText); got != in {
			t.Errorf("Protect(%q) = %q, want unchanged", in, got)
		}
	}
}

func TestProtectTextMixedQuoting(t *testing.T) {
	got := Protect(`Keep '$1' but wrap $2`, FormatText)
	if !strings.Contains(got, `'$1'`) || strings.Contains(got, markerOpen+"$1") {
		t.Fatalf("quoted $1 should stay bare:\n%s", got)
	}
	if !strings.Contains(got, markerOpen+"$2"+markerClose) {
		t.Fatalf("$2 should be wrapped:\n%s", got)
	}
}

func TestProtectTextHalfQuotedIsWrapped(t *testing.T) {
	// A quote on one side only does not protect the token.
	got := Protect(`prefix "$1 suffix`, FormatText)
	if !strings.Contains(got, markerOpen+"$1"+markerClose) {
		t.Fatalf("half-quoted $1 should be wrapped:\n%s", got)
	}
}

func TestProtectMarkupWrapsPathTokens(t *testing.T) {
	got := Protect("Edit /etc/fstab, then reboot", FormatMarkup)
	want := "Edit " + markerOpen + "/etc/fstab" + markerClose + ", then reboot"
	if got != want {
		t.Fatalf("got  %q\nwant %q", got, want)
	}
}

func TestProtectMarkupPathAtStart(t *testing.T) {
	got := Protect("/usr/bin/env locates interpreters", FormatMarkup)
	if !strings.HasPrefix(got, markerOpen+"/usr/bin/env"+markerClose) {
		t.Fatalf("leading path not wrapped:\n%s", got)
	}
}

func TestProtectMarkupPathStopsAtDelimiters(t *testing.T) {
	// The token runs up to the next comma, period, or space.
	got := Protect("See /a/b.c now", FormatMarkup)
	if !strings.Contains(got, markerOpen+"/a/b"+markerClose+".c") {
		t.Fatalf("path should stop before the period:\n%s", got)
	}
}

func TestProtectMarkupLeavesPlaceholders(t *testing.T) {
	in := "Downloaded $1 bytes"
	if got := Protect(in, FormatMarkup); got != in {
		t.Fatalf("markup format should not wrap placeholders: %q", got)
	}
}

func TestPlaceholders(t *testing.T) {
	got := Placeholders("from $2 to $1, twice $1")
	want := []string{"$2", "$1", "$1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Placeholders = %v, want %v", got, want)
	}
	if got := Placeholders("none"); got != nil {
		t.Fatalf("Placeholders = %v, want nil", got)
	}
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in   string
		want Format
		ok   bool
	}{
		{"", FormatText, true},
		{"text", FormatText, true},
		{"markup", FormatMarkup, true},
		{"HTML", FormatMarkup, true},
		{"binary", FormatText, false},
	}
	for _, c := range cases {
		got, ok := ParseFormat(c.in)
		if got != c.want || ok != c.ok {
			t.Errorf("ParseFormat(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}
