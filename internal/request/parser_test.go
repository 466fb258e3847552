package request

import (
	"errors"
	"reflect"
	"testing"

	"github.com/cinemareddy/postbot/internal/domain"
)

func TestParseValid(t *testing.T) {
	req, err := Parse("Inception\nH\nh, TM\nhttps://example.com/dl")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Title != "Inception" {
		t.Errorf("title = %q", req.Title)
	}
	if req.PrintCode != "h" {
		t.Errorf("print code = %q", req.PrintCode)
	}
	if !reflect.DeepEqual(req.LanguageCodes, []string{"h", "tm"}) {
		t.Errorf("language codes = %v", req.LanguageCodes)
	}
	if req.Link != "https://example.com/dl" {
		t.Errorf("link = %q", req.Link)
	}
}

func TestParseTrimsWhitespace(t *testing.T) {
	req, err := Parse("  Dune  \n d \n e \n  link ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Title != "Dune" || req.PrintCode != "d" || req.Link != "link" {
		t.Errorf("fields not trimmed: %+v", req)
	}
}

func TestParseIgnoresBlankLines(t *testing.T) {
	req, err := Parse("\nDune\n\nd\ne\nlink\n")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if req.Title != "Dune" {
		t.Errorf("title = %q", req.Title)
	}
}

func TestParseWrongLineCount(t *testing.T) {
	for _, text := range []string{
		"",
		"only title",
		"a\nb\nc",
		"a\nb\nc\nd\ne",
	} {
		if _, err := Parse(text); !errors.Is(err, domain.ErrBadFormat) {
			t.Errorf("Parse(%q) err = %v, want ErrBadFormat", text, err)
		}
	}
}
