package compose

import (
	"errors"
	"strings"
	"testing"

	"github.com/cinemareddy/postbot/internal/domain"
)

var inception = domain.MovieDetails{
	Title:     "Inception",
	PosterURL: "https://image.tmdb.org/t/p/original/abc.jpg",
	Genres:    []string{"Action", "Sci-Fi"},
}

var req = domain.ParsedRequest{
	Title:         "inception",
	PrintCode:     "h",
	LanguageCodes: []string{"e"},
	Link:          "https://example.com/dl",
}

func TestComposeCaptionLayout(t *testing.T) {
	post, err := Compose(inception, req, "HD", []string{"English"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}

	ordered := []string{
		"Inception",
		"Print: HD",
		"Quality: 360p,480p,720p,1080p",
		"Language: English",
		"Action, Sci-Fi",
		"#CinemaReddy",
	}
	pos := -1
	for _, want := range ordered {
		idx := strings.Index(post.Caption, want)
		if idx == -1 {
			t.Fatalf("caption missing %q:\n%s", want, post.Caption)
		}
		if idx < pos {
			t.Fatalf("%q out of order in caption:\n%s", want, post.Caption)
		}
		pos = idx
	}

	if post.PosterURL != inception.PosterURL {
		t.Errorf("poster url = %q", post.PosterURL)
	}
	if post.LinkURL != req.Link {
		t.Errorf("link url = %q", post.LinkURL)
	}
	if strings.Contains(post.Caption, req.Link) {
		t.Error("download link leaked into caption; it belongs on the button only")
	}
}

func TestComposeMultipleLanguages(t *testing.T) {
	post, err := Compose(inception, req, "HD", []string{"Hindi", "Tamil"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(post.Caption, "Language: Hindi, Tamil") {
		t.Errorf("language line wrong:\n%s", post.Caption)
	}
}

func TestComposeNoGenres(t *testing.T) {
	details := inception
	details.Genres = nil
	post, err := Compose(details, req, "HD", []string{"English"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if strings.Contains(post.Caption, "Action") {
		t.Errorf("unexpected genres in caption:\n%s", post.Caption)
	}
}

func TestComposeNoPoster(t *testing.T) {
	details := inception
	details.PosterURL = ""
	if _, err := Compose(details, req, "HD", []string{"English"}); !errors.Is(err, domain.ErrNoPoster) {
		t.Errorf("err = %v, want ErrNoPoster", err)
	}
}

func TestComposeFallsBackToRequestTitle(t *testing.T) {
	details := inception
	details.Title = ""
	post, err := Compose(details, req, "HD", []string{"English"})
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if !strings.Contains(post.Caption, "inception") {
		t.Errorf("request title not used:\n%s", post.Caption)
	}
}
