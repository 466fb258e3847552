// Package compose builds the final outbound post from resolved movie
// details and the original parsed request.
package compose

import (
	"fmt"
	"strings"

	"github.com/cinemareddy/postbot/internal/domain"
)

// The quality line is fixed by the channel's posting format and is never
// derived from input.
const qualityLine = "🎞️ Quality: 360p,480p,720p,1080p"

const promoLine = "❌ No Ads | ✅ Clean Download | 📥 Direct Link Below"

const footerLine = "✨ #CinemaReddy"

// Compose builds the caption and link button for a resolved movie. The post
// format requires a poster attachment, so a movie without one fails with
// domain.ErrNoPoster and nothing is sent.
func Compose(details domain.MovieDetails, req domain.ParsedRequest, printName string, languages []string) (domain.Post, error) {
	if details.PosterURL == "" {
		return domain.Post{}, fmt.Errorf("%w: %s", domain.ErrNoPoster, details.Title)
	}

	title := details.Title
	if title == "" {
		title = req.Title
	}

	blocks := []string{
		fmt.Sprintf("🎬 **%s**", title),
		fmt.Sprintf("🖨️ Print: %s\n%s\n🗣️ Language: %s",
			printName, qualityLine, strings.Join(languages, ", ")),
		strings.Join(details.Genres, ", "),
		promoLine,
		footerLine,
	}

	return domain.Post{
		Caption:   strings.Join(blocks, "\n\n"),
		PosterURL: details.PosterURL,
		LinkURL:   req.Link,
	}, nil
}
