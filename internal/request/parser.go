// Package request decodes raw posting submissions into typed requests.
package request

import (
	"fmt"
	"strings"

	"github.com/cinemareddy/postbot/internal/domain"
)

// Parse validates and decodes a raw four-line submission:
// title, print shorthand, comma-separated language shorthands, download link.
// Blank lines are discarded; anything other than exactly four remaining
// lines fails with domain.ErrBadFormat.
func Parse(text string) (domain.ParsedRequest, error) {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) != 4 {
		return domain.ParsedRequest{}, fmt.Errorf("%w: got %d lines", domain.ErrBadFormat, len(lines))
	}

	codes := strings.Split(strings.ToLower(lines[2]), ",")
	for i, c := range codes {
		codes[i] = strings.TrimSpace(c)
	}

	return domain.ParsedRequest{
		Title:         lines[0],
		PrintCode:     strings.ToLower(lines[1]),
		LanguageCodes: codes,
		Link:          lines[3],
	}, nil
}
