// Package shorthand maps the fixed print and language codes accepted in
// submissions to their display names. The tables are static configuration.
package shorthand

import "github.com/cinemareddy/postbot/internal/domain"

var printNames = map[string]string{
	"d": "DVD",
	"h": "HD",
	"f": "FHD",
}

var languageNames = map[string]string{
	"h":  "Hindi",
	"t":  "Telugu",
	"k":  "Kannada",
	"m":  "Malayalam",
	"e":  "English",
	"b":  "Bengali",
	"tm": "Tamil",
}

// ResolvePrint maps a print code to its display name.
func ResolvePrint(code string) (string, error) {
	name, ok := printNames[code]
	if !ok {
		return "", &domain.UnknownShorthandError{Kind: "print", Shorthand: code}
	}
	return name, nil
}

// ResolveLanguages maps each language code to its display name, preserving
// order and duplicates. The first unresolvable code fails the whole call.
func ResolveLanguages(codes []string) ([]string, error) {
	names := make([]string, 0, len(codes))
	for _, code := range codes {
		name, ok := languageNames[code]
		if !ok {
			return nil, &domain.UnknownShorthandError{Kind: "language", Shorthand: code}
		}
		names = append(names, name)
	}
	return names, nil
}
