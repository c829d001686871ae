// Package youtube resolves user-supplied video references to canonical
// YouTube video IDs.
package youtube

import (
	"errors"
	"net/url"
	"regexp"
	"strings"
)

// IDLength is the length of every YouTube video ID
const IDLength = 11

// ErrInvalidReference is returned when no video ID can be derived from the input
var ErrInvalidReference = errors.New("invalid YouTube reference: provide a watch URL, a youtu.be link or a video ID")

var (
	bareIDRE     = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	permissiveRE = regexp.MustCompile(`(?:v=|/)([0-9A-Za-z_-]{11})`)
)

// ExtractVideoID derives the canonical video ID from a watch URL
// (youtube.com/watch?v=ID), a short link (youtu.be/ID) or a bare ID.
// Anything else is scanned for an ID-like token after "v=" or "/".
func ExtractVideoID(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", ErrInvalidReference
	}

	if id, ok := fromURL(ref); ok {
		return id, nil
	}

	if bareIDRE.MatchString(ref) {
		return ref, nil
	}

	if m := permissiveRE.FindStringSubmatch(ref); len(m) == 2 {
		return m[1], nil
	}

	return "", ErrInvalidReference
}

// IsValidID reports whether s has the shape of a video ID
func IsValidID(s string) bool {
	return bareIDRE.MatchString(s)
}

// WatchURL returns the canonical watch page URL for a video ID
func WatchURL(id string) string {
	return "https://www.youtube.com/watch?v=" + id
}

// fromURL handles the two URL shapes that carry the ID in a known position.
func fromURL(ref string) (string, bool) {
	var candidate string

	switch {
	case strings.Contains(ref, "youtube.com/watch"):
		u, err := parseLoose(ref)
		if err != nil {
			return "", false
		}
		candidate = u.Query().Get("v")
	case strings.Contains(ref, "youtu.be/"):
		u, err := parseLoose(ref)
		if err != nil {
			return "", false
		}
		candidate = strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0]
	default:
		return "", false
	}

	if !bareIDRE.MatchString(candidate) {
		return "", false
	}
	return candidate, true
}

// parseLoose accepts references pasted without a scheme, e.g. "youtu.be/ID".
func parseLoose(ref string) (*url.URL, error) {
	if !strings.Contains(ref, "://") {
		ref = "https://" + ref
	}
	return url.Parse(ref)
}
