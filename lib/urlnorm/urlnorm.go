// Package urlnorm canonicalizes URLs handed back by the release API.
//
// Release responses carry RFC 6570 templates such as
// "https://uploads.github.com/repos/o/r/releases/1/assets{?name,label}".
// Parsing that leaves a dangling "{" on the path and the template variables
// in the query; Normalize drops both.
package urlnorm

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrMalformedURL = errors.New("malformed url")
)

const templateMarker = "{"

func Normalize(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}

	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not an absolute url", ErrMalformedURL, raw)
	}

	u.RawQuery = ""
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""

	// url.Parse decodes "%7B" into "{", so a single trim covers both the
	// literal and the percent-encoded marker.
	u.Path = strings.TrimSuffix(u.Path, templateMarker)
	u.RawPath = ""

	return u, nil
}
