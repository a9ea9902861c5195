package domain

import (
	"fmt"
	"strings"
)

// Default sentinel tokens delimiting generated content in a credentials file.
const (
	DefaultMagicStart = "#!profile-sync "
	DefaultMagicStop  = "#!profile-sync-stop"
)

// ProfileStart marks the first character of a profile header line.
const ProfileStart = "["

// Directive describes one sync instruction embedded in a credentials file:
// where to fetch profile data from, parameters for the fetcher, and field
// values to substitute into the fetched profiles.
type Directive struct {
	Location  string
	Params    map[string]string
	Overrides map[string]string
}

// ParseDirective parses a directive line of the form
//
//	<sentinel> <location> [param=value]... [-- override=value...]
//
// The sentinel prefix is stripped by the caller's token; everything before a
// standalone "--" token belongs to the handler section, everything after it
// is field overrides.
func ParseDirective(line string, magicStart string) (Directive, error) {
	body, ok := strings.CutPrefix(line, magicStart)
	if !ok {
		return Directive{}, fmt.Errorf("%w: line does not begin with %q", ErrMalformedDirective, strings.TrimSpace(magicStart))
	}

	handlerTerms := strings.Fields(body)
	var overrideTerms []string
	for i, term := range handlerTerms {
		if term == "--" {
			overrideTerms = handlerTerms[i+1:]
			handlerTerms = handlerTerms[:i]
			break
		}
	}

	if len(handlerTerms) == 0 {
		return Directive{}, fmt.Errorf("%w: directive has no location", ErrMalformedDirective)
	}

	location := handlerTerms[0]
	params, err := parsePairs(handlerTerms[1:])
	if err != nil {
		return Directive{}, fmt.Errorf("%w: handler parameter %v", ErrMalformedDirective, err)
	}

	overrides, err := parsePairs(overrideTerms)
	if err != nil {
		return Directive{}, fmt.Errorf("%w: override %v", ErrMalformedDirective, err)
	}

	return Directive{
		Location:  location,
		Params:    params,
		Overrides: overrides,
	}, nil
}

func parsePairs(terms []string) (map[string]string, error) {
	pairs := make(map[string]string, len(terms))
	for _, term := range terms {
		if strings.Count(term, "=") != 1 {
			return nil, fmt.Errorf("%q is not a single key=value pair", term)
		}
		key, value, _ := strings.Cut(term, "=")
		if key == "" {
			return nil, fmt.Errorf("%q has an empty key", term)
		}
		pairs[key] = value
	}

	return pairs, nil
}
