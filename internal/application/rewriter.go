package application

import (
	"fmt"
	"io"
	"strings"

	"github.com/bnema/profile-sync/internal/domain"
	"github.com/bnema/profile-sync/internal/lines"
	"github.com/rs/zerolog"
)

// profileRewriter re-emits one profile block with overrides applied. The
// first line consumed must be the block header; the block ends at the next
// header or at the end of the source.
type profileRewriter struct {
	src          *lines.Peekable
	overrides    map[string]string
	missingLevel zerolog.Level
	logger       zerolog.Logger
	started      bool
}

func newProfileRewriter(src *lines.Peekable, overrides map[string]string, missingLevel zerolog.Level, logger zerolog.Logger) *profileRewriter {
	return &profileRewriter{
		src:          src,
		overrides:    overrides,
		missingLevel: missingLevel,
		logger:       logger,
	}
}

func (r *profileRewriter) Next() (string, error) {
	if !r.started {
		header, err := r.src.Next()
		if err != nil {
			return "", err
		}
		r.started = true
		return header, nil
	}

	next, err := r.src.Peek()
	if err != nil {
		// io.EOF ends the block cleanly.
		return "", err
	}
	if strings.HasPrefix(next, domain.ProfileStart) {
		return "", io.EOF
	}

	line, err := r.src.Next()
	if err != nil {
		return "", err
	}

	if !strings.Contains(line, "=") {
		// Comment or whitespace passes through.
		return line, nil
	}

	key, value, _ := strings.Cut(line, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)

	override, hasOverride := r.overrides[key]
	if value == "" && !hasOverride {
		r.logger.WithLevel(r.missingLevel).
			Str("key", key).
			Msg("No override provided for an empty external configuration line")
		if r.missingLevel >= zerolog.ErrorLevel {
			return "", fmt.Errorf("%w: %s", domain.ErrMissingOverride, key)
		}
	}
	if hasOverride {
		value = override
	}

	return fmt.Sprintf("%s = %s", key, value), nil
}

// externalRewriter processes an entire fetched source: header-led blocks go
// through a profileRewriter, anything between blocks passes through
// unchanged.
type externalRewriter struct {
	src          *lines.Peekable
	overrides    map[string]string
	missingLevel zerolog.Level
	logger       zerolog.Logger
	block        *profileRewriter
}

// newExternalRewriter wraps src so that every profile block it yields has
// overrides applied and the missing-value policy enforced.
func newExternalRewriter(src *lines.Peekable, overrides map[string]string, missingLevel zerolog.Level, logger zerolog.Logger) lines.Reader {
	return &externalRewriter{
		src:          src,
		overrides:    overrides,
		missingLevel: missingLevel,
		logger:       logger,
	}
}

func (r *externalRewriter) Next() (string, error) {
	for {
		if r.block != nil {
			line, err := r.block.Next()
			if err == nil {
				return line, nil
			}
			if err != io.EOF {
				return "", err
			}
			r.block = nil
		}

		next, err := r.src.Peek()
		if err != nil {
			return "", err
		}

		if strings.HasPrefix(next, domain.ProfileStart) {
			r.block = newProfileRewriter(r.src, r.overrides, r.missingLevel, r.logger)
			continue
		}

		return r.src.Next()
	}
}
