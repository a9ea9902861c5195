package application

import (
	"context"
	"fmt"

	"github.com/bnema/profile-sync/internal/domain"
	"github.com/bnema/profile-sync/internal/lines"
)

// expandDirective resolves a directive line to a lazy sequence of expanded
// profile lines: parse, pick a fetcher, fetch, rewrite.
func (s *Service) expandDirective(ctx context.Context, line string, workPath string) (lines.Reader, domain.Directive, error) {
	s.logger.Debug().Str("directive", line).Msg("Parsing directive")

	directive, err := domain.ParseDirective(line, s.magicStart)
	if err != nil {
		return nil, domain.Directive{}, err
	}

	s.logger.Debug().Str("location", directive.Location).Msg("Processing remote")

	factory, err := s.registry.Find(directive.Location)
	if err != nil {
		return nil, domain.Directive{}, err
	}

	fetcher, err := factory.New(workPath)
	if err != nil {
		return nil, domain.Directive{}, fmt.Errorf("construct fetcher for %s: %w", directive.Location, err)
	}

	external, err := fetcher.Fetch(ctx, directive.Location, directive.Params)
	if err != nil {
		return nil, domain.Directive{}, err
	}

	rewritten := newExternalRewriter(lines.NewPeekable(external), directive.Overrides, s.missingLevel, s.logger)
	return rewritten, directive, nil
}
