package application

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// generate rewrites the credentials stream from src onto out, expanding each
// directive in place. Passthrough text is copied verbatim, terminators
// included, so a run over a directive-free file is byte-identical. Content
// between a start and stop sentinel is stale output from a previous run and
// is discarded; a fresh expansion and stop sentinel were already written
// when the start sentinel was seen.
func (s *Service) generate(ctx context.Context, src io.Reader, out io.Writer, workPath string) ([]string, error) {
	reader := bufio.NewReader(src)
	inDirectiveBlock := false
	var expanded []string

	for {
		raw, readErr := reader.ReadString('\n')
		if raw == "" && readErr != nil {
			if readErr == io.EOF {
				return expanded, nil
			}
			return nil, fmt.Errorf("read credentials file: %w", readErr)
		}

		line := strings.TrimRight(raw, "\r\n")

		switch {
		case strings.HasPrefix(line, s.magicStart):
			if _, err := io.WriteString(out, line+"\n"); err != nil {
				return nil, err
			}
			location, err := s.writeExpansion(ctx, line, out, workPath)
			if err != nil {
				return nil, err
			}
			expanded = append(expanded, location)
			inDirectiveBlock = true

		case strings.HasPrefix(line, s.magicStop):
			inDirectiveBlock = false

		case !inDirectiveBlock:
			if _, err := io.WriteString(out, raw); err != nil {
				return nil, err
			}
		}

		if readErr != nil {
			if readErr == io.EOF {
				return expanded, nil
			}
			return nil, fmt.Errorf("read credentials file: %w", readErr)
		}
	}
}

func (s *Service) writeExpansion(ctx context.Context, directiveLine string, out io.Writer, workPath string) (string, error) {
	expansion, directive, err := s.expandDirective(ctx, directiveLine, workPath)
	if err != nil {
		return "", err
	}

	for {
		line, err := expansion.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		if _, err := io.WriteString(out, line+"\n"); err != nil {
			return "", err
		}
	}

	if _, err := io.WriteString(out, "\n"+s.magicStop+"\n"); err != nil {
		return "", err
	}

	return directive.Location, nil
}
