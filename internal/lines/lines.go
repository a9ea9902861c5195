// Package lines provides lazy line sequences with single-line lookahead.
//
// Every sequence is pull-based: callers ask for one line at a time and treat
// io.EOF from Next as the normal end of the sequence, not a failure.
package lines

import (
	"bufio"
	"io"
)

// Reader yields successive lines of text without their terminators.
// Next returns io.EOF once the sequence is exhausted; any other error is a
// real failure and the sequence must not be read further.
type Reader interface {
	Next() (string, error)
}

type scanReader struct {
	scanner *bufio.Scanner
	closer  io.Closer
	done    bool
}

// FromReader wraps r as a line sequence.
func FromReader(r io.Reader) Reader {
	return &scanReader{scanner: bufio.NewScanner(r)}
}

// FromReadCloser wraps rc as a line sequence and closes it when the sequence
// ends, whether by exhaustion or by a read failure.
func FromReadCloser(rc io.ReadCloser) Reader {
	return &scanReader{scanner: bufio.NewScanner(rc), closer: rc}
}

func (s *scanReader) Next() (string, error) {
	if s.done {
		return "", io.EOF
	}

	if s.scanner.Scan() {
		return s.scanner.Text(), nil
	}

	s.done = true
	err := s.scanner.Err()
	if s.closer != nil {
		closeErr := s.closer.Close()
		if err == nil && closeErr != nil {
			err = closeErr
		}
	}
	if err != nil {
		return "", err
	}

	return "", io.EOF
}

type sliceReader struct {
	lines []string
}

// FromSlice returns a sequence over the given lines.
func FromSlice(ls []string) Reader {
	return &sliceReader{lines: ls}
}

func (s *sliceReader) Next() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}

	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

// Peekable adds single-line lookahead to a Reader. Block boundaries in
// profile data are only detectable by looking at the next line, so consumers
// peek before deciding whether to consume.
type Peekable struct {
	src    Reader
	line   string
	err    error
	peeked bool
}

// NewPeekable wraps src with lookahead support.
func NewPeekable(src Reader) *Peekable {
	return &Peekable{src: src}
}

// Peek reports the next line without consuming it.
func (p *Peekable) Peek() (string, error) {
	if !p.peeked {
		p.line, p.err = p.src.Next()
		p.peeked = true
	}

	return p.line, p.err
}

// Next consumes and returns the next line.
func (p *Peekable) Next() (string, error) {
	if p.peeked {
		p.peeked = false
		return p.line, p.err
	}

	return p.src.Next()
}
