package core

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewCSVSource wraps r for CSV decoding: a leading UTF-8 BOM is dropped and
// invalid UTF-8 bytes are replaced with U+FFFD as the stream is read.
func NewCSVSource(r io.Reader) io.Reader {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	if head, _ := br.Peek(len(utf8BOM)); bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &utf8Sanitizer{src: br}
}

// utf8Sanitizer re-encodes its source rune by rune.
// Memory use is one rune regardless of input size.
type utf8Sanitizer struct {
	src     *bufio.Reader
	buf     [utf8.UTFMax]byte
	pending []byte // encoded rune not yet returned
	err     error
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			if s.err != nil {
				break
			}
			r, _, err := s.src.ReadRune()
			if err != nil {
				s.err = err
				break
			}
			// ReadRune reports invalid bytes as utf8.RuneError, which encodes
			// as the replacement character.
			s.pending = utf8.AppendRune(s.buf[:0], r)
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}

	if n == 0 && s.err != nil {
		return 0, s.err
	}
	return n, nil
}
