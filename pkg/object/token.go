package object

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// readNullTerminated consumes bytes up to and including the next NUL and
// returns the bytes before it as text. At end of stream it returns what
// was read so far, which is the empty string for an exhausted reader.
func readNullTerminated(r io.ByteReader) (string, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read token: %w", err)
		}
		if b == 0 {
			break
		}
		buf.WriteByte(b)
	}
	if !utf8.Valid(buf.Bytes()) {
		return "", fmt.Errorf("%w: %q", ErrMalformedEncoding, buf.Bytes())
	}
	return buf.String(), nil
}

// countingReader counts the bytes read through it.
type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
