// Package code holds the immutable source buffer shared by the lexer and parser.
package code

import (
	"encoding/hex"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/blake2b"

	"github.com/nattlua/nattlua-go/core/invariant"
)

// Code is a named, immutable view over source bytes.
//
// All positions are byte offsets in [0, Len()]; Len() itself denotes end of
// input. The buffer is stored as a string so token text can share it without
// copying.
type Code struct {
	src  string
	name string

	linesOnce sync.Once
	lines     []int // offsets of line starts, computed on first use
}

// New copies buf into a new Code.
func New(buf []byte, name string) *Code {
	return &Code{src: string(buf), name: name}
}

// FromString wraps src without copying.
func FromString(src, name string) *Code {
	return &Code{src: src, name: name}
}

// Name returns the display name (file path, "stdin", "test", ...).
func (c *Code) Name() string { return c.name }

// Len returns the size of the buffer in bytes.
func (c *Code) Len() int { return len(c.src) }

// String returns the full source text.
func (c *Code) String() string { return c.src }

// Byte returns the byte at offset, or 0 when offset is outside the buffer.
func (c *Code) Byte(offset int) byte {
	if offset < 0 || offset >= len(c.src) {
		return 0
	}
	return c.src[offset]
}

// Slice returns src[start:stop]. Bounds are clamped to the buffer so callers
// peeking past the end get a short (possibly empty) result.
func (c *Code) Slice(start, stop int) string {
	if start < 0 {
		start = 0
	}
	if stop > len(c.src) {
		stop = len(c.src)
	}
	if start >= stop {
		return ""
	}
	return c.src[start:stop]
}

// HasPrefixAt reports whether value occurs at offset.
func (c *Code) HasPrefixAt(offset int, value string) bool {
	if offset < 0 || offset > len(c.src) {
		return false
	}
	return strings.HasPrefix(c.src[offset:], value)
}

// FindNearest returns the offset of the first occurrence of pattern at or
// after from.
func (c *Code) FindNearest(pattern string, from int) (int, bool) {
	invariant.Precondition(from >= 0, "FindNearest from %d must not be negative", from)
	if from > len(c.src) {
		return 0, false
	}
	i := strings.Index(c.src[from:], pattern)
	if i < 0 {
		return 0, false
	}
	return from + i, true
}

// LineColumn maps a byte offset to a 1-based line and column. Columns count
// bytes, matching the Go scanner convention.
func (c *Code) LineColumn(offset int) (line, column int) {
	invariant.Span(offset, offset, len(c.src), "LineColumn")
	starts := c.lineStarts()
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset }) - 1
	return i + 1, offset - starts[i] + 1
}

// Line returns the text of the 1-based line n without its newline.
func (c *Code) Line(n int) string {
	starts := c.lineStarts()
	if n < 1 || n > len(starts) {
		return ""
	}
	start := starts[n-1]
	stop := len(c.src)
	if n < len(starts) {
		stop = starts[n] - 1
	}
	return strings.TrimSuffix(c.src[start:stop], "\r")
}

func (c *Code) lineStarts() []int {
	c.linesOnce.Do(func() {
		c.lines = []int{0}
		for i := 0; i < len(c.src); i++ {
			if c.src[i] == '\n' {
				c.lines = append(c.lines, i+1)
			}
		}
	})
	return c.lines
}

// Fingerprint returns the blake2b-256 digest of the source bytes.
func (c *Code) Fingerprint() [32]byte {
	return blake2b.Sum256([]byte(c.src))
}

// FingerprintHex returns Fingerprint as lowercase hex.
func (c *Code) FingerprintHex() string {
	sum := c.Fingerprint()
	return hex.EncodeToString(sum[:])
}
