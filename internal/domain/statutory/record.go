package statutory

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	headerWidth  = 100
	detailWidth  = 154
	trailerWidth = 42
)

type overflowFunc func(field, value string, width int)

type record struct {
	data     []byte
	overflow overflowFunc
}

func newRecord(size int, overflow overflowFunc) *record {
	d := make([]byte, size)
	for i := range d {
		d[i] = ' '
	}
	return &record{data: d, overflow: overflow}
}

// put places s at 1-based positions [start, end], inclusive.
func (r *record) put(start, end int, s string) {
	copy(r.data[start-1:end], s)
}

// text writes an upper-cased ASCII value, space padded on the right. Overflow keeps
// the leading characters.
func (r *record) text(field string, start, end int, value string) {
	width := end - start + 1
	s := asciiUpper(value)
	if len(s) > width {
		r.overflow(field, value, width)
		s = s[:width]
	}
	r.put(start, end, s+strings.Repeat(" ", width-len(s)))
}

// numeric writes a zero padded value. Overflow keeps the least significant digits.
func (r *record) numeric(field string, start, end int, value int64) {
	width := end - start + 1
	if value < 0 {
		value = 0
	}
	s := strconv.FormatInt(value, 10)
	if len(s) > width {
		r.overflow(field, s, width)
		s = s[len(s)-width:]
	}
	r.put(start, end, strings.Repeat("0", width-len(s))+s)
}

// digits writes a numeric identifier given as a string, such as a social security number.
func (r *record) digits(field string, start, end int, value string) {
	width := end - start + 1
	s := onlyDigits(value)
	if len(s) > width {
		r.overflow(field, value, width)
		s = s[len(s)-width:]
	}
	r.put(start, end, strings.Repeat("0", width-len(s))+s)
}

func (r *record) String() string { return string(r.data) }

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// asciiUpper strips accents (Ñ -> N, É -> E) and replaces anything left outside
// printable ASCII with a space.
func asciiUpper(s string) string {
	stripped, _, err := transform.String(stripMarks, s)
	if err != nil {
		stripped = s
	}
	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range strings.ToUpper(strings.TrimSpace(stripped)) {
		if r < 0x20 || r > 0x7e {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
