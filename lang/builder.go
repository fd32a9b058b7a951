package lang

// resultBuilder accumulates evaluated text together with the offsets at
// which list elements split.
//
// The hasText flag distinguishes a list with no elements from a list holding
// one empty element. A requested separator is only recorded once more text
// follows it.
type resultBuilder struct {
	buf        []byte
	separators []int
	needsSep   bool
	hasText    bool
}

// setNeedsSeparator requests a separator before the next appended text. It
// has no effect until some text has been appended.
func (b *resultBuilder) setNeedsSeparator() {
	if b.hasText {
		b.needsSep = true
	}
}

func (b *resultBuilder) applySeparator() {
	if b.needsSep {
		b.separators = append(b.separators, len(b.buf))
		b.needsSep = false
	}
}

func (b *resultBuilder) append(s string) {
	b.applySeparator()
	b.buf = append(b.buf, s...)
	b.hasText = true
}

// appendContents appends the text and separators of other.
func (b *resultBuilder) appendContents(other *resultBuilder) {
	if !other.hasText {
		return
	}

	b.applySeparator()

	base := len(b.buf)
	b.buf = append(b.buf, other.buf...)

	for _, off := range other.separators {
		b.separators = append(b.separators, base+off)
	}

	b.hasText = true
}

// elements calls yield with each list element in order.
func (b *resultBuilder) elements(yield func(string)) {
	last := 0

	for _, sep := range b.separators {
		yield(string(b.buf[last:sep]))
		last = sep
	}

	if b.hasText {
		yield(string(b.buf[last:]))
	}
}

func (b *resultBuilder) String() string { return string(b.buf) }

func (b *resultBuilder) list() []string {
	out := make([]string, 0, len(b.separators)+1)
	b.elements(func(s string) { out = append(out, s) })

	return out
}
