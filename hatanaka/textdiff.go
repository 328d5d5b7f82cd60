package hatanaka

// Overlay markers of the Hatanaka text diff. A space means "unchanged from
// the previous line"; a space that genuinely changed is escaped as '&' so
// the two cases stay distinguishable. A literal '&' in observation text is
// not representable, matching the historical CRINEX constraint.
const (
	unchangedMarker = ' '
	spaceEscape     = '&'
)

// TextKernel is the column-overlay differencer/recoverer for one free-text
// field's time series: epoch/satellite-list descriptors and the one-character
// LLI/SNR flag columns.
//
// The zero value is ready to use with an empty previous line, which makes
// every character of the first diff literal. Reset replaces the previous
// line wholesale.
type TextKernel struct {
	prev []byte
}

// NewTextKernel returns a kernel with an empty previous line.
func NewTextKernel() *TextKernel {
	return &TextKernel{}
}

// Reset stores line verbatim as the kernel's previous text.
func (k *TextKernel) Reset(line string) {
	k.prev = append(k.prev[:0], line...)
}

// Recover overlays a diff line onto the previous text and returns the
// reconstructed line. The result has exactly the diff line's length:
// unchanged markers within the previous line's extent copy the previous
// character, everything else is taken literally, and '&' inserts a space.
// The result becomes the new previous text.
func (k *TextKernel) Recover(diff string) string {
	out := make([]byte, len(diff))
	for i := 0; i < len(diff); i++ {
		switch c := diff[i]; {
		case c == spaceEscape:
			out[i] = ' '
		case c == unchangedMarker && i < len(k.prev):
			out[i] = k.prev[i]
		default:
			out[i] = c
		}
	}

	k.prev = append(k.prev[:0], out...)

	return string(out)
}

// Difference produces the diff line Recover would need to reconstruct
// current (compression direction, exact inverse). Characters equal to the
// previous line's are blanked; a changed character that is itself a space is
// escaped as '&'; characters beyond the previous line's length are emitted
// literally. current becomes the new previous text.
func (k *TextKernel) Difference(current string) string {
	out := make([]byte, len(current))
	for i := 0; i < len(current); i++ {
		c := current[i]
		switch {
		case i >= len(k.prev):
			out[i] = c
		case c == k.prev[i]:
			out[i] = unchangedMarker
		case c == ' ':
			out[i] = spaceEscape
		default:
			out[i] = c
		}
	}

	k.prev = append(k.prev[:0], current...)

	return string(out)
}

// Previous returns the kernel's current previous text.
func (k *TextKernel) Previous() string {
	return string(k.prev)
}
