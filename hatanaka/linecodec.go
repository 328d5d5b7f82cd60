package hatanaka

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/rinex"
)

// LineCodec converts between a field's canonical fixed-width decimal text
// and the scaled signed-integer domain the numeric kernels work in. A field
// with N fractional digits is scaled by 10^N so all differencing stays in
// exact integer arithmetic.
type LineCodec struct {
	width    int
	decimals int
	scale    int64
}

// NewLineCodec builds the codec for one field layout.
func NewLineCodec(spec rinex.FieldSpec) LineCodec {
	scale := int64(1)
	for i := 0; i < spec.Decimals; i++ {
		scale *= 10
	}

	return LineCodec{width: spec.Width, decimals: spec.Decimals, scale: scale}
}

// Scale returns the codec's integer scale factor (10^Decimals).
func (c LineCodec) Scale() int64 {
	return c.scale
}

// Parse converts a fixed-decimal text field to its scaled integer value.
func (c LineCodec) Parse(text string) (int64, error) {
	t := strings.TrimSpace(text)
	if t == "" {
		return 0, fmt.Errorf("%w: empty numeric field", errs.ErrMalformedToken)
	}

	negative := false
	switch t[0] {
	case '-':
		negative = true
		t = t[1:]
	case '+':
		t = t[1:]
	}

	intPart, fracPart := t, ""
	if dot := strings.IndexByte(t, '.'); dot >= 0 {
		intPart, fracPart = t[:dot], t[dot+1:]
	}
	if len(fracPart) > c.decimals {
		return 0, fmt.Errorf("%w: %q has more than %d fractional digits", errs.ErrMalformedToken, text, c.decimals)
	}
	for len(fracPart) < c.decimals {
		fracPart += "0"
	}
	if intPart == "" {
		intPart = "0"
	}

	value, err := strconv.ParseInt(intPart+fracPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a fixed decimal", errs.ErrMalformedToken, text)
	}
	if negative {
		value = -value
	}

	return value, nil
}

// Format converts a scaled integer back to the field's canonical
// right-adjusted fixed-decimal text. The value is surfaced as
// ErrFieldWidthOverflow when its text would not fit the column width.
func (c LineCodec) Format(scaled int64) (string, error) {
	abs := scaled
	if abs < 0 {
		abs = -abs
	}

	var body string
	if c.decimals > 0 {
		body = fmt.Sprintf("%d.%0*d", abs/c.scale, c.decimals, abs%c.scale)
	} else {
		body = strconv.FormatInt(abs, 10)
	}
	if scaled < 0 {
		body = "-" + body
	}

	if len(body) > c.width {
		return "", fmt.Errorf("%w: %q exceeds width %d", errs.ErrFieldWidthOverflow, body, c.width)
	}

	return strings.Repeat(" ", c.width-len(body)) + body, nil
}

// parseToken splits one compressed numeric field token. The grammar is
// ["<order>&"]<signed-decimal>: a leading single digit and '&' mark a
// re-initialization carrying the new order and the absolute scaled value; a
// bare signed decimal is a normal differential step.
func parseToken(token string) (order int, value int64, reinit bool, err error) {
	body := token
	if amp := strings.IndexByte(token, '&'); amp >= 0 {
		if amp != 1 || token[0] < '0' || token[0] > '9' {
			return 0, 0, false, fmt.Errorf("%w: %q", errs.ErrMalformedToken, token)
		}
		order = int(token[0] - '0')
		reinit = true
		body = token[2:]
	}

	value, perr := strconv.ParseInt(strings.TrimSpace(body), 10, 64)
	if perr != nil {
		return 0, 0, false, fmt.Errorf("%w: %q", errs.ErrMalformedToken, token)
	}

	return order, value, reinit, nil
}

// formatReinitToken renders the "<order>&<value>" re-initialization token.
func formatReinitToken(order int, value int64) string {
	return strconv.Itoa(order) + "&" + strconv.FormatInt(value, 10)
}
