package rinex

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crxkit/crinex/errs"
)

// SV identifies a satellite vehicle: a constellation letter and a PRN
// number, serialized as the three-character A1,I2 field of an observation
// epoch line ("G07", "R21", "E05").
type SV struct {
	System byte
	PRN    int
}

// ParseSV parses a three-character satellite field. A blank system letter
// denotes GPS, the RINEX v2 shorthand.
func ParseSV(field string) (SV, error) {
	if len(field) != 3 {
		return SV{}, fmt.Errorf("%w: %q is not a 3-character field", errs.ErrInvalidSatellite, field)
	}

	system := field[0]
	if system == ' ' {
		system = 'G'
	}
	if system < 'A' || system > 'Z' {
		return SV{}, fmt.Errorf("%w: %q has no constellation letter", errs.ErrInvalidSatellite, field)
	}

	prn, err := strconv.Atoi(strings.TrimSpace(field[1:]))
	if err != nil || prn <= 0 || prn > 99 {
		return SV{}, fmt.Errorf("%w: %q has no valid PRN", errs.ErrInvalidSatellite, field)
	}

	return SV{System: system, PRN: prn}, nil
}

// String renders the canonical three-character form with a zero-padded PRN.
func (sv SV) String() string {
	return fmt.Sprintf("%c%02d", sv.System, sv.PRN)
}

// IsZero reports whether sv is the zero value.
func (sv SV) IsZero() bool {
	return sv.System == 0 && sv.PRN == 0
}
