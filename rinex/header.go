// Package rinex holds the header-contract types the Hatanaka codec consumes.
//
// The codec never parses RINEX headers itself; an external header parser
// supplies an ObservationContract describing, per constellation, the ordered
// observable list and each observable's fixed-width decimal layout. The
// contract is the only knowledge the codec has of the file it is working on.
package rinex

import (
	"fmt"

	"github.com/crxkit/crinex/errs"
)

// FieldSpec describes the canonical text layout of one numeric field: its
// total column width and the number of fractional digits. The codec derives
// its integer scale factor (10^Decimals) from it.
type FieldSpec struct {
	Width    int
	Decimals int
}

// DefaultObservationSpec is the F14.3 layout every RINEX v2 observation
// field uses.
var DefaultObservationSpec = FieldSpec{Width: 14, Decimals: 3}

// ClockOffsetSpec is the F12.9 layout of the receiver clock offset appended
// to the epoch line.
var ClockOffsetSpec = FieldSpec{Width: 12, Decimals: 9}

// ObservationContract is what the codec consumes from a parsed RINEX header:
// the ordered observable codes for each constellation, and optional
// per-observable layout overrides.
type ObservationContract struct {
	// Observables maps a constellation letter ('G', 'R', 'E', ...) to its
	// ordered observable codes ("L1", "C1", "P2", ...). Order is the order
	// observation fields appear in the record.
	Observables map[byte][]string

	// Specs optionally overrides the field layout per observable code.
	// Missing codes fall back to DefaultObservationSpec.
	Specs map[string]FieldSpec
}

// ObservablesFor returns the ordered observable list for a constellation.
func (c *ObservationContract) ObservablesFor(system byte) ([]string, error) {
	codes, ok := c.Observables[system]
	if !ok || len(codes) == 0 {
		return nil, fmt.Errorf("%w: system %q", errs.ErrUnknownObservables, string(system))
	}

	return codes, nil
}

// Spec returns the field layout for an observable code.
func (c *ObservationContract) Spec(code string) FieldSpec {
	if spec, ok := c.Specs[code]; ok {
		return spec
	}

	return DefaultObservationSpec
}
