package hatanaka

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/rinex"
)

// Canonical RINEX v2 observation layout. The epoch line is
// 1X,I2.2,4(1X,I2),F11.7,2X,I1,I3,12(A1,I2),F12.9: 32 fixed columns, then up
// to twelve 3-character satellite slots, then the optional clock offset.
const (
	epochFlagIndex   = 28
	epochNumSVIndex  = 29
	epochSVListIndex = 32
	clockOffsetIndex = 68
	headerLabelIndex = 60

	svFieldWidth    = 3
	svsPerEpochLine = 12
	obsPerLine      = 5
	obsFlagWidth    = 2
)

// charAt returns the byte at index i, or a space past the line's end; short
// lines are read as blank-padded.
func charAt(line string, i int) byte {
	if i < len(line) {
		return line[i]
	}

	return ' '
}

// fieldAt returns the width-character field starting at start, blank-padded
// past the line's end.
func fieldAt(line string, start, width int) string {
	if start >= len(line) {
		return strings.Repeat(" ", width)
	}
	if start+width <= len(line) {
		return line[start : start+width]
	}

	return line[start:] + strings.Repeat(" ", start+width-len(line))
}

// isCommentLine reports whether the line carries the COMMENT header label.
// Comments may appear anywhere in a record and pass through both directions
// untouched.
func isCommentLine(line string) bool {
	return len(line) > headerLabelIndex && strings.TrimSpace(line[headerLabelIndex:]) == "COMMENT"
}

// spliceComment marks merged files; the epoch state machine resynchronizes
// at the next epoch line.
func isSpliceComment(line string) bool {
	return isCommentLine(line) && strings.Contains(line, "RINEX FILE SPLICE")
}

// isEventFlag reports whether an epoch flag digit marks a special-event
// epoch whose records bypass the codec. Flags 0 and 1 are observation
// epochs; 2..6 carry event records counted by the NN field.
func isEventFlag(flag byte) bool {
	return flag >= '2' && flag <= '6'
}

// epochDescriptor is the parsed canonical epoch line: flag, satellite count
// and the ordered satellite list.
type epochDescriptor struct {
	flag  byte
	numSV int
	svs   []rinex.SV
}

// parseEpochHeader parses the flag and satellite count of an epoch line.
func parseEpochHeader(line string) (flag byte, numSV int, err error) {
	flag = charAt(line, epochFlagIndex)
	if flag < '0' || flag > '9' {
		return 0, 0, fmt.Errorf("%w: flag %q", errs.ErrMalformedEpochLine, string(flag))
	}

	numSV, err = strconv.Atoi(strings.TrimSpace(fieldAt(line, epochNumSVIndex, 3)))
	if err != nil || numSV < 0 {
		return 0, 0, fmt.Errorf("%w: satellite count %q", errs.ErrMalformedEpochLine,
			fieldAt(line, epochNumSVIndex, 3))
	}

	return flag, numSV, nil
}

// parseSVList extracts count satellites from the list portion of an
// unwrapped epoch descriptor.
func parseSVList(list string, count int) ([]rinex.SV, error) {
	svs := make([]rinex.SV, 0, count)
	for i := 0; i < count; i++ {
		sv, err := rinex.ParseSV(fieldAt(list, i*svFieldWidth, svFieldWidth))
		if err != nil {
			return nil, fmt.Errorf("%w: satellite %d: %v", errs.ErrMalformedEpochLine, i+1, err)
		}
		svs = append(svs, sv)
	}

	return svs, nil
}

// splitDataLine splits one compressed satellite line into numObs field
// tokens and the trailing flag block. Tokens are single-space separated;
// consecutive separators denote a blank (missing) field. Everything after
// the numObs-th separator belongs to the flag block verbatim.
func splitDataLine(line string, numObs int) (tokens []string, flags string) {
	tokens = make([]string, numObs)
	pos := 0
	for i := 0; i < numObs; i++ {
		if pos >= len(line) {
			break
		}
		sep := strings.IndexByte(line[pos:], ' ')
		if sep < 0 {
			tokens[i] = line[pos:]
			pos = len(line) + 1
		} else {
			tokens[i] = line[pos : pos+sep]
			pos += sep + 1
		}
	}
	if pos < len(line) {
		flags = line[pos:]
	}

	return tokens, flags
}

// svSet is the satellite set of one epoch, used for arc-break detection.
type svSet map[rinex.SV]struct{}

func newSVSet(svs []rinex.SV) svSet {
	set := make(svSet, len(svs))
	for _, sv := range svs {
		set[sv] = struct{}{}
	}

	return set
}

func (s svSet) has(sv rinex.SV) bool {
	_, ok := s[sv]
	return ok
}

// flagKindAt maps a column inside a satellite's flag block to its kind; the
// block interleaves LLI and SNR, two columns per observable.
func flagKindAt(column int) FieldKind {
	if column%obsFlagWidth == 0 {
		return FieldLLI
	}

	return FieldSNR
}

// trimRight removes the trailing blank padding of an emitted line.
func trimRight(line string) string {
	return strings.TrimRight(line, " ")
}
