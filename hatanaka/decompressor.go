package hatanaka

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/internal/pool"
	"github.com/crxkit/crinex/rinex"
)

type decompressorState uint8

const (
	stateAwaitEpoch decompressorState = iota
	stateAwaitClock
	stateAwaitData
)

// Decompressor is one CRINEX → RINEX session. It consumes compressed record
// lines one at a time and emits the recovered observation lines.
//
// The session loops AwaitingEpochLine → AwaitingObservationLines →
// AwaitingEpochLine; each compressed epoch is one epoch-descriptor diff
// line, one clock-offset line (possibly blank) and one line per satellite.
// Special-event epochs and COMMENT lines pass through untouched.
//
// A Decompressor is a single-goroutine state machine; it holds no I/O.
type Decompressor struct {
	cfg      *sessionConfig
	contract *rinex.ObservationContract
	registry *FieldRegistry
	clock    LineCodec

	state        decompressorState
	epochCount   uint64
	pendingEvent int

	desc     epochDescriptor
	descLine string
	svIndex  int
	prevSVs  svSet
	curSVs   svSet
}

// NewDecompressor creates a decompression session bound to a header
// contract.
func NewDecompressor(contract *rinex.ObservationContract, opts ...Option) (*Decompressor, error) {
	if contract == nil {
		return nil, fmt.Errorf("%w: nil header contract", errs.ErrInvalidConfig)
	}

	cfg := newSessionConfig()
	if err := applySessionOptions(cfg, opts); err != nil {
		return nil, err
	}

	return &Decompressor{
		cfg:      cfg,
		contract: contract,
		registry: NewFieldRegistry(),
		clock:    NewLineCodec(rinex.ClockOffsetSpec),
	}, nil
}

// DecompressLine consumes one compressed line and returns the zero or more
// recovered RINEX lines it completes. Per-field failures are logged and the
// field blanked; a returned error means the current line could not be
// processed and the caller must resynchronize at the next epoch boundary.
func (d *Decompressor) DecompressLine(line string) ([]string, error) {
	line = strings.TrimRight(line, "\r\n")

	if d.pendingEvent > 0 {
		d.pendingEvent--
		return []string{line}, nil
	}
	if isCommentLine(line) {
		if isSpliceComment(line) {
			d.state = stateAwaitEpoch
		}

		return []string{line}, nil
	}

	switch d.state {
	case stateAwaitClock:
		return d.clockLine(line)
	case stateAwaitData:
		return d.dataLine(line)
	default:
		return d.epochLine(line)
	}
}

// epochLine handles the first line of an epoch: either a passthrough
// special event or the epoch-descriptor text diff.
func (d *Decompressor) epochLine(line string) ([]string, error) {
	if isEventFlag(charAt(line, epochFlagIndex)) {
		// Event epochs bypass the codec entirely, along with the NN
		// auxiliary records they announce.
		_, numRecords, err := parseEpochHeader(line)
		if err != nil {
			return nil, err
		}
		d.pendingEvent = numRecords

		return []string{trimRight(line)}, nil
	}

	krn, _, err := d.registry.Text(EpochKey(), d.epochCount)
	if err != nil {
		return nil, err
	}
	recovered := krn.Recover(line)

	flag, numSV, err := parseEpochHeader(recovered)
	if err != nil {
		return nil, err
	}
	var list string
	if len(recovered) > epochSVListIndex {
		list = recovered[epochSVListIndex:]
	}
	svs, err := parseSVList(list, numSV)
	if err != nil {
		return nil, err
	}

	d.epochCount++
	if d.cfg.pruneAfter > 0 {
		d.registry.Prune(d.epochCount, uint64(d.cfg.pruneAfter))
	}

	d.desc = epochDescriptor{flag: flag, numSV: numSV, svs: svs}
	d.descLine = recovered
	d.curSVs = newSVSet(svs)
	d.svIndex = 0
	d.state = stateAwaitClock

	return nil, nil
}

// clockLine handles the clock-offset line that follows every epoch
// descriptor, then emits the recovered epoch line(s).
func (d *Decompressor) clockLine(line string) ([]string, error) {
	clockText := ""
	if token := strings.TrimSpace(line); token != "" {
		if scaled, ok := d.recoverClock(token); ok {
			text, err := d.clock.Format(scaled)
			if err != nil {
				d.cfg.logger.WithError(err).WithField("epoch", d.epochCount).
					Warn("clock offset dropped")
			} else {
				clockText = text
			}
		}
	}

	lines := d.assembleEpochLines(clockText)
	if d.desc.numSV == 0 {
		d.finishEpoch()
	} else {
		d.state = stateAwaitData
	}

	return lines, nil
}

func (d *Decompressor) recoverClock(token string) (int64, bool) {
	order, value, reinit, err := parseToken(token)
	if err != nil {
		d.logField(rinex.SV{}, "clock", err)
		return 0, false
	}

	krn, _, err := d.registry.Numeric(ClockOffsetKey(), d.epochCount)
	if err != nil {
		d.logField(rinex.SV{}, "clock", err)
		return 0, false
	}

	if reinit {
		if order > d.cfg.maxOrder {
			d.logField(rinex.SV{}, "clock",
				fmt.Errorf("%w: order %d, session maximum %d", errs.ErrOrderTooLarge, order, d.cfg.maxOrder))
			return 0, false
		}
		if err := krn.Reset(order, value); err != nil {
			d.logField(rinex.SV{}, "clock", err)
			return 0, false
		}

		return value, true
	}

	recovered, err := krn.Recover(value)
	if err != nil {
		d.logField(rinex.SV{}, "clock", err)
		return 0, false
	}

	return recovered, true
}

// assembleEpochLines rebuilds the canonical epoch line from the recovered
// descriptor, wrapping satellites twelve per line and squeezing the clock
// offset into columns 69-80 of the first line.
func (d *Decompressor) assembleEpochLines(clockText string) []string {
	head := fieldAt(d.descLine, 0, epochSVListIndex)
	var list string
	if len(d.descLine) > epochSVListIndex {
		list = d.descLine[epochSVListIndex:]
	}

	buf := pool.GetLineBuffer()
	defer pool.PutLineBuffer(buf)

	var lines []string
	for start := 0; start == 0 || start < d.desc.numSV; start += svsPerEpochLine {
		buf.Reset()
		if start == 0 {
			buf.WriteString(head)
		} else {
			buf.PadTo(epochSVListIndex)
		}
		if count := min(svsPerEpochLine, d.desc.numSV-start); count > 0 {
			buf.WriteString(fieldAt(list, start*svFieldWidth, count*svFieldWidth))
		}
		if start == 0 && clockText != "" {
			buf.PadTo(clockOffsetIndex)
			buf.WriteString(clockText)
		}
		lines = append(lines, trimRight(buf.String()))
	}

	return lines
}

// dataLine handles one satellite's compressed observation line and emits
// its recovered RINEX line(s).
func (d *Decompressor) dataLine(line string) ([]string, error) {
	sv := d.desc.svs[d.svIndex]
	arcBreak := !d.prevSVs.has(sv)
	// The compressed stream carries exactly one line per satellite, so the
	// cursor advances even when this line fails; the caller stays in sync.
	defer d.advance()

	codes, err := d.contract.ObservablesFor(sv.System)
	if err != nil {
		return nil, err
	}

	tokens, flagDiff := splitDataLine(line, len(codes))

	values := make([]int64, len(codes))
	present := make([]bool, len(codes))
	for i, code := range codes {
		if strings.TrimSpace(tokens[i]) == "" {
			continue // blank field: no observation this epoch
		}

		order, value, reinit, err := parseToken(tokens[i])
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", sv, code, err)
		}

		krn, _, err := d.registry.Numeric(ObservationKey(sv, code), d.epochCount)
		if err != nil {
			d.logField(sv, code, err)
			continue
		}

		if reinit {
			if order > d.cfg.maxOrder {
				d.logField(sv, code,
					fmt.Errorf("%w: order %d, session maximum %d", errs.ErrOrderTooLarge, order, d.cfg.maxOrder))
				continue
			}
			if err := krn.Reset(order, value); err != nil {
				d.logField(sv, code, err)
				continue
			}
			values[i], present[i] = value, true

			continue
		}

		recovered, err := krn.Recover(value)
		if err != nil {
			d.logField(sv, code, err)
			continue
		}
		values[i], present[i] = recovered, true
	}

	flagChars := make([]byte, len(codes)*obsFlagWidth)
	for j := range flagChars {
		key := FlagKey(sv, codes[j/obsFlagWidth], flagKindAt(j))
		krn, _, err := d.registry.Text(key, d.epochCount)
		if err != nil {
			d.logField(sv, codes[j/obsFlagWidth], err)
			flagChars[j] = ' '

			continue
		}
		if arcBreak {
			krn.Reset("")
		}
		flagChars[j] = krn.Recover(string(charAt(flagDiff, j)))[0]
	}

	return d.assembleObsLines(codes, values, present, flagChars, sv), nil
}

// assembleObsLines renders one satellite's observations, five per line,
// blanking missing fields to their full column width.
func (d *Decompressor) assembleObsLines(codes []string, values []int64, present []bool, flagChars []byte, sv rinex.SV) []string {
	buf := pool.GetLineBuffer()
	defer pool.PutLineBuffer(buf)

	var lines []string
	for i, code := range codes {
		if i > 0 && i%obsPerLine == 0 {
			lines = append(lines, trimRight(buf.String()))
			buf.Reset()
		}

		spec := d.contract.Spec(code)
		if present[i] {
			text, err := NewLineCodec(spec).Format(values[i])
			if err != nil {
				d.logField(sv, code, err)
				buf.WriteString(strings.Repeat(" ", spec.Width))
			} else {
				buf.WriteString(text)
			}
		} else {
			buf.WriteString(strings.Repeat(" ", spec.Width))
		}
		buf.MustWriteByte(flagChars[i*obsFlagWidth])
		buf.MustWriteByte(flagChars[i*obsFlagWidth+1])
	}
	lines = append(lines, trimRight(buf.String()))

	return lines
}

func (d *Decompressor) advance() {
	d.svIndex++
	if d.svIndex >= d.desc.numSV {
		d.finishEpoch()
	}
}

func (d *Decompressor) finishEpoch() {
	d.prevSVs = d.curSVs
	d.curSVs = nil
	d.state = stateAwaitEpoch
}

func (d *Decompressor) logField(sv rinex.SV, code string, err error) {
	fields := logrus.Fields{"epoch": d.epochCount, "observable": code}
	if !sv.IsZero() {
		fields["sv"] = sv.String()
	}
	d.cfg.logger.WithFields(fields).WithError(err).Warn("field skipped")
}
