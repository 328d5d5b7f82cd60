package hatanaka

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/internal/pool"
	"github.com/crxkit/crinex/rinex"
)

type compressorState uint8

const (
	cstateAwaitEpoch compressorState = iota
	cstateEpochCont
	cstateData
)

// Compressor is one RINEX → CRINEX session, the mirror of Decompressor.
// It buffers an epoch's continuation lines and each satellite's wrapped
// observation lines, then emits one descriptor diff line, one clock-offset
// line and one compressed line per satellite.
type Compressor struct {
	cfg      *sessionConfig
	contract *rinex.ObservationContract
	registry *FieldRegistry
	clock    LineCodec

	state        compressorState
	epochCount   uint64
	pendingEvent int

	desc       epochDescriptor
	head       string
	clockField string
	svIndex    int
	obsLines   []string
	prevSVs    svSet
	curSVs     svSet
}

// NewCompressor creates a compression session bound to a header contract.
func NewCompressor(contract *rinex.ObservationContract, opts ...Option) (*Compressor, error) {
	if contract == nil {
		return nil, fmt.Errorf("%w: nil header contract", errs.ErrInvalidConfig)
	}

	cfg := newSessionConfig()
	if err := applySessionOptions(cfg, opts); err != nil {
		return nil, err
	}

	return &Compressor{
		cfg:      cfg,
		contract: contract,
		registry: NewFieldRegistry(),
		clock:    NewLineCodec(rinex.ClockOffsetSpec),
	}, nil
}

// CompressLine consumes one RINEX body line and returns the zero or more
// compressed lines it completes. A returned error means the line could not
// be processed; the session resynchronizes at the next epoch boundary.
func (c *Compressor) CompressLine(line string) ([]string, error) {
	line = strings.TrimRight(line, "\r\n")

	if c.pendingEvent > 0 {
		c.pendingEvent--
		return []string{line}, nil
	}
	if isCommentLine(line) {
		if isSpliceComment(line) {
			c.resync()
		}

		return []string{line}, nil
	}

	switch c.state {
	case cstateEpochCont:
		return c.epochContLine(line)
	case cstateData:
		return c.obsLine(line)
	default:
		return c.epochLine(line)
	}
}

func (c *Compressor) epochLine(line string) ([]string, error) {
	flag, numSV, err := parseEpochHeader(line)
	if err != nil {
		return nil, err
	}
	if isEventFlag(flag) {
		c.pendingEvent = numSV
		return []string{trimRight(line)}, nil
	}

	c.head = fieldAt(line, 0, epochSVListIndex)
	c.clockField = strings.TrimSpace(fieldAt(line, clockOffsetIndex, rinex.ClockOffsetSpec.Width))
	c.desc = epochDescriptor{flag: flag, numSV: numSV}

	count := min(numSV, svsPerEpochLine)
	svs, err := parseSVList(fieldAt(line, epochSVListIndex, count*svFieldWidth), count)
	if err != nil {
		return nil, err
	}
	c.desc.svs = svs

	if numSV > len(c.desc.svs) {
		c.state = cstateEpochCont
		return nil, nil
	}

	return c.emitEpoch()
}

func (c *Compressor) epochContLine(line string) ([]string, error) {
	count := min(c.desc.numSV-len(c.desc.svs), svsPerEpochLine)
	svs, err := parseSVList(fieldAt(line, epochSVListIndex, count*svFieldWidth), count)
	if err != nil {
		c.resync()
		return nil, err
	}
	c.desc.svs = append(c.desc.svs, svs...)

	if len(c.desc.svs) < c.desc.numSV {
		return nil, nil
	}

	return c.emitEpoch()
}

// emitEpoch runs once the full satellite list is in hand: it diffs the
// canonical epoch descriptor and the clock offset, then switches to
// per-satellite observation lines.
func (c *Compressor) emitEpoch() ([]string, error) {
	c.epochCount++
	if c.cfg.pruneAfter > 0 {
		c.registry.Prune(c.epochCount, uint64(c.cfg.pruneAfter))
	}
	c.curSVs = newSVSet(c.desc.svs)

	buf := pool.GetLineBuffer()
	defer pool.PutLineBuffer(buf)
	buf.WriteString(c.head)
	for _, sv := range c.desc.svs {
		buf.WriteString(sv.String())
	}

	krn, _, err := c.registry.Text(EpochKey(), c.epochCount)
	if err != nil {
		return nil, err
	}
	// The descriptor diff keeps its trailing markers so the recovered line
	// has the exact descriptor length.
	descDiff := krn.Difference(buf.String())

	clockLine := c.compressClock()

	c.svIndex = 0
	c.obsLines = c.obsLines[:0]
	if c.desc.numSV == 0 {
		c.finishEpoch()
	} else {
		c.state = cstateData
	}

	return []string{descDiff, clockLine}, nil
}

func (c *Compressor) compressClock() string {
	if c.clockField == "" {
		return ""
	}

	scaled, err := c.clock.Parse(c.clockField)
	if err != nil {
		c.logField(rinex.SV{}, "clock", err)
		return ""
	}

	krn, seen, err := c.registry.Numeric(ClockOffsetKey(), c.epochCount)
	if err != nil {
		c.logField(rinex.SV{}, "clock", err)
		return ""
	}

	if !krn.Initialized() || seen < c.epochCount-1 {
		if err := krn.Reset(c.cfg.defaultOrder, scaled); err != nil {
			c.logField(rinex.SV{}, "clock", err)
			return ""
		}

		return formatReinitToken(c.cfg.defaultOrder, scaled)
	}

	diff, err := krn.Difference(scaled)
	if err != nil {
		c.logField(rinex.SV{}, "clock", err)
		return ""
	}

	return strconv.FormatInt(diff, 10)
}

// obsLine buffers one observation line; once the satellite's wrapped group
// is complete it compresses the whole group into a single line.
func (c *Compressor) obsLine(line string) ([]string, error) {
	sv := c.desc.svs[c.svIndex]

	codes, err := c.contract.ObservablesFor(sv.System)
	if err != nil {
		// Without the observable list the group's line count is unknown;
		// drop the epoch and pick up at the next descriptor.
		c.resync()
		return nil, err
	}

	c.obsLines = append(c.obsLines, line)
	if len(c.obsLines) < (len(codes)+obsPerLine-1)/obsPerLine {
		return nil, nil
	}

	compressed := c.compressSV(sv, codes)
	c.obsLines = c.obsLines[:0]
	c.advance()

	return []string{compressed}, nil
}

func (c *Compressor) compressSV(sv rinex.SV, codes []string) string {
	arcBreak := !c.prevSVs.has(sv)

	full := c.joinObsLines(codes)

	tokens := make([]string, len(codes))
	flagsCur := make([]byte, len(codes)*obsFlagWidth)
	offset := 0
	for i, code := range codes {
		spec := c.contract.Spec(code)
		slot := fieldAt(full, offset, spec.Width+obsFlagWidth)
		offset += spec.Width + obsFlagWidth

		flagsCur[i*obsFlagWidth] = slot[spec.Width]
		flagsCur[i*obsFlagWidth+1] = slot[spec.Width+1]

		valText := slot[:spec.Width]
		if strings.TrimSpace(valText) == "" {
			continue // no observation this epoch
		}

		scaled, err := NewLineCodec(spec).Parse(valText)
		if err != nil {
			c.logField(sv, code, err)
			continue
		}

		krn, seen, err := c.registry.Numeric(ObservationKey(sv, code), c.epochCount)
		if err != nil {
			c.logField(sv, code, err)
			continue
		}

		// A fresh arc, an uninitialized kernel or a gap in the field's own
		// history all force a re-initialization token.
		if arcBreak || !krn.Initialized() || seen < c.epochCount-1 {
			if err := krn.Reset(c.cfg.defaultOrder, scaled); err != nil {
				c.logField(sv, code, err)
				continue
			}
			tokens[i] = formatReinitToken(c.cfg.defaultOrder, scaled)

			continue
		}

		diff, err := krn.Difference(scaled)
		if err != nil {
			c.logField(sv, code, err)
			continue
		}
		tokens[i] = strconv.FormatInt(diff, 10)
	}

	flagDiff := make([]byte, len(flagsCur))
	for j := range flagsCur {
		key := FlagKey(sv, codes[j/obsFlagWidth], flagKindAt(j))
		krn, _, err := c.registry.Text(key, c.epochCount)
		if err != nil {
			c.logField(sv, codes[j/obsFlagWidth], err)
			flagDiff[j] = ' '

			continue
		}
		if arcBreak {
			krn.Reset("")
		}
		flagDiff[j] = krn.Difference(string(flagsCur[j]))[0]
	}

	return trimRight(strings.Join(tokens, " ") + " " + string(flagDiff))
}

// joinObsLines concatenates the buffered wrapped lines into one record,
// padding each line to its chunk's exact width first.
func (c *Compressor) joinObsLines(codes []string) string {
	buf := pool.GetLineBuffer()
	defer pool.PutLineBuffer(buf)

	for li, line := range c.obsLines {
		chunkWidth := 0
		for i := li * obsPerLine; i < min((li+1)*obsPerLine, len(codes)); i++ {
			chunkWidth += c.contract.Spec(codes[i]).Width + obsFlagWidth
		}
		buf.WriteString(fieldAt(line, 0, chunkWidth))
	}

	return buf.String()
}

func (c *Compressor) advance() {
	c.svIndex++
	if c.svIndex >= c.desc.numSV {
		c.finishEpoch()
	}
}

func (c *Compressor) finishEpoch() {
	c.prevSVs = c.curSVs
	c.curSVs = nil
	c.state = cstateAwaitEpoch
}

func (c *Compressor) resync() {
	c.desc = epochDescriptor{}
	c.obsLines = c.obsLines[:0]
	c.state = cstateAwaitEpoch
}

func (c *Compressor) logField(sv rinex.SV, code string, err error) {
	fields := logrus.Fields{"epoch": c.epochCount, "observable": code}
	if !sv.IsZero() {
		fields["sv"] = sv.String()
	}
	c.cfg.logger.WithFields(fields).WithError(err).Warn("field skipped")
}
