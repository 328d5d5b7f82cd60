package hatanaka

import (
	"fmt"

	"github.com/crxkit/crinex/errs"
	"github.com/crxkit/crinex/internal/hash"
	"github.com/crxkit/crinex/rinex"
)

// FieldKind discriminates the field identities a session tracks.
type FieldKind uint8

const (
	// FieldEpoch is the epoch/satellite-list descriptor line.
	FieldEpoch FieldKind = iota + 1
	// FieldClockOffset is the receiver clock offset.
	FieldClockOffset
	// FieldObservation is one (satellite, observable) numeric field.
	FieldObservation
	// FieldLLI is the loss-of-lock flag column of one observation.
	FieldLLI
	// FieldSNR is the signal-strength flag column of one observation.
	FieldSNR
)

func (k FieldKind) String() string {
	switch k {
	case FieldEpoch:
		return "epoch"
	case FieldClockOffset:
		return "clock"
	case FieldObservation:
		return "obs"
	case FieldLLI:
		return "lli"
	case FieldSNR:
		return "snr"
	default:
		return "unknown"
	}
}

// FieldKey identifies one kernel-owning field. Equality is by value.
type FieldKey struct {
	Kind FieldKind
	SV   rinex.SV
	Code string
}

// EpochKey returns the key of the epoch descriptor text kernel.
func EpochKey() FieldKey {
	return FieldKey{Kind: FieldEpoch}
}

// ClockOffsetKey returns the key of the clock offset numeric kernel.
func ClockOffsetKey() FieldKey {
	return FieldKey{Kind: FieldClockOffset}
}

// ObservationKey returns the key of one (satellite, observable) field.
func ObservationKey(sv rinex.SV, code string) FieldKey {
	return FieldKey{Kind: FieldObservation, SV: sv, Code: code}
}

// FlagKey returns the key of one flag column; kind must be FieldLLI or
// FieldSNR.
func FlagKey(sv rinex.SV, code string, kind FieldKind) FieldKey {
	return FieldKey{Kind: kind, SV: sv, Code: code}
}

// String renders a stable textual identity, also used for hashing and logs.
func (k FieldKey) String() string {
	switch k.Kind {
	case FieldEpoch, FieldClockOffset:
		return k.Kind.String()
	default:
		return k.Kind.String() + "/" + k.SV.String() + "/" + k.Code
	}
}

// ID returns the 64-bit registry identity of the key.
func (k FieldKey) ID() uint64 {
	return hash.ID(k.String())
}

type fieldEntry struct {
	key      FieldKey
	numeric  *NumericKernel
	text     *TextKernel
	lastSeen uint64
}

// FieldRegistry owns one kernel per field key for the lifetime of a session.
// Entries are created lazily on first sight and can be pruned once their
// satellite has been absent for a configured number of epochs. The registry
// is exclusively owned by one session and is not safe for concurrent use.
type FieldRegistry struct {
	entries map[uint64]*fieldEntry
}

// NewFieldRegistry creates an empty registry.
func NewFieldRegistry() *FieldRegistry {
	return &FieldRegistry{entries: make(map[uint64]*fieldEntry)}
}

// Len returns the number of live entries.
func (r *FieldRegistry) Len() int {
	return len(r.entries)
}

func (r *FieldRegistry) entry(key FieldKey, epoch uint64) (*fieldEntry, uint64, error) {
	id := key.ID()
	e, ok := r.entries[id]
	if !ok {
		e = &fieldEntry{key: key}
		r.entries[id] = e
	} else if e.key != key {
		return nil, 0, fmt.Errorf("%w: %q and %q share id 0x%016x", errs.ErrHashCollision, e.key, key, id)
	}

	seen := e.lastSeen
	e.lastSeen = epoch

	return e, seen, nil
}

// Numeric returns the numeric kernel for key, creating it (uninitialized) on
// first sight. The second return value is the epoch the key was last seen at
// before this call, zero if never.
func (r *FieldRegistry) Numeric(key FieldKey, epoch uint64) (*NumericKernel, uint64, error) {
	e, seen, err := r.entry(key, epoch)
	if err != nil {
		return nil, 0, err
	}
	if e.numeric == nil {
		e.numeric = NewNumericKernel()
	}

	return e.numeric, seen, nil
}

// Text returns the text kernel for key, creating it (empty) on first sight.
// The second return value is the epoch the key was last seen at before this
// call, zero if never.
func (r *FieldRegistry) Text(key FieldKey, epoch uint64) (*TextKernel, uint64, error) {
	e, seen, err := r.entry(key, epoch)
	if err != nil {
		return nil, 0, err
	}
	if e.text == nil {
		e.text = NewTextKernel()
	}

	return e.text, seen, nil
}

// Prune drops per-satellite entries not seen for more than maxAbsence epochs
// and returns how many were removed. Structural entries (epoch descriptor,
// clock offset) are never pruned. Pruning bounds memory on long streams with
// changing constellations; a pruned satellite can only return as an arc
// break, so dropping its state is always safe.
func (r *FieldRegistry) Prune(current, maxAbsence uint64) int {
	pruned := 0
	for id, e := range r.entries {
		switch e.key.Kind {
		case FieldEpoch, FieldClockOffset:
			continue
		}
		if current-e.lastSeen > maxAbsence {
			delete(r.entries, id)
			pruned++
		}
	}

	return pruned
}
