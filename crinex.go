// Package crinex implements the Hatanaka differential codec for GNSS
// observation records: a lossless, line-oriented transform between plain
// RINEX observation bodies and their compact CRINEX form.
//
// The codec replaces each numeric observation with an n-th order recursive
// difference against that field's own history, and each textual line or
// flag with a positional overlay against its previous value. Fields are
// tracked independently per (satellite, observable) pair, so satellites
// rising and setting mid-record never disturb each other's streams.
//
// # Basic Usage
//
// Compressing an observation body:
//
//	import "github.com/crxkit/crinex"
//
//	contract := &rinex.ObservationContract{
//	    Observables: map[byte][]string{'G': {"L1", "L2", "C1", "P2"}},
//	}
//	compressed, err := crinex.Compress(contract, bodyLines)
//
// And recovering it:
//
//	recovered, err := crinex.Decompress(contract, compressed)
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the hatanaka
// package, which holds the differencing kernels and the streaming
// Compressor/Decompressor sessions. For line-at-a-time processing or
// custom session tuning, use the hatanaka package directly.
package crinex

import (
	"github.com/crxkit/crinex/hatanaka"
	"github.com/crxkit/crinex/rinex"
)

// Compress transforms a whole RINEX observation body into its compressed
// form. Lines are processed in order through a single session; the header
// contract supplies each constellation's observable list.
//
// Parameters:
//   - contract: Observable lists and field widths from the record header
//   - lines: The observation body, one element per line
//   - opts: Optional session tuning (see hatanaka.Option)
//
// Returns the compressed lines, or an error if a line could not be
// processed.
func Compress(contract *rinex.ObservationContract, lines []string, opts ...hatanaka.Option) ([]string, error) {
	session, err := hatanaka.NewCompressor(contract, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		emitted, err := session.CompressLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, emitted...)
	}

	return out, nil
}

// Decompress recovers a RINEX observation body from its compressed form.
// It is the inverse of Compress: feeding Compress's output through a fresh
// session with the same contract reproduces the canonical original lines.
//
// Parameters:
//   - contract: Observable lists and field widths from the record header
//   - lines: The compressed body, one element per line
//   - opts: Optional session tuning (see hatanaka.Option)
//
// Returns the recovered lines, or an error if a line could not be
// processed.
func Decompress(contract *rinex.ObservationContract, lines []string, opts ...hatanaka.Option) ([]string, error) {
	session, err := hatanaka.NewDecompressor(contract, opts...)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		emitted, err := session.DecompressLine(line)
		if err != nil {
			return nil, err
		}
		out = append(out, emitted...)
	}

	return out, nil
}
