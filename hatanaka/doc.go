// Package hatanaka implements the Hatanaka differential codec for RINEX
// observation records (RINEX ⇄ Compact RINEX).
//
// The codec is built from two stateful kernels and a per-epoch orchestration
// layer:
//
//   - NumericKernel transmits each numeric observation field as an n-th order
//     integer difference against that field's own history.
//   - TextKernel transmits free-text fields (epoch descriptors, LLI/SNR flag
//     columns) as a column-wise overlay diff against the previous text.
//   - Compressor and Decompressor own one kernel per field for the session's
//     lifetime through a FieldRegistry, walk the satellite/observable grid
//     supplied by the header contract, and apply the re-initialization
//     protocol (the "<order>&<value>" token) on first sight and arc breaks.
//
// Both directions are exact: decompressing a compressed record reproduces
// the canonical form of the original lines (right-padding trimmed, satellite
// identifiers zero-padded). Sessions are single-goroutine state
// machines; no kernel is ever shared between sessions.
package hatanaka
