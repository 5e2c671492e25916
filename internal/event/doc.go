// Package event defines the events that flow through the expansion engine.
//
// An Event pairs a SourceID with a Type. The SourceID is issued once by the
// Sequencer when an external input is observed and is inherited, never
// regenerated, by every event derived from that input. It is the correlation
// key used by the staleness filters in the processor.
//
// Type is a closed union. Input types come from collaborators (keyboard,
// mouse, hotkeys, UI actions), internal types are synthesized by processor
// stages, and effect types are consumed by the dispatcher.
//
// Payloads serialize to canonical JSON (sorted keys, NFC strings, no HTML
// escaping) so journaled sessions and golden traces compare byte-for-byte.
package event
