// Package journal records engine sessions in SQLite.
//
// A session is one run of the engine. Every funneled input is stored with
// its position in the session, followed by the non-NOOP results the
// processor produced for it. Payloads are canonical JSON from the event
// codec, so two runs that behaved the same store byte-identical rows.
//
// The journal is append-only. Writes use ON CONFLICT DO NOTHING, so
// recording the same input twice is harmless.
package journal
