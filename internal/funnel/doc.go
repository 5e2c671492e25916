// Package funnel merges the engine's input channels into one ordered
// stream.
//
// Every producer (keyboard detection, UI actions, exit signals, the secure
// input watcher) owns a Source. A Source stamps each payload with a fresh
// id from the shared event.Sequencer, so ids reflect the order in which
// inputs were captured, not the order in which the engine reads them. The
// Funnel waits on all sources and hands the engine one event at a time.
package funnel
