// Package match loads match files and serves them to the engine.
//
// Match files are YAML documents with a list of matches and an optional list
// of global variables. Each file is validated against an embedded CUE schema
// before it is decoded. A successful load produces an immutable Store; the
// engine reads the current Store through a Holder, and reloading swaps in a
// new Store instead of mutating the old one.
package match
