// Package render produces expansion bodies from templates.
//
// A Template owns a body and an ordered list of local variables. Rendering
// first computes a safe evaluation order over the locals and the visible
// global variables (see ResolveOrder), evaluates each variable with its
// extension, and finally substitutes {{name}} and {{name.field}} references
// in the body.
//
// Failures are typed: circular dependencies, missing variables, unknown
// extensions, failing extensions and user aborts each carry their own code
// so the caller can turn them into the right pipeline outcome.
package render
