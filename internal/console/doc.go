// Package console provides terminal stand-ins for the desktop collaborators:
// a raw-mode key source, a one-line screen the injectors write to, an
// in-memory clipboard, a notification printer and a numbered prompt used
// for match selection and choice variables.
package console
