// Package config loads xpand settings.
//
// Layers, lowest first: the embedded defaults, platform defaults, the user
// TOML file, and XPAND_SECTION_KEY environment variables
// (XPAND_INJECT_BACKEND=keys sets inject.backend). Durations are written
// as Go duration strings and lists may be given as comma separated
// strings.
package config
