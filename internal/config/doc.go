// Package config provides engine settings and the document load
// configuration.
//
// Settings hold the timing of the deferral mechanisms, find engine limits,
// link preferences and the log level. They are layered, lowest priority
// first:
//
//  1. built-in defaults (Default)
//  2. a TOML settings file (Load)
//  3. INKWELL_* environment variables (ApplyEnv)
//
// A missing settings file is not an error; defaults are used.
//
// Example settings file:
//
//	[logging]
//	level = "debug"
//
//	[timing]
//	doc_changed = "250ms"
//	find_refresh = "60ms"
//
//	[find]
//	highlight_cap = 500
//
//	[preferences]
//	link_follow = "modifierClick"
//	link_visual = "full"
//	highlight_links_while_modifier = true
//
// The document load configuration is the JSON object a host passes when it
// opens a document; ParseLoadConfig reads it.
package config
