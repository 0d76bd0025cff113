// Package tui is a terminal front end for an editing session.
//
// Editor draws the document on a tcell screen and feeds keyboard, mouse
// and focus events into a session.Session. It is also the session's View,
// painting the find highlight layers, and a host for link interactions,
// save requests and diagnostics, which it shows on the status line.
//
// Text is laid out one document line per screen row without wrapping.
// Column widths come from grapheme clusters (github.com/rivo/uniseg), so
// combining marks and wide characters occupy the right number of cells.
package tui
