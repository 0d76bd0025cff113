// Package session implements the edit-coordination layer.
//
// A Session owns one document together with the alias index built from the
// current catalog, the find engine over that document and the bridge to the
// host application. Every edit goes through the session so that link
// integrity is repaired before anything else observes the new text:
//
//  1. markers touched by the edit are split or unwrapped (package linker)
//  2. the find engine is told the text changed
//  3. a debounced DocumentChanged report is scheduled and a typing ping is
//     sent right away
//
// Pointer hover is reported after a short intent delay; leaving a link or
// moving to another one ends the hover immediately.
//
// A Session is not safe for concurrent use. All calls, and all callbacks
// fired by its scheduler, must happen on one goroutine (see schedule.Loop).
package session
