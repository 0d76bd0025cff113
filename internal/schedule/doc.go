// Package schedule provides the deferral mechanisms of the editing engine.
//
// All engine work happens on one goroutine. Two kinds of deferred work are
// supported:
//
//   - timers (AfterFunc), used through Debouncer to coalesce bursts of
//     typing or pointer movement into one downstream action
//   - frame tasks (NextFrame), used through Frame so that highlight
//     repaints and scroll adjustments run after the triggering mutation
//     has completed
//
// Loop is the production executor; Manual is a virtual-clock executor for
// tests. Debouncer tags every scheduled callback with a generation number so
// a superseded callback can cheaply detect that it is stale and do nothing.
package schedule
