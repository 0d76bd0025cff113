// Package host defines what the editing engine reports to its host
// application and how those reports are delivered.
//
// Every report is fire-and-forget. A host implements only the capability
// interfaces it cares about (DocumentChangedHandler, ActivityHandler, ...);
// Bridge delivers each report to the capability if present and otherwise
// logs and skips it, so a partial host never blocks editing.
//
// JSONLines is a host that writes every report as one JSON object per line,
// for tools and for hosts living in another process.
package host
