// Package alias builds the ranked lookup of entity surface forms used for
// automatic linking.
//
// An Index is rebuilt wholesale from a catalog snapshot (world items with
// their aliases, plus candidate mentions) and is read-only afterwards.
// Entries are ordered by descending surface-form length so that a longer
// alias such as "Lake Watery" is always tried before "Lake".
package alias
