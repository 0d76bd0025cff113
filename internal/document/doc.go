// Package document provides the in-memory prose document tree.
//
// A document is a tree built from a closed set of node variants:
//
//   - Text: a run of characters
//   - LineBreak: an explicit line break
//   - Inline: a transparent wrapper, optionally carrying a Link
//   - Block: a block-level container
//
// Text nodes are flattened, in document order, into a run sequence.
// Carets and match locations are expressed as Position values (run index
// plus byte offset) that are recomputed from the live tree rather than held
// as references into it. Every mutation made through Document advances the
// text-version counter, which downstream caches use for invalidation.
package document
