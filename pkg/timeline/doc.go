// Package timeline extracts tweet records from paginated GraphQL timeline
// responses.
//
// The responses this package handles are opaque, deeply nested and
// heterogeneous: the paginated-update container can sit at any depth of the
// payload, its instructions come in several incompatible kinds, and entries
// nest entities behind varying shapes (plain entries, single-entry
// replacements, grouped modules such as threads).
//
// The pipeline is:
//   - Locate finds the container exposing an `instructions` array.
//   - Extract dispatches each instruction, expands grouping wrappers
//     breadth-first and resolves leaf entries to entity nodes.
//   - Flatten turns an entity node into a normalized Record.
//
// All traversal is done with gjson over the raw payload, so unknown or
// partially missing shapes degrade to empty values instead of errors.
package timeline
