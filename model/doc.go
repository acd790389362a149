// Package model defines core types used throughout ledgerdb.
//
// # Identity Types
//
//   - ID: Stable, auto-incrementing record identifier (uint64). IDs are never
//     reused, not even after the record is deleted.
//
// # Data Types
//
//   - Fields: The validated field tuple of a transaction record
//   - Record: Fields bound to their ID
//   - Patch: Partial update applied on top of existing Fields
//
// # Patch Builder
//
// Use the fluent API to construct patches:
//
//	p := model.NewPatch().
//	    WithToken("ETH").
//	    WithVolume(3.5).
//	    Build()
package model
