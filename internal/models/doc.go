// Package models defines domain entities and persistence interfaces for the tidalbridge catalog service.
//
// The package contains two categories of types:
//
// 1. Catalog entities backed by the database:
//   - [Artist] : a catalog artist keyed by its TIDAL id
//   - [Album] : a catalog album owned by exactly one artist
//
// 2. Value types attached to entities:
//   - [SyncState] : whether an entity is managed by sync runs or owned by manual edits
//   - [ReleaseDate] : an optional calendar date parsed leniently from the wire
//
// All entities implement the Model interface providing validation; the
// Repository[T] interface defines the CRUD surface repositories expose.
package models
