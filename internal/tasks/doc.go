// Package tasks orchestrates reconciliation runs against the catalog API.
//
// # Core Operation
//
// [Engine.SyncArtistsAndAlbums] executes one reconciliation run:
//
//  1. Search tracks for the configured query and extract the unique artists
//     behind them via the catalog client.
//  2. For each candidate artist, create it if absent, update it if sync
//     still owns it, or leave it untouched when a manual edit claimed it.
//  3. Fetch the artist's albums and reconcile each one under the same
//     ownership rule, denormalizing the artist's current name onto the
//     album row.
//
// A failure while processing one artist is logged and contained; the run
// continues with the next candidate. Run-level failures from an automatic
// trigger are logged and swallowed so a bad night never crashes the
// scheduler.
//
// # Scheduling
//
// [Scheduler] wires the engine to an optional startup run and a recurring
// interval trigger, both honoring context cancellation.
package tasks
