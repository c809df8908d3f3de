package models

import "encoding/json"

// SyncState records which write path owns an entity's mutable fields.
//
// SyncManaged entities are overwritten freely by reconciliation runs.
// ManuallyOwned entities were last written through a manual edit and sync
// runs must leave them untouched. There is no transition back from
// ManuallyOwned to SyncManaged inside the sync pipeline; only an explicit
// external edit path could clear the flag.
type SyncState int

const (
	SyncManaged SyncState = iota
	ManuallyOwned
)

// StateFromFlag converts the persisted manually_modified column value.
func StateFromFlag(manuallyModified bool) SyncState {
	if manuallyModified {
		return ManuallyOwned
	}
	return SyncManaged
}

// Flag returns the value stored in the manually_modified column.
func (s SyncState) Flag() bool {
	return s == ManuallyOwned
}

func (s SyncState) String() string {
	if s == ManuallyOwned {
		return "manually_owned"
	}
	return "sync_managed"
}

// MarshalJSON encodes the state by name rather than ordinal.
func (s SyncState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}
