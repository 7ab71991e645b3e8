package store

import "database/sql"

// Store gives access to the session repositories: known devices and sync
// history. Credentials never go here; they live in the encrypted credential
// file.
type Store struct {
	db     *sql.DB
	device *DeviceStore
	sync   *SyncStore
}

func NewStore(db *sql.DB) *Store {
	qi := newQueryInterceptor(db)
	return &Store{
		db:     db,
		device: NewDeviceStore(qi),
		sync:   NewSyncStore(qi),
	}
}

func (s *Store) Device() *DeviceStore {
	return s.device
}

func (s *Store) Sync() *SyncStore {
	return s.sync
}

func (s *Store) Close() error {
	return s.db.Close()
}
