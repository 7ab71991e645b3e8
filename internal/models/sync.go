package models

import (
	"time"

	"github.com/google/uuid"
)

// SyncPayload is built fresh for every sync action and never persisted.
type SyncPayload struct {
	LedOn              bool
	CurrentTimeSeconds uint64
	AlarmHour          uint8
	AlarmMinute        uint8
	SSID               string
	Password           string
}

// SyncRequest is the UI snapshot at the moment the user triggers a sync.
// Empty SSID and nil Password fall back to the current network selection.
type SyncRequest struct {
	LedOn       bool
	AlarmHour   int
	AlarmMinute int
	SSID        string
	Password    *string
}

type SyncStatus string

const (
	SyncStatusSent   SyncStatus = "sent"
	SyncStatusFailed SyncStatus = "failed"
)

// SyncResult is what a sync action reports back.
type SyncResult struct {
	ID                  uuid.UUID
	DeviceID            string
	Payload             SyncPayload
	Status              SyncStatus
	CredentialPersisted bool
	CredentialError     error
	Error               error
	CreatedAt           time.Time
}

// SyncRecord is the persisted history of a sync action. It never carries the password.
type SyncRecord struct {
	ID          uuid.UUID
	DeviceID    string
	SSID        string
	LedOn       bool
	AlarmHour   int
	AlarmMinute int
	CurrentTime int64
	Status      SyncStatus
	Error       string
	CreatedAt   time.Time
}

// Device is a companion device the agent has connected to.
type Device struct {
	ID              string
	LastConnectedAt time.Time
}
