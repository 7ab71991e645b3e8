// Package v1 holds the JSON types of the agent API served under /api/v1.
package v1

import "time"

// ConnectionStatusState values.
const (
	ConnectionStatusStateConnecting    = "connecting"
	ConnectionStatusStateInitializing  = "initializing"
	ConnectionStatusStateReady         = "ready"
	ConnectionStatusStateDisconnecting = "disconnecting"
	ConnectionStatusStateDisconnected  = "disconnected"
)

type ConnectionStatus struct {
	State       string  `json:"state"`
	Reason      *string `json:"reason,omitempty"`
	DeviceId    *string `json:"deviceId,omitempty"`
	SyncEnabled bool    `json:"syncEnabled"`
}

type ConnectRequest struct {
	DeviceId string `json:"deviceId" binding:"required"`
}

// ScanResult is delivered by the external wireless scanner, strongest
// network first.
type ScanResult struct {
	Networks []string `json:"networks"`
}

type NetworkSelection struct {
	Display    string `json:"display"`
	Ssid       string `json:"ssid"`
	Password   string `json:"password"`
	Known      bool   `json:"known"`
	Index      int    `json:"index"`
	Candidates int    `json:"candidates"`
}

type KnownNetworks struct {
	Networks   []string `json:"networks"`
	Persistent bool     `json:"persistent"`
}

// SyncRequest is the UI snapshot. Omitted ssid and password fall back to the
// displayed network.
type SyncRequest struct {
	LedOn       bool    `json:"ledOn"`
	AlarmHour   int     `json:"alarmHour"`
	AlarmMinute int     `json:"alarmMinute"`
	Ssid        string  `json:"ssid,omitempty"`
	Password    *string `json:"password,omitempty"`
}

type SyncResult struct {
	Id                  string    `json:"id"`
	DeviceId            string    `json:"deviceId"`
	Status              string    `json:"status"`
	Ssid                string    `json:"ssid"`
	CurrentTime         uint64    `json:"currentTime"`
	CredentialPersisted bool      `json:"credentialPersisted"`
	CredentialError     *string   `json:"credentialError,omitempty"`
	Error               *string   `json:"error,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

type SyncRecord struct {
	Id          string    `json:"id"`
	DeviceId    string    `json:"deviceId"`
	Ssid        string    `json:"ssid"`
	LedOn       bool      `json:"ledOn"`
	AlarmHour   int       `json:"alarmHour"`
	AlarmMinute int       `json:"alarmMinute"`
	CurrentTime int64     `json:"currentTime"`
	Status      string    `json:"status"`
	Error       *string   `json:"error,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SyncHistory struct {
	Syncs []SyncRecord `json:"syncs"`
}
