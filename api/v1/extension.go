package v1

import (
	"github.com/blinky-companion/sync-agent/internal/models"
)

func NewConnectionStatus(m models.ConnectionStatus) ConnectionStatus {
	s := ConnectionStatus{
		State:       string(m.State.State),
		SyncEnabled: m.SyncEnabled,
	}
	if m.State.Reason != models.DisconnectReasonNone {
		reason := string(m.State.Reason)
		s.Reason = &reason
	}
	if m.DeviceID != "" {
		id := m.DeviceID
		s.DeviceId = &id
	}
	return s
}

// NewNetworkSelection fills Display with the "no wifi found" label when no
// candidate is selectable.
func NewNetworkSelection(m models.NetworkSelection) NetworkSelection {
	if m.Empty() {
		return NetworkSelection{Display: models.NoNetworkFound}
	}
	return NetworkSelection{
		Display:    m.SSID,
		Ssid:       m.SSID,
		Password:   m.Password,
		Known:      m.Known,
		Index:      m.Index,
		Candidates: m.Candidates,
	}
}

func (r SyncRequest) ToModel() models.SyncRequest {
	return models.SyncRequest{
		LedOn:       r.LedOn,
		AlarmHour:   r.AlarmHour,
		AlarmMinute: r.AlarmMinute,
		SSID:        r.Ssid,
		Password:    r.Password,
	}
}

// NewSyncResult never carries the password.
func NewSyncResult(m models.SyncResult) SyncResult {
	r := SyncResult{
		Id:                  m.ID.String(),
		DeviceId:            m.DeviceID,
		Status:              string(m.Status),
		Ssid:                m.Payload.SSID,
		CurrentTime:         m.Payload.CurrentTimeSeconds,
		CredentialPersisted: m.CredentialPersisted,
		CreatedAt:           m.CreatedAt,
	}
	if m.CredentialError != nil {
		e := m.CredentialError.Error()
		r.CredentialError = &e
	}
	if m.Error != nil {
		e := m.Error.Error()
		r.Error = &e
	}
	return r
}

func NewSyncHistory(records []models.SyncRecord) SyncHistory {
	h := SyncHistory{Syncs: make([]SyncRecord, 0, len(records))}
	for _, m := range records {
		r := SyncRecord{
			Id:          m.ID.String(),
			DeviceId:    m.DeviceID,
			Ssid:        m.SSID,
			LedOn:       m.LedOn,
			AlarmHour:   m.AlarmHour,
			AlarmMinute: m.AlarmMinute,
			CurrentTime: m.CurrentTime,
			Status:      string(m.Status),
			CreatedAt:   m.CreatedAt,
		}
		if m.Error != "" {
			e := m.Error
			r.Error = &e
		}
		h.Syncs = append(h.Syncs, r)
	}
	return h
}
