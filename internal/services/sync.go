package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/blinky-companion/sync-agent/internal/models"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
	"github.com/blinky-companion/sync-agent/pkg/payload"
)

// Coordinator is what the sync service needs from the connection coordinator.
type Coordinator interface {
	CurrentState() models.ConnectionState
	SyncEnabled() bool
	DeviceID() string
	Send(ctx context.Context, data []byte) error
}

type SyncHistory interface {
	Insert(ctx context.Context, record models.SyncRecord) error
	List(ctx context.Context, limit uint64) ([]models.SyncRecord, error)
}

type SyncObserver interface {
	ObserveSync(result models.SyncResult)
}

type SyncService struct {
	coordinator Coordinator
	networks    *NetworkService
	builder     *payload.Builder
	history     SyncHistory
	observers   []SyncObserver
	now         func() time.Time
	mu          sync.Mutex
}

func NewSyncService(coordinator Coordinator, networks *NetworkService, builder *payload.Builder, history SyncHistory) *SyncService {
	return &SyncService{
		coordinator: coordinator,
		networks:    networks,
		builder:     builder,
		history:     history,
		now:         time.Now,
	}
}

func (s *SyncService) WithClock(now func() time.Time) *SyncService {
	s.now = now
	return s
}

func (s *SyncService) WithObserver(o SyncObserver) *SyncService {
	s.observers = append(s.observers, o)
	return s
}

// Sync sends the UI snapshot to the device.
//
// Nothing happens unless the device is ready. An empty SSID in req falls back
// to the displayed network, a nil password to the stored secret. The
// credential is written before the payload is sent; a failed write is
// reported in the result and does not prevent the send. A failed send is
// reported in the result with status failed, not as an error.
func (s *SyncService) Sync(ctx context.Context, req models.SyncRequest) (*models.SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.coordinator.SyncEnabled() {
		return nil, srvErrors.NewInvalidStateError(s.coordinator.CurrentState().String())
	}

	ssid, password := s.resolveNetwork(req)

	now := s.now()
	p, err := s.builder.Build(req.LedOn, now, req.AlarmHour, req.AlarmMinute, ssid, password)
	if err != nil {
		return nil, err
	}

	data, err := payload.Serialize(p)
	if err != nil {
		return nil, err
	}

	result := &models.SyncResult{
		ID:                  uuid.New(),
		DeviceID:            s.coordinator.DeviceID(),
		Payload:             p,
		CredentialPersisted: true,
		CreatedAt:           now,
	}

	if err := s.networks.SaveCredential(ssid, password); err != nil {
		zap.S().Named("sync").Errorw("failed to persist credential", "ssid", ssid, "error", err)
		result.CredentialPersisted = false
		result.CredentialError = err
	}

	if err := s.coordinator.Send(ctx, data); err != nil {
		zap.S().Named("sync").Errorw("failed to send sync payload", "device", result.DeviceID, "error", err)
		result.Status = models.SyncStatusFailed
		result.Error = err
	} else {
		result.Status = models.SyncStatusSent
		zap.S().Named("sync").Infow("sync payload sent", "id", result.ID, "device", result.DeviceID, "ssid", ssid)
	}

	s.record(ctx, result)
	for _, o := range s.observers {
		o.ObserveSync(*result)
	}

	return result, nil
}

// History returns the most recent sync records, newest first.
func (s *SyncService) History(ctx context.Context, limit uint64) ([]models.SyncRecord, error) {
	if s.history == nil {
		return []models.SyncRecord{}, nil
	}
	return s.history.List(ctx, limit)
}

func (s *SyncService) resolveNetwork(req models.SyncRequest) (string, string) {
	ssid := req.SSID
	var password string

	switch {
	case ssid == "":
		sel := s.networks.Current()
		ssid, password = sel.SSID, sel.Password
	default:
		password, _ = s.networks.Lookup(ssid)
	}

	if req.Password != nil {
		password = *req.Password
	}
	return ssid, password
}

func (s *SyncService) record(ctx context.Context, result *models.SyncResult) {
	if s.history == nil {
		return
	}

	rec := models.SyncRecord{
		ID:          result.ID,
		DeviceID:    result.DeviceID,
		SSID:        result.Payload.SSID,
		LedOn:       result.Payload.LedOn,
		AlarmHour:   int(result.Payload.AlarmHour),
		AlarmMinute: int(result.Payload.AlarmMinute),
		CurrentTime: int64(result.Payload.CurrentTimeSeconds),
		Status:      result.Status,
		CreatedAt:   result.CreatedAt,
	}
	if result.Error != nil {
		rec.Error = result.Error.Error()
	}

	if err := s.history.Insert(ctx, rec); err != nil {
		zap.S().Named("sync").Warnw("failed to record sync history", "id", result.ID, "error", err)
	}
}
