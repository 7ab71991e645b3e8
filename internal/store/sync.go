package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/blinky-companion/sync-agent/internal/models"
)

const defaultHistoryLimit = 50

type SyncStore struct {
	db QueryInterceptor
}

func NewSyncStore(db QueryInterceptor) *SyncStore {
	return &SyncStore{db: db}
}

func (s *SyncStore) Insert(ctx context.Context, r models.SyncRecord) error {
	query, args, err := sq.Insert("sync_history").
		Columns("id", "device_id", "ssid", "led_on", "alarm_hour", "alarm_minute", "device_time", "status", "error_message", "created_at").
		Values(r.ID.String(), r.DeviceID, r.SSID, r.LedOn, r.AlarmHour, r.AlarmMinute, r.CurrentTime, string(r.Status), r.Error, r.CreatedAt.UTC()).
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// List returns up to limit records, newest first. Zero means the default limit.
func (s *SyncStore) List(ctx context.Context, limit uint64) ([]models.SyncRecord, error) {
	if limit == 0 {
		limit = defaultHistoryLimit
	}

	query, args, err := sq.Select("id", "device_id", "ssid", "led_on", "alarm_hour", "alarm_minute", "device_time", "status", "error_message", "created_at").
		From("sync_history").
		OrderBy("created_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []models.SyncRecord{}
	for rows.Next() {
		var (
			r      models.SyncRecord
			id     string
			status string
		)
		if err := rows.Scan(&id, &r.DeviceID, &r.SSID, &r.LedOn, &r.AlarmHour, &r.AlarmMinute, &r.CurrentTime, &status, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		if r.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		r.Status = models.SyncStatus(status)
		records = append(records, r)
	}
	return records, rows.Err()
}
