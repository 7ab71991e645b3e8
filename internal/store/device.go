package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/blinky-companion/sync-agent/internal/models"
	srvErrors "github.com/blinky-companion/sync-agent/pkg/errors"
)

type DeviceStore struct {
	db QueryInterceptor
}

func NewDeviceStore(db QueryInterceptor) *DeviceStore {
	return &DeviceStore{db: db}
}

// Touch records that the agent reached deviceID at the given time.
func (s *DeviceStore) Touch(ctx context.Context, deviceID string, at time.Time) error {
	query, args, err := sq.Insert("devices").
		Columns("id", "last_connected_at").
		Values(deviceID, at.UTC()).
		Suffix("ON CONFLICT (id) DO UPDATE SET last_connected_at = EXCLUDED.last_connected_at").
		ToSql()
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, query, args...)
	return err
}

// Last returns the device the agent was most recently ready with.
func (s *DeviceStore) Last(ctx context.Context) (*models.Device, error) {
	query, args, err := sq.Select("id", "last_connected_at").
		From("devices").
		OrderBy("last_connected_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, err
	}

	var d models.Device
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&d.ID, &d.LastConnectedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, srvErrors.NewDeviceNotFoundError()
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}
