package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/urmzd/switchboard/pkg/device"
)

// DeviceStore provides device persistence for the simulator.
type DeviceStore interface {
	List(ctx context.Context) ([]device.Device, error)
	Get(ctx context.Context, id int) (*device.Device, error)
	Create(ctx context.Context, d *device.Device) error
	SetStatus(ctx context.Context, id int, status bool) (*device.Device, error)
}

// Devices returns a DeviceStore for this database.
func (db *DB) Devices() DeviceStore {
	return &deviceStore{db: db}
}

type deviceStore struct {
	db *DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDevice(row rowScanner) (*device.Device, error) {
	d := &device.Device{}
	if err := row.Scan(&d.ID, &d.Name, &d.Description, &d.Status, &d.Type, &d.Value); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *deviceStore) List(ctx context.Context) ([]device.Device, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, status, type, value
		FROM devices ORDER BY id
	`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	devices := []device.Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, *d)
	}
	return devices, rows.Err()
}

func (s *deviceStore) Get(ctx context.Context, id int) (*device.Device, error) {
	d, err := scanDevice(s.db.QueryRowContext(ctx, `
		SELECT id, name, description, status, type, value
		FROM devices WHERE id = ?
	`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, device.ErrNotFound
	}
	return d, err
}

func (s *deviceStore) Create(ctx context.Context, d *device.Device) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO devices (name, description, status, type, value)
		VALUES (?, ?, ?, ?, ?)
	`, d.Name, d.Description, d.Status, d.Type, d.Value)
	if err != nil {
		return fmt.Errorf("failed to create device: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = int(id)
	return nil
}

func (s *deviceStore) SetStatus(ctx context.Context, id int, status bool) (*device.Device, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE devices SET status = ?, updated_at = datetime('now')
		WHERE id = ?
	`, status, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update device: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, device.ErrNotFound
	}
	return s.Get(ctx, id)
}
