package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/urmzd/switchboard/pkg/device"
)

// SeedDevices is the demo inventory created on first run.
var SeedDevices = []device.Device{
	{Name: "Living Room Lamp", Description: "Floor lamp by the sofa", Type: "light", Value: 0},
	{Name: "Kitchen Plug", Description: "Kettle outlet", Type: "plug", Value: 0},
	{Name: "Hallway Sensor", Description: "Temperature, degrees C", Status: true, Type: "sensor", Value: 21.5},
	{Name: "Bedroom Heater", Description: "Oil radiator", Type: "heater", Value: 18},
}

// NeedsBootstrap returns true if the database has no devices yet.
func (db *DB) NeedsBootstrap(ctx context.Context) (bool, error) {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM devices`).Scan(&count); err != nil {
		return false, err
	}
	return count == 0, nil
}

// Bootstrap seeds the demo devices if the devices table is empty.
func (db *DB) Bootstrap(ctx context.Context) error {
	needs, err := db.NeedsBootstrap(ctx)
	if err != nil {
		return fmt.Errorf("failed to check devices: %w", err)
	}
	if !needs {
		return nil
	}

	return db.Tx(ctx, func(tx *sql.Tx) error {
		for _, d := range SeedDevices {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO devices (name, description, status, type, value)
				VALUES (?, ?, ?, ?, ?)
			`, d.Name, d.Description, d.Status, d.Type, d.Value); err != nil {
				return fmt.Errorf("failed to seed device %q: %w", d.Name, err)
			}
		}
		return nil
	})
}
