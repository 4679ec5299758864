package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/model"
)

// ErrDeviceNotFound is returned when a device id does not exist.
var ErrDeviceNotFound = errors.New("device not found")

// DeviceRepo provides CRUD operations for the devices table.  The table is
// the durable mirror of the ledger's device registry; status writes follow
// ledger transitions so the floor map survives a restart.  All timestamps
// are stored in UTC.
type DeviceRepo struct {
	db *sql.DB
}

// NewDeviceRepo returns a new DeviceRepo bound to the given database.
func NewDeviceRepo(db *sql.DB) *DeviceRepo { return &DeviceRepo{db: db} }

const deviceColumns = `id, name, type, hourly_rate, multi_rate, status, created_at, updated_at`

// Create inserts a new device and populates its generated id and
// timestamps on the provided model.
func (r *DeviceRepo) Create(ctx context.Context, d *model.Device) error {
	const q = `INSERT INTO devices (name, type, hourly_rate, multi_rate, status) VALUES (?, ?, ?, ?, ?)`
	var multi decimal.NullDecimal
	if d.MultiRate != nil {
		multi = decimal.NullDecimal{Decimal: *d.MultiRate, Valid: true}
	}
	res, err := r.db.ExecContext(ctx, q, d.Name, d.Type, d.HourlyRate, multi, d.Status.String())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	d.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM devices WHERE id = ?`, d.ID).
		Scan(&d.CreatedAt, &d.UpdatedAt)
}

// GetByID fetches a single device or ErrDeviceNotFound.
func (r *DeviceRepo) GetByID(ctx context.Context, id uint64) (*model.Device, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+deviceColumns+` FROM devices WHERE id = ?`, id)
	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDeviceNotFound
	}
	return d, err
}

// List returns all devices ordered by id.
func (r *DeviceRepo) List(ctx context.Context) ([]model.Device, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+deviceColumns+` FROM devices ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// UpdateStatus mirrors a ledger status transition into the table.
func (r *DeviceRepo) UpdateStatus(ctx context.Context, id uint64, status model.ResourceStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE devices SET status = ? WHERE id = ?`, status.String(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// Delete removes a device row.  Completed session history is unaffected;
// it only carries name/type snapshots.
func (r *DeviceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM devices WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrDeviceNotFound
	}
	return nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDevice(s scanner) (*model.Device, error) {
	var d model.Device
	var multi decimal.NullDecimal
	var status string
	if err := s.Scan(&d.ID, &d.Name, &d.Type, &d.HourlyRate, &multi, &status, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	if multi.Valid {
		m := multi.Decimal
		d.MultiRate = &m
	}
	d.Status = model.ParseResourceStatus(status)
	return &d, nil
}
