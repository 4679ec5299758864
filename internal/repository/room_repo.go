package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/game-station/internal/model"
)

// ErrRoomNotFound is returned when a room id does not exist.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo provides CRUD operations for the rooms table, the durable
// mirror of the ledger's room registry.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, hourly_rate, capacity, occupancy, status, created_at, updated_at`

// Create inserts a new room and populates its generated id and timestamps.
func (r *RoomRepo) Create(ctx context.Context, rm *model.Room) error {
	const q = `INSERT INTO rooms (name, hourly_rate, capacity, occupancy, status) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rm.Name, rm.HourlyRate, rm.Capacity, rm.Occupancy, rm.Status.String())
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rm.ID = uint64(id)
	return r.db.QueryRowContext(ctx, `SELECT created_at, updated_at FROM rooms WHERE id = ?`, rm.ID).
		Scan(&rm.CreatedAt, &rm.UpdatedAt)
}

// GetByID fetches a single room or ErrRoomNotFound.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id)
	rm, err := scanRoom(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	return rm, err
}

// List returns all rooms ordered by id.
func (r *RoomRepo) List(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rm)
	}
	return out, rows.Err()
}

// UpdateState mirrors a ledger transition (status plus current occupancy)
// into the table.
func (r *RoomRepo) UpdateState(ctx context.Context, id uint64, status model.ResourceStatus, occupancy int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE rooms SET status = ?, occupancy = ? WHERE id = ?`,
		status.String(), occupancy, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Delete removes a room row.
func (r *RoomRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRoomNotFound
	}
	return nil
}

func scanRoom(s scanner) (*model.Room, error) {
	var rm model.Room
	var status string
	if err := s.Scan(&rm.ID, &rm.Name, &rm.HourlyRate, &rm.Capacity, &rm.Occupancy, &status, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return nil, err
	}
	rm.Status = model.ParseResourceStatus(status)
	return &rm, nil
}
