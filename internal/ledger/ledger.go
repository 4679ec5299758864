package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/game-station/internal/model"
)

// Recorder receives finalized sessions.  The production implementation
// appends to the completed_sessions table; tests use an in-memory slice.
// Record must be atomic: either the record is durably appended or an error
// is returned, in which case the session stays active.
type Recorder interface {
	Record(ctx context.Context, s model.CompletedSession) error
}

// reservation is a pending hold on a room.  No cost accrues while a room is
// reserved; billing starts only when the reservation is activated.
type reservation struct {
	Token      string
	RoomID     uint64
	Customer   string
	GuestCount int
	CreatedAt  time.Time
}

type resourceKey struct {
	kind model.ResourceKind
	id   uint64
}

// Ledger is the authoritative in-memory registry of resources, active
// sessions and room reservations.  All mutations go through a single mutex
// so that two concurrent starts on the same resource can never both observe
// it as available; reads return value copies and never expose internal
// state.
type Ledger struct {
	mu           sync.Mutex
	devices      map[uint64]*model.Device
	rooms        map[uint64]*model.Room
	active       map[string]*model.ActiveSession
	byResource   map[resourceKey]string
	reservations map[string]*reservation
	deviceSeq    uint64
	roomSeq      uint64
	recorder     Recorder

	now func() time.Time // overridable in tests
}

// New returns an empty ledger that finalizes sessions through rec.
func New(rec Recorder) *Ledger {
	if rec == nil {
		panic("nil recorder passed to ledger.New")
	}
	return &Ledger{
		devices:      make(map[uint64]*model.Device),
		rooms:        make(map[uint64]*model.Room),
		active:       make(map[string]*model.ActiveSession),
		byResource:   make(map[resourceKey]string),
		reservations: make(map[string]*reservation),
		recorder:     rec,
		now:          time.Now,
	}
}

// RegisterDevice adds or replaces a device in the ledger.  Sessions do not
// survive a restart, so a stored IN_USE or RESERVED status is normalized
// back to AVAILABLE on load.
func (l *Ledger) RegisterDevice(d model.Device) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d.Status == model.StatusInUse || d.Status == model.StatusReserved {
		d.Status = model.StatusAvailable
	}
	l.devices[d.ID] = &d
}

// RegisterRoom adds or replaces a room, normalizing transient statuses the
// same way RegisterDevice does.
func (l *Ledger) RegisterRoom(r model.Room) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if r.Status == model.StatusInUse || r.Status == model.StatusReserved {
		r.Status = model.StatusAvailable
		r.Occupancy = 0
	}
	l.rooms[r.ID] = &r
}

// Device returns a copy of the device with the given id.
func (l *Ledger) Device(id uint64) (model.Device, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.devices[id]
	if !ok {
		return model.Device{}, ErrResourceNotFound
	}
	return *d, nil
}

// Room returns a copy of the room with the given id.
func (l *Ledger) Room(id uint64) (model.Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[id]
	if !ok {
		return model.Room{}, ErrResourceNotFound
	}
	return *r, nil
}

// Devices returns all registered devices ordered by id.
func (l *Ledger) Devices() []model.Device {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Device, 0, len(l.devices))
	for _, d := range l.devices {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Rooms returns all registered rooms ordered by id.
func (l *Ledger) Rooms() []model.Room {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.Room, 0, len(l.rooms))
	for _, r := range l.rooms {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// RemoveDevice deletes a device from the ledger.  Removal is refused while
// a session is running; completed history is unaffected because it only
// carries name/type snapshots.
func (l *Ledger) RemoveDevice(id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.devices[id]
	if !ok {
		return ErrResourceNotFound
	}
	if d.Status == model.StatusInUse {
		return ErrResourceUnavailable
	}
	delete(l.devices, id)
	return nil
}

// RemoveRoom deletes a room unless it is occupied or reserved.
func (l *Ledger) RemoveRoom(id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.rooms[id]
	if !ok {
		return ErrResourceNotFound
	}
	if r.Status == model.StatusInUse || r.Status == model.StatusReserved {
		return ErrResourceUnavailable
	}
	delete(l.rooms, id)
	return nil
}

// StartDeviceSession begins billing on an available device.  The hourly
// rate is resolved by mode: RateMulti requires the device to have a multi
// rate configured, otherwise ErrInvalidConfiguration is returned and the
// device stays available.
func (l *Ledger) StartDeviceSession(deviceID uint64, customer string, mode model.RateMode) (model.ActiveSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.devices[deviceID]
	if !ok {
		return model.ActiveSession{}, ErrResourceNotFound
	}
	if d.Status != model.StatusAvailable {
		return model.ActiveSession{}, ErrResourceUnavailable
	}
	rate := d.HourlyRate
	if mode == model.RateMulti {
		if d.MultiRate == nil {
			return model.ActiveSession{}, ErrInvalidConfiguration
		}
		rate = *d.MultiRate
	} else {
		mode = model.RateSingle
	}

	l.deviceSeq++
	s := &model.ActiveSession{
		ID:           fmt.Sprintf("DS-%d", l.deviceSeq),
		Kind:         model.KindDevice,
		ResourceID:   d.ID,
		ResourceName: d.Name,
		ResourceType: d.Type,
		Customer:     customer,
		RateMode:     mode,
		HourlyRate:   rate,
		StartedAt:    l.now().UTC(),
	}
	d.Status = model.StatusInUse
	l.active[s.ID] = s
	l.byResource[resourceKey{model.KindDevice, d.ID}] = s.ID
	return *s, nil
}

// StartRoomSession begins billing on an available room.  The guest count
// must be within [1, capacity]; rooms bill a flat hourly rate regardless of
// how many guests are inside.
func (l *Ledger) StartRoomSession(roomID uint64, customer string, guests int) (model.ActiveSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.rooms[roomID]
	if !ok {
		return model.ActiveSession{}, ErrResourceNotFound
	}
	if r.Status != model.StatusAvailable {
		return model.ActiveSession{}, ErrResourceUnavailable
	}
	return l.startRoomLocked(r, customer, guests)
}

// startRoomLocked performs the shared room-start work once the caller has
// validated the room's current state.  Caller must hold l.mu.
func (l *Ledger) startRoomLocked(r *model.Room, customer string, guests int) (model.ActiveSession, error) {
	if guests < 1 || guests > r.Capacity {
		return model.ActiveSession{}, ErrInvalidConfiguration
	}

	l.roomSeq++
	s := &model.ActiveSession{
		ID:           fmt.Sprintf("RS-%d", l.roomSeq),
		Kind:         model.KindRoom,
		ResourceID:   r.ID,
		ResourceName: r.Name,
		ResourceType: string(model.KindRoom),
		Customer:     customer,
		GuestCount:   guests,
		HourlyRate:   r.HourlyRate,
		StartedAt:    l.now().UTC(),
	}
	r.Status = model.StatusInUse
	r.Occupancy = guests
	l.active[s.ID] = s
	l.byResource[resourceKey{model.KindRoom, r.ID}] = s.ID
	return *s, nil
}

// ReserveRoom places a hold on an available room and returns the token the
// customer presents to activate or cancel it.  No cost accrues while the
// room is reserved.
func (l *Ledger) ReserveRoom(roomID uint64, customer string, guests int) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.rooms[roomID]
	if !ok {
		return "", ErrResourceNotFound
	}
	if r.Status != model.StatusAvailable {
		return "", ErrResourceUnavailable
	}
	if guests < 0 || (guests > 0 && guests > r.Capacity) {
		return "", ErrInvalidConfiguration
	}

	token := uuid.NewString()
	l.reservations[token] = &reservation{
		Token:      token,
		RoomID:     r.ID,
		Customer:   customer,
		GuestCount: guests,
		CreatedAt:  l.now().UTC(),
	}
	r.Status = model.StatusReserved
	return token, nil
}

// ActivateReservation converts a pending reservation into a running
// session.  The guest count defaults to 1 when the reservation did not
// specify one.  Billing starts at activation time, not reservation time.
func (l *Ledger) ActivateReservation(token string) (model.ActiveSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok := l.reservations[token]
	if !ok {
		return model.ActiveSession{}, ErrReservationNotFound
	}
	r, ok := l.rooms[res.RoomID]
	if !ok {
		delete(l.reservations, token)
		return model.ActiveSession{}, ErrResourceNotFound
	}

	guests := res.GuestCount
	if guests == 0 {
		guests = 1
	}
	s, err := l.startRoomLocked(r, res.Customer, guests)
	if err != nil {
		return model.ActiveSession{}, err
	}
	delete(l.reservations, token)
	return s, nil
}

// CancelReservation releases a hold and returns the room to AVAILABLE.
func (l *Ledger) CancelReservation(token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, ok := l.reservations[token]
	if !ok {
		return ErrReservationNotFound
	}
	if r, ok := l.rooms[res.RoomID]; ok && r.Status == model.StatusReserved {
		r.Status = model.StatusAvailable
	}
	delete(l.reservations, token)
	return nil
}

// EndSession finalizes the active session with the given id: it stamps the
// end time, computes the final cost with the same formula as ElapsedCost,
// appends the immutable record through the Recorder and releases the
// resource.  A second call with the same id fails with ErrSessionNotFound
// because the session no longer exists.
func (l *Ledger) EndSession(ctx context.Context, id, paymentMethod string) (model.CompletedSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.active[id]
	if !ok {
		return model.CompletedSession{}, ErrSessionNotFound
	}

	end := l.now().UTC()
	dur, cost := ElapsedCost(*s, end)
	rec := model.CompletedSession{
		ID:            s.ID,
		ResourceName:  s.ResourceName,
		ResourceType:  s.ResourceType,
		Customer:      s.Customer,
		StartedAt:     s.StartedAt,
		EndedAt:       end,
		Duration:      dur,
		HourlyRate:    s.HourlyRate,
		Cost:          cost,
		Status:        model.SessionCompleted,
		PaymentMethod: paymentMethod,
	}

	// Append first: if the store rejects the record the session stays
	// active and the caller can retry the end operation.
	if err := l.recorder.Record(ctx, rec); err != nil {
		return model.CompletedSession{}, err
	}

	switch s.Kind {
	case model.KindDevice:
		if d, ok := l.devices[s.ResourceID]; ok {
			d.Status = model.StatusAvailable
		}
	case model.KindRoom:
		if r, ok := l.rooms[s.ResourceID]; ok {
			r.Status = model.StatusAvailable
			r.Occupancy = 0
		}
	}
	delete(l.byResource, resourceKey{s.Kind, s.ResourceID})
	delete(l.active, id)
	return rec, nil
}

// ActiveSession returns a copy of the running session with the given id.
func (l *Ledger) ActiveSession(id string) (model.ActiveSession, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.active[id]
	if !ok {
		return model.ActiveSession{}, ErrSessionNotFound
	}
	return *s, nil
}

// ListActive returns a snapshot of all running sessions ordered by start
// time, then id.  Durations and costs are not cached here; callers compute
// them against "now" with ElapsedCost at read time.
func (l *Ledger) ListActive() []model.ActiveSession {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]model.ActiveSession, 0, len(l.active))
	for _, s := range l.active {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SetMaintenance takes a resource out of rotation.  Maintenance is only
// reachable from AVAILABLE; an occupied or reserved resource must be
// released first.
func (l *Ledger) SetMaintenance(kind model.ResourceKind, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, err := l.statusRefLocked(kind, id)
	if err != nil {
		return err
	}
	if *st != model.StatusAvailable {
		return ErrResourceUnavailable
	}
	*st = model.StatusMaintenance
	return nil
}

// ClearMaintenance returns a resource from MAINTENANCE to AVAILABLE.
func (l *Ledger) ClearMaintenance(kind model.ResourceKind, id uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	st, err := l.statusRefLocked(kind, id)
	if err != nil {
		return err
	}
	if *st != model.StatusMaintenance {
		return ErrResourceUnavailable
	}
	*st = model.StatusAvailable
	return nil
}

func (l *Ledger) statusRefLocked(kind model.ResourceKind, id uint64) (*model.ResourceStatus, error) {
	switch kind {
	case model.KindDevice:
		if d, ok := l.devices[id]; ok {
			return &d.Status, nil
		}
	case model.KindRoom:
		if r, ok := l.rooms[id]; ok {
			return &r.Status, nil
		}
	}
	return nil, ErrResourceNotFound
}
