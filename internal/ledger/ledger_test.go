package ledger

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/game-station/internal/model"
)

// memRecorder is the in-memory Recorder used by tests.
type memRecorder struct {
	mu   sync.Mutex
	recs []model.CompletedSession
	fail error
}

func (m *memRecorder) Record(_ context.Context, s model.CompletedSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.recs = append(m.recs, s)
	return nil
}

func rate(f float64) decimal.Decimal { return decimal.NewFromFloat(f) }

func newTestLedger(t *testing.T) (*Ledger, *memRecorder) {
	t.Helper()
	rec := &memRecorder{}
	l := New(rec)
	multi := rate(80.00)
	l.RegisterDevice(model.Device{ID: 1, Name: "PS5-1", Type: "PS5", HourlyRate: rate(50.00), MultiRate: &multi, Status: model.StatusAvailable})
	l.RegisterDevice(model.Device{ID: 2, Name: "PC-1", Type: "PC", HourlyRate: rate(40.00), Status: model.StatusAvailable})
	l.RegisterRoom(model.Room{ID: 1, Name: "VIP-1", HourlyRate: rate(120.00), Capacity: 4, Status: model.StatusAvailable})
	return l, rec
}

func TestStartDeviceSession(t *testing.T) {
	l, _ := newTestLedger(t)
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return start }

	s, err := l.StartDeviceSession(1, "Omar", model.RateSingle)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if s.ID != "DS-1" {
		t.Errorf("id = %q, want DS-1", s.ID)
	}
	if !s.HourlyRate.Equal(rate(50.00)) {
		t.Errorf("rate = %s, want 50", s.HourlyRate)
	}
	if !s.StartedAt.Equal(start) {
		t.Errorf("started at = %v, want %v", s.StartedAt, start)
	}

	d, _ := l.Device(1)
	if d.Status != model.StatusInUse {
		t.Errorf("device status = %v, want IN_USE", d.Status)
	}

	// Second start on the same device must fail, never double-book.
	if _, err := l.StartDeviceSession(1, "", model.RateSingle); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("second start err = %v, want ErrResourceUnavailable", err)
	}
}

func TestStartDeviceSessionMultiRate(t *testing.T) {
	l, _ := newTestLedger(t)

	s, err := l.StartDeviceSession(1, "", model.RateMulti)
	if err != nil {
		t.Fatalf("multi start: %v", err)
	}
	if !s.HourlyRate.Equal(rate(80.00)) {
		t.Errorf("multi rate = %s, want 80", s.HourlyRate)
	}

	// Device 2 has no multi rate configured.
	if _, err := l.StartDeviceSession(2, "", model.RateMulti); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
	if d, _ := l.Device(2); d.Status != model.StatusAvailable {
		t.Errorf("failed start must leave device available, got %v", d.Status)
	}
}

func TestStartSessionUnknownResource(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.StartDeviceSession(99, "", model.RateSingle); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("device err = %v, want ErrResourceNotFound", err)
	}
	if _, err := l.StartRoomSession(99, "", 1); !errors.Is(err, ErrResourceNotFound) {
		t.Errorf("room err = %v, want ErrResourceNotFound", err)
	}
}

func TestStartRoomSessionGuestBounds(t *testing.T) {
	tests := []struct {
		name   string
		guests int
		wantOK bool
	}{
		{"one guest", 1, true},
		{"full capacity", 4, true},
		{"zero guests", 0, false},
		{"over capacity", 5, false},
		{"negative guests", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger(t)
			_, err := l.StartRoomSession(1, "", tt.guests)
			if tt.wantOK && err != nil {
				t.Fatalf("start: %v", err)
			}
			if !tt.wantOK && !errors.Is(err, ErrInvalidConfiguration) {
				t.Fatalf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestSessionIDNamespacesDisjoint(t *testing.T) {
	l, _ := newTestLedger(t)
	ds, err := l.StartDeviceSession(1, "", model.RateSingle)
	if err != nil {
		t.Fatal(err)
	}
	rs, err := l.StartRoomSession(1, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(ds.ID, "DS-") || !strings.HasPrefix(rs.ID, "RS-") {
		t.Fatalf("ids = %q and %q, want DS-/RS- prefixes", ds.ID, rs.ID)
	}
	if ds.ID == rs.ID {
		t.Fatalf("device and room session ids collide: %q", ds.ID)
	}
}

func TestEndSession(t *testing.T) {
	l, rec := newTestLedger(t)
	start := time.Date(2025, 6, 1, 14, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	s, err := l.StartDeviceSession(1, "Omar", model.RateSingle)
	if err != nil {
		t.Fatal(err)
	}

	now = start.Add(90 * time.Minute)
	got, err := l.EndSession(context.Background(), s.ID, "CASH")
	if err != nil {
		t.Fatalf("end: %v", err)
	}
	if got.Duration != 90*time.Minute {
		t.Errorf("duration = %v, want 90m", got.Duration)
	}
	if !got.Cost.Equal(rate(75.00)) {
		t.Errorf("cost = %s, want 75.00", got.Cost)
	}
	if got.Status != model.SessionCompleted {
		t.Errorf("status = %q, want COMPLETED", got.Status)
	}
	if got.PaymentMethod != "CASH" {
		t.Errorf("payment = %q, want CASH", got.PaymentMethod)
	}
	if got.ResourceName != "PS5-1" || got.ResourceType != "PS5" {
		t.Errorf("snapshot = %s/%s, want PS5-1/PS5", got.ResourceName, got.ResourceType)
	}

	if len(rec.recs) != 1 {
		t.Fatalf("recorder has %d records, want 1", len(rec.recs))
	}
	if d, _ := l.Device(1); d.Status != model.StatusAvailable {
		t.Errorf("device status after end = %v, want AVAILABLE", d.Status)
	}

	// Ending twice must fail: the session no longer exists.
	if _, err := l.EndSession(context.Background(), s.ID, "CASH"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("double end err = %v, want ErrSessionNotFound", err)
	}
	if len(rec.recs) != 1 {
		t.Errorf("double end appended a record")
	}
}

func TestEndSessionUnknownID(t *testing.T) {
	l, _ := newTestLedger(t)
	if _, err := l.EndSession(context.Background(), "DS-404", ""); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestEndSessionRecorderFailureKeepsSession(t *testing.T) {
	l, rec := newTestLedger(t)
	s, err := l.StartDeviceSession(1, "", model.RateSingle)
	if err != nil {
		t.Fatal(err)
	}

	rec.fail = errors.New("store down")
	if _, err := l.EndSession(context.Background(), s.ID, "CASH"); err == nil {
		t.Fatal("end succeeded despite recorder failure")
	}
	if d, _ := l.Device(1); d.Status != model.StatusInUse {
		t.Errorf("device released despite failed finalize, status = %v", d.Status)
	}

	// Retry after the store recovers.
	rec.fail = nil
	if _, err := l.EndSession(context.Background(), s.ID, "CASH"); err != nil {
		t.Fatalf("retry end: %v", err)
	}
}

func TestConcurrentStartsSingleWinner(t *testing.T) {
	l, _ := newTestLedger(t)

	const callers = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	var started []string

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if s, err := l.StartDeviceSession(1, "", model.RateSingle); err == nil {
				mu.Lock()
				started = append(started, s.ID)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(started) != 1 {
		t.Fatalf("%d concurrent starts succeeded on one device, want exactly 1", len(started))
	}
	if active := l.ListActive(); len(active) != 1 {
		t.Fatalf("%d active sessions, want 1", len(active))
	}
}

func TestReservationLifecycle(t *testing.T) {
	l, _ := newTestLedger(t)

	token, err := l.ReserveRoom(1, "Sara", 0)
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if r, _ := l.Room(1); r.Status != model.StatusReserved {
		t.Fatalf("room status = %v, want RESERVED", r.Status)
	}

	// A reserved room cannot be started directly or reserved again.
	if _, err := l.StartRoomSession(1, "", 1); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("direct start err = %v, want ErrResourceUnavailable", err)
	}
	if _, err := l.ReserveRoom(1, "", 0); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("second reserve err = %v, want ErrResourceUnavailable", err)
	}

	// Activation starts billing; the unspecified guest count defaults to 1.
	s, err := l.ActivateReservation(token)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if s.GuestCount != 1 {
		t.Errorf("guest count = %d, want default 1", s.GuestCount)
	}
	if r, _ := l.Room(1); r.Status != model.StatusInUse || r.Occupancy != 1 {
		t.Errorf("room = %v/%d, want IN_USE/1", r.Status, r.Occupancy)
	}

	// The token is single-use.
	if _, err := l.ActivateReservation(token); !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("reuse err = %v, want ErrReservationNotFound", err)
	}
}

func TestCancelReservation(t *testing.T) {
	l, _ := newTestLedger(t)
	token, err := l.ReserveRoom(1, "", 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := l.CancelReservation(token); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if r, _ := l.Room(1); r.Status != model.StatusAvailable {
		t.Errorf("room status = %v, want AVAILABLE", r.Status)
	}
	if err := l.CancelReservation(token); !errors.Is(err, ErrReservationNotFound) {
		t.Errorf("second cancel err = %v, want ErrReservationNotFound", err)
	}
}

func TestMaintenanceTransitions(t *testing.T) {
	l, _ := newTestLedger(t)

	if err := l.SetMaintenance(model.KindDevice, 1); err != nil {
		t.Fatalf("set maintenance: %v", err)
	}
	if _, err := l.StartDeviceSession(1, "", model.RateSingle); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("start on maintenance err = %v, want ErrResourceUnavailable", err)
	}
	if err := l.ClearMaintenance(model.KindDevice, 1); err != nil {
		t.Fatalf("clear maintenance: %v", err)
	}
	if _, err := l.StartDeviceSession(1, "", model.RateSingle); err != nil {
		t.Errorf("start after clear: %v", err)
	}

	// Maintenance is only reachable from AVAILABLE.
	if err := l.SetMaintenance(model.KindDevice, 1); !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("maintenance on busy device err = %v, want ErrResourceUnavailable", err)
	}
}

func TestRateSnapshotSurvivesRateChange(t *testing.T) {
	l, _ := newTestLedger(t)
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	now := start
	l.now = func() time.Time { return now }

	s, err := l.StartDeviceSession(1, "", model.RateSingle)
	if err != nil {
		t.Fatal(err)
	}

	// Re-register the device with a doubled rate mid-session; the running
	// session must keep billing at its snapshot.  Registration normalizes
	// IN_USE to AVAILABLE, mirroring an admin rate edit.
	l.RegisterDevice(model.Device{ID: 1, Name: "PS5-1", Type: "PS5", HourlyRate: rate(100.00)})

	now = start.Add(time.Hour)
	_, cost := ElapsedCost(s, now)
	if !cost.Equal(rate(50.00)) {
		t.Errorf("cost = %s, want 50.00 at the snapshotted rate", cost)
	}
}

func TestListActiveOrdering(t *testing.T) {
	l, _ := newTestLedger(t)
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	now := base
	l.now = func() time.Time { return now }

	if _, err := l.StartDeviceSession(2, "", model.RateSingle); err != nil {
		t.Fatal(err)
	}
	now = base.Add(time.Minute)
	if _, err := l.StartDeviceSession(1, "", model.RateSingle); err != nil {
		t.Fatal(err)
	}

	active := l.ListActive()
	if len(active) != 2 {
		t.Fatalf("len = %d, want 2", len(active))
	}
	if !active[0].StartedAt.Before(active[1].StartedAt) {
		t.Errorf("active sessions not ordered by start time")
	}
}
