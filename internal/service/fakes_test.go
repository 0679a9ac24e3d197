package service

import (
	"context"
	"sync"
	"time"

	"github.com/playzone/reservation-service/internal/models"
	"github.com/playzone/reservation-service/internal/notify"
	"gorm.io/gorm"
)

// fakeReservationRepo is an in-memory stand-in for the gorm repository. Its
// UpdateStatusFrom is a real compare-and-swap so the conditional-update
// semantics the engine relies on are exercised for real.
type fakeReservationRepo struct {
	mu       sync.Mutex
	nextID   uint
	items    map[uint]*models.Reservation
	attempts []models.PaymentAttempt

	// dupOnCreate simulates losing the insert race: the pre-check saw no
	// conflict but the unique index rejects the write.
	dupOnCreate bool
	// failNextCAS makes the next conditional update report zero rows, as
	// if another writer got there first.
	failNextCAS bool
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{items: map[uint]*models.Reservation{}}
}

func (f *fakeReservationRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func (f *fakeReservationRepo) Create(ctx context.Context, tx *gorm.DB, res *models.Reservation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dupOnCreate {
		return gorm.ErrDuplicatedKey
	}
	f.nextID++
	res.ID = f.nextID
	res.CreatedAt = time.Now()
	res.UpdatedAt = res.CreatedAt
	cp := *res
	f.items[res.ID] = &cp
	return nil
}

func (f *fakeReservationRepo) FindByID(ctx context.Context, id uint) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.items[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeReservationRepo) FindByReference(ctx context.Context, ref string) (*models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, res := range f.items {
		if res.Reference == ref {
			cp := *res
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeReservationRepo) FindActiveForZoneDate(ctx context.Context, tx *gorm.DB, zoneID uint, date string, excludeID uint) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, res := range f.items {
		if res.ZoneID == zoneID && res.Date == date && res.Status.IsActive() && res.ID != excludeID {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) FindForZoneDate(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, res := range f.items {
		if res.ZoneID == zoneID && res.Date == date {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) FindExpiredPending(ctx context.Context, now time.Time) ([]models.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Reservation
	for _, res := range f.items {
		if res.Status == models.StatusPendingPayment && res.PaymentDeadline != nil && res.PaymentDeadline.Before(now) {
			out = append(out, *res)
		}
	}
	return out, nil
}

func (f *fakeReservationRepo) UpdateStatusFrom(ctx context.Context, id uint, from, to models.ReservationStatus, updates map[string]any) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNextCAS {
		f.failNextCAS = false
		return 0, nil
	}
	res, ok := f.items[id]
	if !ok || res.Status != from {
		return 0, nil
	}
	res.Status = to
	res.UpdatedAt = time.Now()
	for k, v := range updates {
		switch k {
		case "payment_deadline":
			if v == nil {
				res.PaymentDeadline = nil
			}
		case "cancel_reason":
			res.CancelReason = v.(string)
		case "cancel_actor":
			res.CancelActor = v.(string)
		case "cancelled_at":
			at := v.(time.Time)
			res.CancelledAt = &at
		}
	}
	return 1, nil
}

func (f *fakeReservationRepo) AppendPaymentAttempt(ctx context.Context, attempt *models.PaymentAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	attempt.ID = uint(len(f.attempts) + 1)
	f.attempts = append(f.attempts, *attempt)
	return nil
}

// seed inserts a reservation directly, bypassing the engine.
func (f *fakeReservationRepo) seed(res models.Reservation) uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	res.ID = f.nextID
	f.items[res.ID] = &res
	return res.ID
}

type fakeZoneRepo struct {
	zones map[uint]*models.Zone
}

func newFakeZoneRepo(zones ...*models.Zone) *fakeZoneRepo {
	f := &fakeZoneRepo{zones: map[uint]*models.Zone{}}
	for _, z := range zones {
		f.zones[z.ID] = z
	}
	return f
}

func (f *fakeZoneRepo) Create(ctx context.Context, zone *models.Zone) error {
	if zone.ID == 0 {
		zone.ID = uint(len(f.zones) + 1)
	}
	f.zones[zone.ID] = zone
	return nil
}

func (f *fakeZoneRepo) FindByID(ctx context.Context, id uint) (*models.Zone, error) {
	zone, ok := f.zones[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return zone, nil
}

func (f *fakeZoneRepo) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Zone, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeZoneRepo) FindAll(ctx context.Context) ([]models.Zone, error) {
	var out []models.Zone
	for _, z := range f.zones {
		out = append(out, *z)
	}
	return out, nil
}

// recordingSink captures emitted events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []notify.Event
}

func (s *recordingSink) Publish(event notify.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *recordingSink) kinds() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.events))
	for i, e := range s.events {
		out[i] = e.Kind()
	}
	return out
}
