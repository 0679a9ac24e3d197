package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/playzone/reservation-service/internal/models"
	"github.com/playzone/reservation-service/internal/notify"
	"github.com/playzone/reservation-service/internal/repository"
	"github.com/playzone/reservation-service/internal/timeslot"
	"gorm.io/gorm"
)

const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"

	DecisionConfirm = "confirm"
	DecisionDecline = "decline"
)

// Config carries the deployment-level knobs of the reservation engine.
type Config struct {
	// RequirePayment gates new reservations behind payment. When false,
	// creation lands directly in Confirmed with no deadline.
	RequirePayment bool
	// PaymentWindow is how long a pending reservation may await payment.
	PaymentWindow time.Duration
	// CancellationWindowHours: a requester may cancel only while the start
	// is further away than this.
	CancellationWindowHours float64
	// VendorPendingStatus is the one status vendor decisions act on.
	VendorPendingStatus models.ReservationStatus
	// Location is the serving timezone used to interpret civil dates.
	Location *time.Location
}

type CreateReservationInput struct {
	ZoneID        uint
	RequesterID   string
	Date          string
	StartTime     string
	DurationHours int
	Notes         string
	// Pricing overrides the flat zone rate, e.g. with an itemized quote.
	Pricing PricingSource
}

type Availability struct {
	ZoneID         uint     `json:"zone_id"`
	Date           string   `json:"date"`
	AvailableSlots []string `json:"available_slots"`
	BookedSlots    []string `json:"booked_slots"`
	TotalAvailable int      `json:"total_available"`
	TotalBooked    int      `json:"total_booked"`
}

type SweepResult struct {
	Reclaimed int      `json:"reclaimed"`
	Errors    []string `json:"errors,omitempty"`
}

type ReservationService interface {
	CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error)
	GetReservation(ctx context.Context, id uint) (*models.Reservation, error)
	GetReservationByReference(ctx context.Context, ref string) (*models.Reservation, error)
	ListReservations(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error)
	GetAvailability(ctx context.Context, zoneID uint, date string) (*Availability, error)
	ReportPaymentOutcome(ctx context.Context, id uint, outcome, externalRef, reason string) (*models.Reservation, error)
	CancelReservation(ctx context.Context, id uint, actorID, reason string) (*models.Reservation, error)
	VendorDecide(ctx context.Context, id uint, actorID, decision, reason string) (*models.Reservation, error)
	MarkCompleted(ctx context.Context, id uint) (*models.Reservation, error)
	RunExpirySweep(ctx context.Context) (SweepResult, error)
}

type reservationService struct {
	resRepo  repository.ReservationRepository
	zoneRepo repository.ZoneRepository
	sink     notify.Sink
	cfg      Config
	now      func() time.Time
}

func NewReservationService(resRepo repository.ReservationRepository, zoneRepo repository.ZoneRepository, sink notify.Sink, cfg Config) ReservationService {
	if cfg.VendorPendingStatus == "" {
		cfg.VendorPendingStatus = models.StatusPendingPayment
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &reservationService{
		resRepo:  resRepo,
		zoneRepo: zoneRepo,
		sink:     sink,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (s *reservationService) CreateReservation(ctx context.Context, in CreateReservationInput) (*models.Reservation, error) {
	if in.RequesterID == "" {
		return nil, &ValidationError{Field: "requester_id", Message: "must not be empty"}
	}
	if _, err := time.Parse("2006-01-02", in.Date); err != nil {
		return nil, &ValidationError{Field: "date", Message: "expected YYYY-MM-DD"}
	}
	if _, err := timeslot.ToMinutes(in.StartTime); err != nil {
		return nil, &ValidationError{Field: "start_time", Message: err.Error()}
	}
	if in.DurationHours < 1 {
		return nil, &ValidationError{Field: "duration_hours", Message: "must be at least 1"}
	}

	pricing := in.Pricing
	if pricing == nil {
		pricing = FlatRatePricing{}
	}

	var created *models.Reservation

	err := s.resRepo.Transaction(ctx, func(tx *gorm.DB) error {
		// Lock the zone row: serializes concurrent creation attempts on
		// the same zone so the conflict pre-check below is not racing
		// writes in other transactions.
		zone, err := s.zoneRepo.FindByIDForUpdate(ctx, tx, in.ZoneID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrZoneNotFound
			}
			return err
		}

		if in.DurationHours > zone.MaxBookingHours {
			return &ValidationError{
				Field:   "duration_hours",
				Message: fmt.Sprintf("exceeds zone maximum of %d", zone.MaxBookingHours),
			}
		}

		if err := timeslot.FitsWindow(zone.OpenTime, zone.CloseTime, in.StartTime, in.DurationHours); err != nil {
			return err
		}

		startMin := s.normalizedStart(zone, in.StartTime)
		endMin := startMin + in.DurationHours*60

		if err := s.findConflict(ctx, tx, zone.ID, in.Date, startMin, endMin, 0); err != nil {
			return err
		}

		res := &models.Reservation{
			Reference:     uuid.NewString(),
			ZoneID:        zone.ID,
			RequesterID:   in.RequesterID,
			Date:          in.Date,
			StartTime:     in.StartTime,
			StartMinutes:  startMin,
			DurationHours: in.DurationHours,
			Amount:        pricing.Quote(zone, in.DurationHours),
			Notes:         in.Notes,
			Status:        models.StatusConfirmed,
		}
		if s.cfg.RequirePayment {
			deadline := s.now().Add(s.cfg.PaymentWindow)
			res.Status = models.StatusPendingPayment
			res.PaymentDeadline = &deadline
		}

		if err := s.resRepo.Create(ctx, tx, res); err != nil {
			// The partial unique index is the real exclusivity guarantee;
			// a duplicate key here means another transaction won the slot
			// between our pre-check and this insert.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return &ConflictError{
					ZoneID:    zone.ID,
					Date:      in.Date,
					Requested: intervalLabel(startMin, endMin),
				}
			}
			return err
		}

		created = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	notify.Emit(s.sink, notify.ReservationCreated{
		ReservationRef:  notify.Ref(created.ID, created.Reference, created.ZoneID, created.RequesterID),
		Date:            created.Date,
		StartTime:       created.StartTime,
		DurationHours:   created.DurationHours,
		Amount:          created.Amount,
		PaymentDeadline: created.PaymentDeadline,
		CreatedAt:       created.CreatedAt,
	})
	return created, nil
}

// normalizedStart shifts the start into the zone window's minute space so
// wrapped-window starts after midnight sort and compare past 1440.
func (s *reservationService) normalizedStart(zone *models.Zone, start string) int {
	openMin, _ := timeslot.ToMinutes(zone.OpenTime)
	closeMin, _ := timeslot.ToMinutes(zone.CloseTime)
	startMin, _ := timeslot.ToMinutes(start)
	_, wraps := timeslot.WindowSpan(openMin, closeMin)
	return timeslot.NormalizeStart(startMin, openMin, wraps)
}

// findConflict walks the active reservations for the zone and date and
// reports the first half-open interval overlap. Pre-flight only: the
// durable unique index still backs it under concurrency.
func (s *reservationService) findConflict(ctx context.Context, tx *gorm.DB, zoneID uint, date string, startMin, endMin int, excludeID uint) error {
	existing, err := s.resRepo.FindActiveForZoneDate(ctx, tx, zoneID, date, excludeID)
	if err != nil {
		return err
	}
	for i := range existing {
		ex := &existing[i]
		if timeslot.Overlaps(startMin, endMin, ex.StartMinutes, ex.EndMinutes()) {
			return &ConflictError{
				ZoneID:              zoneID,
				Date:                date,
				Requested:           intervalLabel(startMin, endMin),
				ConflictingID:       ex.ID,
				ConflictingRef:      ex.Reference,
				ConflictingInterval: intervalLabel(ex.StartMinutes, ex.EndMinutes()),
			}
		}
	}
	return nil
}

func intervalLabel(startMin, endMin int) string {
	return timeslot.ToClock(startMin) + "-" + timeslot.ToClock(endMin)
}

func (s *reservationService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := s.resRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *reservationService) GetReservationByReference(ctx context.Context, ref string) (*models.Reservation, error) {
	res, err := s.resRepo.FindByReference(ctx, ref)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return res, nil
}

func (s *reservationService) ListReservations(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error) {
	return s.resRepo.FindForZoneDate(ctx, zoneID, date)
}

func (s *reservationService) GetAvailability(ctx context.Context, zoneID uint, date string) (*Availability, error) {
	zone, err := s.zoneRepo.FindByID(ctx, zoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrZoneNotFound
		}
		return nil, err
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, &ValidationError{Field: "date", Message: "expected YYYY-MM-DD"}
	}

	labels, err := timeslot.HourLabels(zone.OpenTime, zone.CloseTime)
	if err != nil {
		return nil, err
	}

	active, err := s.resRepo.FindActiveForZoneDate(ctx, nil, zoneID, date, 0)
	if err != nil {
		return nil, err
	}

	out := &Availability{
		ZoneID:         zoneID,
		Date:           date,
		AvailableSlots: []string{},
		BookedSlots:    []string{},
	}
	for _, label := range labels {
		booked := false
		for i := range active {
			// Hour-granular projection: any partial overlap marks the
			// whole hour booked.
			if timeslot.Overlaps(label, label+60, active[i].StartMinutes, active[i].EndMinutes()) {
				booked = true
				break
			}
		}
		if booked {
			out.BookedSlots = append(out.BookedSlots, timeslot.ToClock(label))
		} else {
			out.AvailableSlots = append(out.AvailableSlots, timeslot.ToClock(label))
		}
	}
	out.TotalAvailable = len(out.AvailableSlots)
	out.TotalBooked = len(out.BookedSlots)
	return out, nil
}

func (s *reservationService) ReportPaymentOutcome(ctx context.Context, id uint, outcome, externalRef, reason string) (*models.Reservation, error) {
	event := ""
	switch outcome {
	case OutcomeSucceeded:
		event = EventPaymentSucceeded
	case OutcomeFailed:
		event = EventPaymentFailed
	default:
		return nil, &ValidationError{Field: "outcome", Message: "must be succeeded or failed"}
	}

	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := checkTransition(res.Status, event)
	if err != nil {
		return nil, err
	}

	now := s.now()
	rows, err := s.resRepo.UpdateStatusFrom(ctx, id, models.StatusPendingPayment, target, map[string]any{
		"payment_deadline": nil,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// Lost the race to the reaper or another callback.
		current, _ := s.GetReservation(ctx, id)
		from := res.Status
		if current != nil {
			from = current.Status
		}
		return nil, &InvalidTransitionError{From: from, Event: event, Reason: "reservation was updated concurrently"}
	}

	attemptOutcome := models.AttemptOutcomeSucceeded
	note := ""
	if outcome == OutcomeFailed {
		attemptOutcome = models.AttemptOutcomeFailed
		note = reason
	}
	s.appendAttempt(ctx, &models.PaymentAttempt{
		ReservationID: id,
		AttemptedAt:   now,
		ExternalRef:   externalRef,
		Outcome:       attemptOutcome,
		Note:          note,
	})

	ref := notify.Ref(res.ID, res.Reference, res.ZoneID, res.RequesterID)
	if outcome == OutcomeSucceeded {
		notify.Emit(s.sink, notify.PaymentSucceeded{ReservationRef: ref, ExternalRef: externalRef, PaidAt: now})
	} else {
		notify.Emit(s.sink, notify.PaymentFailed{ReservationRef: ref, ExternalRef: externalRef, Reason: reason, FailedAt: now})
	}

	return s.GetReservation(ctx, id)
}

func (s *reservationService) CancelReservation(ctx context.Context, id uint, actorID, reason string) (*models.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := checkTransition(res.Status, EventUserCancel)
	if err != nil {
		return nil, err
	}

	now := s.now()
	hours, err := hoursUntilStart(res, now, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	if hours <= s.cfg.CancellationWindowHours {
		return nil, &InvalidTransitionError{
			From:   res.Status,
			Event:  EventUserCancel,
			Reason: fmt.Sprintf("start is within the %.0fh cancellation window", s.cfg.CancellationWindowHours),
		}
	}

	rows, err := s.resRepo.UpdateStatusFrom(ctx, id, res.Status, target, map[string]any{
		"payment_deadline": nil,
		"cancel_reason":    reason,
		"cancel_actor":     actorID,
		"cancelled_at":     now,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, &InvalidTransitionError{From: res.Status, Event: EventUserCancel, Reason: "reservation was updated concurrently"}
	}

	notify.Emit(s.sink, notify.Cancelled{
		ReservationRef: notify.Ref(res.ID, res.Reference, res.ZoneID, res.RequesterID),
		Actor:          actorID,
		Reason:         reason,
		CancelledAt:    now,
	})
	return s.GetReservation(ctx, id)
}

func (s *reservationService) VendorDecide(ctx context.Context, id uint, actorID, decision, reason string) (*models.Reservation, error) {
	event := ""
	switch decision {
	case DecisionConfirm:
		event = EventVendorConfirm
	case DecisionDecline:
		event = EventVendorDecline
	default:
		return nil, &ValidationError{Field: "decision", Message: "must be confirm or decline"}
	}
	if decision == DecisionDecline && reason == "" {
		return nil, &ValidationError{Field: "reason", Message: "declining requires a reason"}
	}

	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	if res.Status != s.cfg.VendorPendingStatus {
		return nil, &InvalidTransitionError{
			From:   res.Status,
			Event:  event,
			Reason: fmt.Sprintf("vendor decisions apply only to %s reservations", s.cfg.VendorPendingStatus),
		}
	}

	target, err := checkTransition(res.Status, event)
	if err != nil {
		return nil, err
	}

	rows, err := s.resRepo.UpdateStatusFrom(ctx, id, res.Status, target, map[string]any{
		"payment_deadline": nil,
	})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, &InvalidTransitionError{From: res.Status, Event: event, Reason: "reservation was updated concurrently"}
	}

	now := s.now()
	ref := notify.Ref(res.ID, res.Reference, res.ZoneID, res.RequesterID)
	if decision == DecisionConfirm {
		notify.Emit(s.sink, notify.Confirmed{ReservationRef: ref, Actor: actorID, ConfirmedAt: now})
	} else {
		notify.Emit(s.sink, notify.Declined{ReservationRef: ref, Actor: actorID, Reason: reason, DeclinedAt: now})
	}
	return s.GetReservation(ctx, id)
}

func (s *reservationService) MarkCompleted(ctx context.Context, id uint) (*models.Reservation, error) {
	res, err := s.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := checkTransition(res.Status, EventMarkCompleted)
	if err != nil {
		return nil, err
	}

	end, err := intervalEnd(res, s.cfg.Location)
	if err != nil {
		return nil, err
	}
	if s.now().Before(end) {
		return nil, &InvalidTransitionError{From: res.Status, Event: EventMarkCompleted, Reason: "interval has not ended yet"}
	}

	rows, err := s.resRepo.UpdateStatusFrom(ctx, id, res.Status, target, nil)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, &InvalidTransitionError{From: res.Status, Event: EventMarkCompleted, Reason: "reservation was updated concurrently"}
	}
	return s.GetReservation(ctx, id)
}

func (s *reservationService) RunExpirySweep(ctx context.Context) (SweepResult, error) {
	result := SweepResult{}
	now := s.now()

	expired, err := s.resRepo.FindExpiredPending(ctx, now)
	if err != nil {
		return result, err
	}

	for i := range expired {
		res := &expired[i]
		rows, err := s.resRepo.UpdateStatusFrom(ctx, res.ID, models.StatusPendingPayment, models.StatusPaymentFailed, map[string]any{
			"payment_deadline": nil,
		})
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("reservation %d: %v", res.ID, err))
			continue
		}
		if rows == 0 {
			// Already moved by a late payment callback or another reaper.
			continue
		}

		s.appendAttempt(ctx, &models.PaymentAttempt{
			ReservationID: res.ID,
			AttemptedAt:   now,
			Outcome:       models.AttemptOutcomeExpired,
			Note:          "payment deadline exceeded",
		})

		deadline := now
		if res.PaymentDeadline != nil {
			deadline = *res.PaymentDeadline
		}
		notify.Emit(s.sink, notify.Expired{
			ReservationRef: notify.Ref(res.ID, res.Reference, res.ZoneID, res.RequesterID),
			Deadline:       deadline,
			ExpiredAt:      now,
		})
		result.Reclaimed++
	}
	return result, nil
}

// appendAttempt records a payment attempt outside the status change itself.
// The attempt log is an audit trail; a write failure is logged, never
// propagated.
func (s *reservationService) appendAttempt(ctx context.Context, attempt *models.PaymentAttempt) {
	if err := s.resRepo.AppendPaymentAttempt(ctx, attempt); err != nil {
		log.Printf("[reservations] failed to record payment attempt for %d: %v", attempt.ReservationID, err)
	}
}
