package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/playzone/reservation-service/internal/dto"
	"github.com/playzone/reservation-service/internal/models"
	"github.com/playzone/reservation-service/internal/service"
	"github.com/stretchr/testify/assert"
)

// --- Mock ReservationService ---

type mockReservationService struct {
	createFn  func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error)
	getFn     func(ctx context.Context, id uint) (*models.Reservation, error)
	listFn    func(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error)
	availFn   func(ctx context.Context, zoneID uint, date string) (*service.Availability, error)
	paymentFn func(ctx context.Context, id uint, outcome, externalRef, reason string) (*models.Reservation, error)
	cancelFn  func(ctx context.Context, id uint, actorID, reason string) (*models.Reservation, error)
	vendorFn  func(ctx context.Context, id uint, actorID, decision, reason string) (*models.Reservation, error)
	sweepFn   func(ctx context.Context) (service.SweepResult, error)
}

func (m *mockReservationService) CreateReservation(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
	return m.createFn(ctx, in)
}
func (m *mockReservationService) GetReservation(ctx context.Context, id uint) (*models.Reservation, error) {
	return m.getFn(ctx, id)
}
func (m *mockReservationService) GetReservationByReference(ctx context.Context, ref string) (*models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationService) ListReservations(ctx context.Context, zoneID uint, date string) ([]models.Reservation, error) {
	return m.listFn(ctx, zoneID, date)
}
func (m *mockReservationService) GetAvailability(ctx context.Context, zoneID uint, date string) (*service.Availability, error) {
	return m.availFn(ctx, zoneID, date)
}
func (m *mockReservationService) ReportPaymentOutcome(ctx context.Context, id uint, outcome, externalRef, reason string) (*models.Reservation, error) {
	return m.paymentFn(ctx, id, outcome, externalRef, reason)
}
func (m *mockReservationService) CancelReservation(ctx context.Context, id uint, actorID, reason string) (*models.Reservation, error) {
	return m.cancelFn(ctx, id, actorID, reason)
}
func (m *mockReservationService) VendorDecide(ctx context.Context, id uint, actorID, decision, reason string) (*models.Reservation, error) {
	return m.vendorFn(ctx, id, actorID, decision, reason)
}
func (m *mockReservationService) MarkCompleted(ctx context.Context, id uint) (*models.Reservation, error) {
	return nil, nil
}
func (m *mockReservationService) RunExpirySweep(ctx context.Context) (service.SweepResult, error) {
	return m.sweepFn(ctx)
}

func sampleReservation() *models.Reservation {
	deadline := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	return &models.Reservation{
		ID:              1,
		Reference:       "resv-abc",
		ZoneID:          1,
		RequesterID:     "user-a",
		Date:            "2024-06-01",
		StartTime:       "10:00",
		StartMinutes:    600,
		DurationHours:   2,
		Status:          models.StatusPendingPayment,
		Amount:          20,
		PaymentDeadline: &deadline,
		CreatedAt:       time.Now(),
	}
}

func newJSONContext(t *testing.T, method, path, body, paramValue string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if paramValue != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramValue)
	}
	return c, rec
}

func TestCreateReservation_Handler_Success(t *testing.T) {
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			assert.Equal(t, uint(1), in.ZoneID)
			assert.Equal(t, "user-a", in.RequesterID)
			assert.Equal(t, "10:00", in.StartTime)
			return sampleReservation(), nil
		},
	}

	body := `{"requester_id":"user-a","date":"2024-06-01","start_time":"10:00","duration_hours":2}`
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/zones/1/reservations", body, "1")

	h := NewReservationHandler(svc)
	err := h.CreateReservation(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.ReservationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "resv-abc", resp.Reference)
	assert.Equal(t, models.StatusPendingPayment, resp.Status)
	assert.Equal(t, float64(20), resp.Amount)
}

func TestCreateReservation_Handler_ItemizedPricing(t *testing.T) {
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			itemized, ok := in.Pricing.(service.ItemizedPricing)
			assert.True(t, ok)
			assert.Len(t, itemized.Items, 2)
			return sampleReservation(), nil
		},
	}

	body := `{"requester_id":"user-a","date":"2024-06-01","start_time":"10:00","duration_hours":2,` +
		`"items":[{"label":"court","hours":2,"rate_per_hour":12},{"label":"lighting","hours":2,"rate_per_hour":3}]}`
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/zones/1/reservations", body, "1")

	err := NewReservationHandler(svc).CreateReservation(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateReservation_Handler_InvalidZoneID(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/zones/abc/reservations", "{}", "abc")

	err := NewReservationHandler(&mockReservationService{}).CreateReservation(c)

	var httpErr *echo.HTTPError
	if assert.ErrorAs(t, err, &httpErr) {
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestCreateReservation_Handler_ServiceErrorPassesThrough(t *testing.T) {
	conflict := &service.ConflictError{Requested: "10:00-12:00", ConflictingInterval: "10:00-12:00"}
	svc := &mockReservationService{
		createFn: func(ctx context.Context, in service.CreateReservationInput) (*models.Reservation, error) {
			return nil, conflict
		},
	}

	body := `{"requester_id":"user-a","date":"2024-06-01","start_time":"10:00","duration_hours":2}`
	c, _ := newJSONContext(t, http.MethodPost, "/api/v1/zones/1/reservations", body, "1")

	err := NewReservationHandler(svc).CreateReservation(c)
	assert.ErrorIs(t, err, conflict)
}

func TestGetAvailability_Handler(t *testing.T) {
	svc := &mockReservationService{
		availFn: func(ctx context.Context, zoneID uint, date string) (*service.Availability, error) {
			assert.Equal(t, "2024-06-01", date)
			return &service.Availability{
				ZoneID:         zoneID,
				Date:           date,
				AvailableSlots: []string{"09:00"},
				BookedSlots:    []string{"10:00", "11:00"},
				TotalAvailable: 1,
				TotalBooked:    2,
			}, nil
		},
	}

	c, rec := newJSONContext(t, http.MethodGet, "/api/v1/zones/1/availability?date=2024-06-01", "", "1")

	err := NewReservationHandler(svc).GetAvailability(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp service.Availability
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"10:00", "11:00"}, resp.BookedSlots)
}

func TestGetAvailability_Handler_MissingDate(t *testing.T) {
	c, _ := newJSONContext(t, http.MethodGet, "/api/v1/zones/1/availability", "", "1")

	err := NewReservationHandler(&mockReservationService{}).GetAvailability(c)
	var httpErr *echo.HTTPError
	if assert.ErrorAs(t, err, &httpErr) {
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	}
}

func TestReportPaymentOutcome_Handler(t *testing.T) {
	svc := &mockReservationService{
		paymentFn: func(ctx context.Context, id uint, outcome, externalRef, reason string) (*models.Reservation, error) {
			assert.Equal(t, uint(1), id)
			assert.Equal(t, service.OutcomeSucceeded, outcome)
			assert.Equal(t, "pay_1", externalRef)
			res := sampleReservation()
			res.Status = models.StatusConfirmed
			res.PaymentDeadline = nil
			return res, nil
		},
	}

	body := `{"outcome":"succeeded","external_ref":"pay_1"}`
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/reservations/1/payment", body, "1")

	err := NewReservationHandler(svc).ReportPaymentOutcome(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.ReservationResponse
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, models.StatusConfirmed, resp.Status)
	assert.Nil(t, resp.PaymentDeadline)
}

func TestCancelReservation_Handler(t *testing.T) {
	svc := &mockReservationService{
		cancelFn: func(ctx context.Context, id uint, actorID, reason string) (*models.Reservation, error) {
			assert.Equal(t, "user-a", actorID)
			assert.Equal(t, "changed plans", reason)
			res := sampleReservation()
			res.Status = models.StatusCancelled
			return res, nil
		},
	}

	body := `{"actor_id":"user-a","reason":"changed plans"}`
	c, rec := newJSONContext(t, http.MethodDelete, "/api/v1/reservations/1", body, "1")

	err := NewReservationHandler(svc).CancelReservation(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestVendorDecide_Handler(t *testing.T) {
	svc := &mockReservationService{
		vendorFn: func(ctx context.Context, id uint, actorID, decision, reason string) (*models.Reservation, error) {
			assert.Equal(t, service.DecisionDecline, decision)
			assert.Equal(t, "zone closed", reason)
			res := sampleReservation()
			res.Status = models.StatusDeclined
			return res, nil
		},
	}

	body := `{"actor_id":"vendor-1","decision":"decline","reason":"zone closed"}`
	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/reservations/1/vendor-decision", body, "1")

	err := NewReservationHandler(svc).VendorDecide(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRunExpirySweep_Handler(t *testing.T) {
	svc := &mockReservationService{
		sweepFn: func(ctx context.Context) (service.SweepResult, error) {
			return service.SweepResult{Reclaimed: 3}, nil
		},
	}

	c, rec := newJSONContext(t, http.MethodPost, "/api/v1/admin/expiry-sweep", "", "")

	err := NewReservationHandler(svc).RunExpirySweep(c)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp service.SweepResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Reclaimed)
}
