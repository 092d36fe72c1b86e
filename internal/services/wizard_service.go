package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"transfers/internal/apiclient"
	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/storage"
	"transfers/internal/utils"
)

var tracer = otel.GetTracerProvider().Tracer("transfers/internal/services")

// submitClaimTTL bounds how long a crashed submit blocks the visitor's next attempt.
const submitClaimTTL = 2 * time.Minute

// WizardService drives a visitor's booking draft through the five wizard steps. Operations on
// one visitor run one at a time; concurrent final submits share a single reservation request.
type WizardService struct {
	Store        storage.Store
	Catalog      CatalogService
	Reservations ReservationAPI
	Tokens       TokenSource
	Location     *time.Location
	Area         Area
	Now          func() time.Time
	NewID        func() string

	locks    *keyedMutex
	inflight singleflight.Group
}

func NewWizardService(store storage.Store, catalog CatalogService, reservations ReservationAPI, tokens TokenSource, loc *time.Location) *WizardService {
	return &WizardService{
		Store:        store,
		Catalog:      catalog,
		Reservations: reservations,
		Tokens:       tokens,
		Location:     loc,
		locks:        newKeyedMutex(),
	}
}

// Prefill is trip data arriving with the visitor, e.g. from the quick-book form.
type Prefill struct {
	Trip      models.TripDetails
	ServiceID string
	Lang      string
}

func (s *WizardService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return utils.NowUTC()
}

func (s *WizardService) newID() string {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.NewString()
}

func (s *WizardService) lock(visitor string) func() {
	return s.locks.Lock(visitor)
}

func (s *WizardService) fresh() models.BookingDraft {
	return models.BookingDraft{
		ID:   s.newID(),
		Step: models.StepTripDetails,
		Trip: models.TripDetails{TripType: models.TripOneWay, Passengers: 1},
	}
}

func (s *WizardService) load(ctx context.Context, visitor string) (models.BookingDraft, error) {
	raw, err := s.Store.Get(ctx, visitor, storage.KeyDraft)
	if errors.Is(err, storage.ErrNotFound) {
		return s.fresh(), nil
	}
	if err != nil {
		return models.BookingDraft{}, domain.InternalError{Msg: "load draft", Err: err}
	}
	var d models.BookingDraft
	if err := json.Unmarshal(raw, &d); err != nil || d.ID == "" || d.Step.Index() < 0 {
		utils.LogEvent(utils.RequestIDFrom(ctx), "wizard", "discard_draft", "visitor="+visitor+" unreadable draft")
		return s.fresh(), nil
	}
	return d, nil
}

func (s *WizardService) save(ctx context.Context, visitor string, d *models.BookingDraft) error {
	d.UpdatedAt = s.now()
	raw, err := json.Marshal(d)
	if err != nil {
		return domain.InternalError{Msg: "encode draft", Err: err}
	}
	if err := s.Store.Put(ctx, visitor, storage.KeyDraft, raw); err != nil {
		return domain.InternalError{Msg: "store draft", Err: err}
	}
	return nil
}

// fail records err on the draft, saves it and returns err.
func (s *WizardService) fail(ctx context.Context, visitor string, d *models.BookingDraft, err error) (models.BookingDraft, error) {
	d.LastError = draftError(err)
	if serr := s.save(ctx, visitor, d); serr != nil {
		return *d, serr
	}
	return *d, err
}

func draftError(err error) *models.DraftError {
	var (
		verr    domain.ValidationError
		payErr  domain.PaymentFailedError
		slotErr domain.SlotUnavailableError
	)
	switch {
	case errors.As(err, &verr):
		return &models.DraftError{Code: "validation", Field: verr.Field, Message: verr.Error()}
	case errors.As(err, &slotErr):
		return &models.DraftError{Code: "slot_unavailable", Field: "vehicle", Message: slotErr.Error()}
	case errors.As(err, &payErr):
		return &models.DraftError{Code: "payment_failed", Message: payErr.Msg}
	case domain.IsAuth(err):
		return &models.DraftError{Code: "auth", Message: err.Error()}
	case domain.IsFetch(err):
		return &models.DraftError{Code: "fetch"}
	default:
		return &models.DraftError{Code: "internal"}
	}
}

func stepError(d models.BookingDraft, want ...models.Step) error {
	for _, w := range want {
		if d.Step == w {
			return nil
		}
	}
	return domain.ValidationError{Field: "step", Msg: "not allowed at step " + string(d.Step)}
}

// Current returns the visitor's draft, creating an empty one on first visit.
func (s *WizardService) Current(ctx context.Context, visitor string) (models.BookingDraft, error) {
	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if d.UpdatedAt.IsZero() {
		if err := s.save(ctx, visitor, &d); err != nil {
			return d, err
		}
	}
	return d, nil
}

// Start enters the wizard with prefilled trip data. A complete, valid prefill skips the trip step
// (and the service step when a service is named); anything else lands on the trip form with the
// fields filled in. The skipped steps stay reachable through Back. A confirmed draft is returned
// untouched; only Reset starts over after a booking.
func (s *WizardService) Start(ctx context.Context, visitor string, p Prefill) (models.BookingDraft, error) {
	ctx, span := tracer.Start(ctx, "WizardService.Start")
	defer span.End()

	unlock := s.lock(visitor)
	defer unlock()

	prev, err := s.load(ctx, visitor)
	if err != nil {
		return prev, err
	}
	if prev.Step == models.StepConfirmation {
		return prev, nil
	}
	if err := s.release(ctx, visitor); err != nil {
		return prev, err
	}
	d := s.fresh()
	d.Passenger = prev.Passenger
	d.Trip = p.Trip
	if d.Trip.Passengers == 0 {
		d.Trip.Passengers = 1
	}

	trip, verr := ValidateTrip(p.Trip, s.Location, s.Area)
	if verr != nil {
		return d, s.save(ctx, visitor, &d)
	}
	d.Trip = trip
	d.Step = models.StepServiceSelection
	if p.ServiceID != "" {
		if err := s.selectService(ctx, &d, p.ServiceID, trip.DurationHours, p.Lang); err != nil {
			d.Step = models.StepServiceSelection
			d.LastError = draftError(err)
		}
	}
	utils.LogEvent(utils.RequestIDFrom(ctx), "wizard", "start", "draft="+d.ID+" step="+string(d.Step))
	return d, s.save(ctx, visitor, &d)
}

// SubmitTrip validates the trip form and moves to service selection. A changed trip invalidates
// the vehicle options; the chosen service and passenger details are kept.
func (s *WizardService) SubmitTrip(ctx context.Context, visitor string, trip models.TripDetails) (models.BookingDraft, error) {
	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if err := stepError(d, models.StepTripDetails, models.StepServiceSelection, models.StepVehicleSelection, models.StepPassengerPayment); err != nil {
		return d, err
	}

	valid, verr := ValidateTrip(trip, s.Location, s.Area)
	if verr != nil {
		d.Trip = valid
		d.Step = models.StepTripDetails
		return s.fail(ctx, visitor, &d, verr)
	}
	if valid != d.Trip {
		d.Options = nil
		d.NoVehicles = false
		d.Vehicle = nil
		d.EstimatedPrice = 0
	}
	d.Trip = valid
	d.Step = models.StepServiceSelection
	d.LastError = nil
	return d, s.save(ctx, visitor, &d)
}

// SubmitTripForm is SubmitTrip for raw form values. A malformed number is recorded on the draft
// like any other validation failure.
func (s *WizardService) SubmitTripForm(ctx context.Context, visitor string, v url.Values) (models.BookingDraft, error) {
	trip, perr := TripFromValues(v)
	if perr == nil {
		return s.SubmitTrip(ctx, visitor, trip)
	}

	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if err := stepError(d, models.StepTripDetails, models.StepServiceSelection, models.StepVehicleSelection, models.StepPassengerPayment); err != nil {
		return d, err
	}
	d.Trip = trip
	d.Step = models.StepTripDetails
	return s.fail(ctx, visitor, &d, perr)
}

// SelectService picks a service and loads the matching vehicles. Hourly services need a
// duration, either passed here or already on the trip.
func (s *WizardService) SelectService(ctx context.Context, visitor, serviceID string, durationHours int, lang string) (models.BookingDraft, error) {
	ctx, span := tracer.Start(ctx, "WizardService.SelectService")
	defer span.End()
	span.SetAttributes(attribute.String("service", serviceID))

	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if err := stepError(d, models.StepServiceSelection, models.StepVehicleSelection, models.StepPassengerPayment); err != nil {
		return d, err
	}
	if err := s.selectService(ctx, &d, serviceID, durationHours, lang); err != nil {
		return s.fail(ctx, visitor, &d, err)
	}
	return d, s.save(ctx, visitor, &d)
}

func (s *WizardService) selectService(ctx context.Context, d *models.BookingDraft, serviceID string, durationHours int, lang string) error {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return domain.ValidationError{Field: "service", Msg: "choose a service"}
	}
	svc, err := s.Catalog.GetService(ctx, lang, serviceID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.ValidationError{Field: "service", Msg: "unknown service", Err: err}
		}
		return err
	}

	trip := d.Trip
	if svc.Hourly {
		if durationHours != 0 {
			trip.DurationHours = durationHours
		}
		if trip.DurationHours < 1 || trip.DurationHours > maxDurationHours {
			return domain.ValidationError{Field: "duration_hours", Msg: "duration must be between 1 and 24 hours"}
		}
	} else {
		trip.DurationHours = 0
	}

	vehicles, err := s.Catalog.ListVehicles(ctx, svc.ID, trip)
	if err != nil {
		return err
	}
	d.Trip = trip
	d.Service = &svc
	d.Options = s.Catalog.Match(svc.ID, vehicles, trip)
	d.NoVehicles = len(d.Options) == 0
	d.Vehicle = nil
	d.EstimatedPrice = 0
	d.Step = models.StepVehicleSelection
	d.LastError = nil
	return nil
}

// SelectVehicle accepts only a vehicle from the current options.
func (s *WizardService) SelectVehicle(ctx context.Context, visitor, vehicleID string) (models.BookingDraft, error) {
	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if err := stepError(d, models.StepVehicleSelection, models.StepPassengerPayment); err != nil {
		return d, err
	}
	opt, ok := d.Option(strings.TrimSpace(vehicleID))
	if !ok {
		return s.fail(ctx, visitor, &d, domain.ValidationError{Field: "vehicle", Msg: "vehicle is not offered for this trip"})
	}
	v := opt.Vehicle
	d.Vehicle = &v
	d.EstimatedPrice = v.BasePrice
	d.Step = models.StepPassengerPayment
	d.LastError = nil
	return d, s.save(ctx, visitor, &d)
}

// SubmitPassenger validates the contact details and submits the frozen draft. Calls that overlap
// for the same visitor share one reservation request. A draft that is already confirmed is
// returned as is.
func (s *WizardService) SubmitPassenger(ctx context.Context, visitor string, p models.Passenger, method, lang string) (models.BookingDraft, error) {
	v, err, shared := s.inflight.Do(visitor, func() (any, error) {
		// the shared call must outlive the first caller's request
		return s.submit(context.WithoutCancel(ctx), visitor, p, method, lang)
	})
	if shared {
		utils.LogEvent(utils.RequestIDFrom(ctx), "wizard", "submit_shared", "visitor="+visitor)
	}
	d, _ := v.(models.BookingDraft)
	return d, err
}

func (s *WizardService) submit(ctx context.Context, visitor string, p models.Passenger, method, lang string) (models.BookingDraft, error) {
	ctx, span := tracer.Start(ctx, "WizardService.SubmitPassenger")
	defer span.End()

	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if d.Step == models.StepConfirmation {
		return d, nil
	}
	if err := stepError(d, models.StepPassengerPayment); err != nil {
		return d, err
	}
	if d.Service == nil || d.Vehicle == nil {
		d.Step = models.StepVehicleSelection
		return s.fail(ctx, visitor, &d, domain.ValidationError{Field: "vehicle", Msg: "choose a vehicle"})
	}

	passenger, verr := ValidatePassenger(p)
	d.Passenger = passenger
	if verr != nil {
		return s.fail(ctx, visitor, &d, verr)
	}
	pm, perr := models.ParsePaymentMethod(method)
	if perr != nil {
		return s.fail(ctx, visitor, &d, domain.ValidationError{Field: "payment_method", Msg: "choose a payment method", Err: perr})
	}
	d.PaymentMethod = pm

	// the visitor lock is per process; the claim also covers replicas sharing the store
	claimed, err := s.Store.Claim(ctx, visitor, storage.KeySubmit, submitClaimTTL)
	if err != nil {
		return d, domain.InternalError{Msg: "claim submission", Err: err}
	}
	if !claimed {
		if cur, lerr := s.load(ctx, visitor); lerr == nil && cur.Step == models.StepConfirmation {
			return cur, nil
		}
		utils.LogEvent(utils.RequestIDFrom(ctx), "wizard", "submit_busy", "visitor="+visitor)
		return d, domain.ConflictError{Resource: "booking", Msg: "submission already in progress"}
	}
	if cur, lerr := s.load(ctx, visitor); lerr == nil && cur.Step == models.StepConfirmation {
		return cur, nil
	}

	token := ""
	if s.Tokens != nil {
		token = s.Tokens.Bearer(ctx, visitor)
	}
	span.SetAttributes(attribute.String("draft_id", d.ID), attribute.String("vehicle_id", d.Vehicle.ID))
	res, err := s.Reservations.CreateReservation(ctx, token, reservationRequest(d, lang))
	if err != nil {
		span.RecordError(err)
		utils.LogError(utils.RequestIDFrom(ctx), "wizard", "submit", err)
		if derr := s.Store.Delete(ctx, visitor, storage.KeySubmit); derr != nil {
			utils.LogError(utils.RequestIDFrom(ctx), "wizard", "release_claim", derr)
		}
		if domain.IsSlotUnavailable(err) {
			s.reselect(ctx, &d)
		}
		return s.fail(ctx, visitor, &d, err)
	}

	d.Confirmation = confirmationFrom(res, d, s.now())
	d.Step = models.StepConfirmation
	d.LastError = nil
	utils.LogEvent(utils.RequestIDFrom(ctx), "wizard", "confirmed", "draft="+d.ID+" booking="+d.Confirmation.BookingNumber)
	return d, s.save(ctx, visitor, &d)
}

// reselect sends the draft back to vehicle selection after a slot conflict. When the refresh
// fails the taken vehicle is dropped from the old options instead.
func (s *WizardService) reselect(ctx context.Context, d *models.BookingDraft) {
	taken := d.Vehicle.ID
	d.Vehicle = nil
	d.EstimatedPrice = 0
	d.Step = models.StepVehicleSelection

	vehicles, err := s.Catalog.ListVehicles(ctx, d.Service.ID, d.Trip)
	if err != nil {
		utils.LogError(utils.RequestIDFrom(ctx), "wizard", "refresh_options", err)
		kept := d.Options[:0]
		for _, o := range d.Options {
			if o.Vehicle.ID != taken {
				kept = append(kept, o)
			}
		}
		d.Options = kept
	} else {
		d.Options = s.Catalog.Match(d.Service.ID, vehicles, d.Trip)
	}
	d.NoVehicles = len(d.Options) == 0
}

func reservationRequest(d models.BookingDraft, lang string) apiclient.ReservationRequest {
	return apiclient.ReservationRequest{
		DraftID:        d.ID,
		ServiceID:      d.Service.ID,
		VehicleID:      d.Vehicle.ID,
		TripType:       string(d.Trip.TripType),
		Pickup:         apiclient.AddressDTO(d.Trip.Pickup),
		Dropoff:        apiclient.AddressDTO(d.Trip.Dropoff),
		Date:           d.Trip.Date,
		Time:           d.Trip.Time,
		ReturnDate:     d.Trip.ReturnDate,
		ReturnTime:     d.Trip.ReturnTime,
		DurationHours:  d.Trip.DurationHours,
		Passengers:     d.Trip.Passengers,
		Luggage:        d.Trip.Luggage,
		Passenger:      apiclient.PassengerDTO(d.Passenger),
		PaymentMethod:  string(d.PaymentMethod),
		EstimatedPrice: d.EstimatedPrice,
		Lang:           lang,
	}
}

// confirmationFrom takes the price from the server: the payment value, then the reservation
// total, and only when the server sent neither the estimate the visitor saw.
func confirmationFrom(res apiclient.ReservationResponse, d models.BookingDraft, now time.Time) *models.Confirmation {
	method := d.PaymentMethod
	if pm, err := models.ParsePaymentMethod(res.Payment.Method); err == nil {
		method = pm
	}
	price := float64(res.Payment.Data.Value)
	if price <= 0 {
		price = float64(res.Reservation.Total)
	}
	if price <= 0 {
		price = d.EstimatedPrice
	}
	status := res.Reservation.Status
	if status == "" {
		status = "pending"
	}
	return &models.Confirmation{
		BookingNumber: res.Number(),
		Status:        status,
		Method:        method,
		Price:         utils.RoundCents(price),
		Instructions: models.PaymentInstructions{
			Entity:    res.Payment.Data.Entity,
			Reference: res.Payment.Data.Reference,
			Value:     utils.RoundCents(float64(res.Payment.Data.Value)),
			Phone:     res.Payment.Data.Phone,
		},
		ConfirmedAt: now,
	}
}

// Back moves one step back without clearing anything. A confirmed booking cannot be reopened.
func (s *WizardService) Back(ctx context.Context, visitor string) (models.BookingDraft, error) {
	unlock := s.lock(visitor)
	defer unlock()

	d, err := s.load(ctx, visitor)
	if err != nil {
		return d, err
	}
	if d.Step == models.StepConfirmation {
		return d, domain.ValidationError{Field: "step", Msg: "booking is already confirmed"}
	}
	d.Step = d.Step.Previous()
	d.LastError = nil
	return d, s.save(ctx, visitor, &d)
}

// Reset starts a new draft, keeping the passenger contact for convenience.
func (s *WizardService) Reset(ctx context.Context, visitor string) (models.BookingDraft, error) {
	unlock := s.lock(visitor)
	defer unlock()

	prev, err := s.load(ctx, visitor)
	if err != nil {
		return prev, err
	}
	if err := s.release(ctx, visitor); err != nil {
		return prev, err
	}
	d := s.fresh()
	d.Passenger = prev.Passenger
	return d, s.save(ctx, visitor, &d)
}

// release drops the submit claim left by the previous draft's confirmation.
func (s *WizardService) release(ctx context.Context, visitor string) error {
	if err := s.Store.Delete(ctx, visitor, storage.KeySubmit); err != nil {
		return domain.InternalError{Msg: "release submission", Err: err}
	}
	return nil
}
