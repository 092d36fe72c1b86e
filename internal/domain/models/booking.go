package models

import (
	"fmt"
	"strings"
	"time"
)

// Step is a state of the booking wizard.
type Step string

const (
	StepTripDetails      Step = "trip_details"
	StepServiceSelection Step = "service_selection"
	StepVehicleSelection Step = "vehicle_selection"
	StepPassengerPayment Step = "passenger_payment"
	StepConfirmation     Step = "confirmation"
)

var stepOrder = []Step{
	StepTripDetails,
	StepServiceSelection,
	StepVehicleSelection,
	StepPassengerPayment,
	StepConfirmation,
}

// Steps lists the wizard steps in order.
func Steps() []Step {
	return append([]Step(nil), stepOrder...)
}

// Index returns the position of the step in the wizard, or -1.
func (s Step) Index() int {
	for i, st := range stepOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Previous returns the step before s; the first step is its own predecessor.
func (s Step) Previous() Step {
	i := s.Index()
	if i <= 0 {
		return StepTripDetails
	}
	return stepOrder[i-1]
}

// PaymentMethod is the closed set of supported payment methods.
type PaymentMethod string

const (
	PaymentMBWay PaymentMethod = "mbway"
	PaymentMB    PaymentMethod = "mb"
	PaymentCard  PaymentMethod = "card"
)

func ParsePaymentMethod(s string) (PaymentMethod, error) {
	switch PaymentMethod(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentMBWay:
		return PaymentMBWay, nil
	case PaymentMB:
		return PaymentMB, nil
	case PaymentCard:
		return PaymentCard, nil
	default:
		return "", fmt.Errorf("unknown payment method %q", s)
	}
}

// InstructionKind tells which payment instruction fields the method produces.
type InstructionKind string

const (
	InstructionsWallet        InstructionKind = "wallet"
	InstructionsBankReference InstructionKind = "bank_reference"
	InstructionsCard          InstructionKind = "card"
)

func (m PaymentMethod) Instructions() InstructionKind {
	switch m {
	case PaymentMBWay:
		return InstructionsWallet
	case PaymentMB:
		return InstructionsBankReference
	case PaymentCard:
		return InstructionsCard
	}
	panic("unreachable payment method " + string(m))
}

// Passenger is the lead passenger contact of a booking.
type Passenger struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	SpecialRequests string `json:"special_requests,omitempty"`
}

// PaymentInstructions is what the customer needs to complete payment: entity/reference/value for
// bank references, phone/reference for wallets.
type PaymentInstructions struct {
	Entity    string  `json:"entity,omitempty"`
	Reference string  `json:"reference,omitempty"`
	Value     float64 `json:"value,omitempty"`
	Phone     string  `json:"phone,omitempty"`
}

// Confirmation is the server-issued result of a successful reservation.
type Confirmation struct {
	BookingNumber string              `json:"booking_number"`
	Status        string              `json:"status"`
	Method        PaymentMethod       `json:"method"`
	Price         float64             `json:"price"`
	Instructions  PaymentInstructions `json:"instructions"`
	ConfirmedAt   time.Time           `json:"confirmed_at"`
}

// DraftError annotates a draft with the last failure shown to the user.
type DraftError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// BookingDraft is the wizard-owned aggregate, persisted per visitor.
type BookingDraft struct {
	ID             string         `json:"id"`
	Step           Step           `json:"step"`
	Trip           TripDetails    `json:"trip"`
	Service        *Service       `json:"service,omitempty"`
	Options        []VehicleMatch `json:"options,omitempty"`
	NoVehicles     bool           `json:"no_vehicles"`
	Vehicle        *Vehicle       `json:"vehicle,omitempty"`
	EstimatedPrice float64        `json:"estimated_price,omitempty"`
	Passenger      Passenger      `json:"passenger"`
	PaymentMethod  PaymentMethod  `json:"payment_method,omitempty"`
	Confirmation   *Confirmation  `json:"confirmation,omitempty"`
	LastError      *DraftError    `json:"last_error,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// Option returns the matched vehicle with the given id.
func (d BookingDraft) Option(vehicleID string) (VehicleMatch, bool) {
	for _, o := range d.Options {
		if o.Vehicle.ID == vehicleID {
			return o, true
		}
	}
	return VehicleMatch{}, false
}
