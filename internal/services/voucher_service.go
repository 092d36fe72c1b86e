package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/phpdave11/gofpdf"

	"transfers/internal/domain"
	"transfers/internal/domain/models"
	"transfers/internal/i18n"
	"transfers/internal/utils"
)

// VoucherService renders the confirmation of a booking as a one-page PDF.
type VoucherService struct {
	Translator *i18n.Translator
	Currency   string
}

// Render returns the PDF and its download name. Only confirmed drafts have a voucher.
func (s VoucherService) Render(d models.BookingDraft, lang string) ([]byte, string, error) {
	if d.Step != models.StepConfirmation || d.Confirmation == nil {
		return nil, "", domain.NotFoundError{Resource: "voucher"}
	}
	c := d.Confirmation
	t := func(key string, args ...any) string { return s.Translator.T(lang, key, args...) }

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(t("voucher.title")), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, tr(strings.ToUpper(t("voucher.title"))))
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := [][2]string{
		{t("voucher.booking_number"), c.BookingNumber},
		{t("voucher.status"), c.Status},
		{t("voucher.service"), serviceTitle(d.Service)},
		{t("voucher.vehicle"), vehicleName(d.Vehicle)},
		{t("booking.trip.pickup"), d.Trip.Pickup.Text},
		{t("booking.trip.dropoff"), d.Trip.Dropoff.Text},
		{t("voucher.when"), d.Trip.Date + " " + d.Trip.Time},
	}
	if d.Trip.IsRoundTrip() {
		lines = append(lines, [2]string{t("voucher.return"), d.Trip.ReturnDate + " " + d.Trip.ReturnTime})
	}
	if d.Trip.DurationHours > 0 {
		lines = append(lines, [2]string{t("booking.service.duration"), strconv.Itoa(d.Trip.DurationHours)})
	}
	lines = append(lines,
		[2]string{t("booking.trip.passengers"), strconv.Itoa(d.Trip.Passengers)},
		[2]string{t("booking.passenger.name"), d.Passenger.Name},
		[2]string{t("booking.passenger.phone"), d.Passenger.Phone},
	)
	for _, l := range lines {
		pdf.Cell(0, 7, tr(fmt.Sprintf("%-18s: %s", l[0], safe(l[1], "-"))))
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.Cell(0, 8, tr(t("booking.confirmation.price", utils.FormatPrice(c.Price, s.Currency))))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 7, tr(t("booking.passenger.method")+": "+t("payment."+string(c.Method))))
	pdf.Ln(7)
	for _, l := range instructionLines(c, s.Currency, t) {
		pdf.Cell(0, 7, tr(l))
		pdf.Ln(7)
	}

	if d.Passenger.SpecialRequests != "" {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, tr(t("booking.passenger.requests")+": "+d.Passenger.SpecialRequests), "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", domain.InternalError{Msg: "render voucher", Err: err}
	}
	filename := fmt.Sprintf("VOUCHER_%s.pdf", safeFilenamePart(c.BookingNumber))
	return buf.Bytes(), filename, nil
}

func instructionLines(c *models.Confirmation, currency string, t func(string, ...any) string) []string {
	in := c.Instructions
	switch c.Method.Instructions() {
	case models.InstructionsBankReference:
		return []string{
			t("booking.confirmation.entity") + ": " + safe(in.Entity, "-"),
			t("booking.confirmation.reference") + ": " + safe(in.Reference, "-"),
			t("booking.confirmation.value") + ": " + utils.FormatPrice(in.Value, currency),
		}
	case models.InstructionsWallet:
		return []string{
			t("booking.confirmation.phone") + ": " + safe(in.Phone, "-"),
			t("booking.confirmation.wallet_hint"),
		}
	case models.InstructionsCard:
		return []string{t("booking.confirmation.card_hint")}
	}
	return nil
}

func serviceTitle(s *models.Service) string {
	if s == nil {
		return ""
	}
	return s.Title
}

func vehicleName(v *models.Vehicle) string {
	if v == nil {
		return ""
	}
	if v.Category != "" {
		return v.Name + " (" + v.Category + ")"
	}
	return v.Name
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
