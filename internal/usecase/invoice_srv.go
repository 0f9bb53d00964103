package usecase

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"travel-booking/internal/data/entity"
	"travel-booking/internal/data/repository"
	"travel-booking/pkg/utils"

	"github.com/google/uuid"
	"github.com/phpdave11/gofpdf"
	"go.uber.org/zap"
)

type InvoiceService interface {
	// Render produces the booking's invoice PDF and a download
	// filename. Only confirmed or completed bookings have invoices.
	// Re-rendering the same booking yields an identical document
	// except for the generation timestamp.
	Render(ctx context.Context, bookingID string) ([]byte, string, error)
}

type invoiceService struct {
	repo    *repository.Repository
	company utils.CompanyConfig
	now     func() time.Time
	log     *zap.Logger
}

func NewInvoiceService(repo *repository.Repository, company utils.CompanyConfig, log *zap.Logger) InvoiceService {
	return &invoiceService{
		repo:    repo,
		company: company,
		now:     time.Now,
		log:     log.With(zap.String("service", "invoice")),
	}
}

// invoiceData is everything the layout needs, resolved up front so the
// PDF build itself is a pure function of this struct plus the clock.
type invoiceData struct {
	InvoiceNo     string
	GeneratedAt   time.Time
	Company       utils.CompanyConfig
	OrderRef      string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	TripTitle     string
	DepartDate    string
	Travelers     int
	UnitPrice     int64
	Discount      int64
	TotalPrice    int64
	AmountPaid    int64
	BalanceDue    int64
	PaymentRef    string
	PaidAt        time.Time
}

func (s *invoiceService) Render(ctx context.Context, bookingID string) ([]byte, string, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, "", fmt.Errorf("%w: malformed booking id %s", ErrInvalidInput, bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, "", fmt.Errorf("find booking: %w", ErrServiceUnavailable)
	}
	if booking == nil {
		return nil, "", fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
	}

	if booking.State != entity.BookingStateConfirmed && booking.State != entity.BookingStateCompleted {
		return nil, "", fmt.Errorf("booking %s is %s: %w", bookingID, booking.State, ErrInvoiceNotReady)
	}

	data := invoiceData{
		InvoiceNo:     invoiceNumber(booking.OrderRef),
		GeneratedAt:   s.now(),
		Company:       s.company,
		OrderRef:      booking.OrderRef,
		CustomerName:  booking.CustomerName,
		CustomerEmail: booking.CustomerEmail,
		CustomerPhone: booking.CustomerPhone,
		Travelers:     booking.Travelers,
		Discount:      booking.Discount,
		TotalPrice:    booking.TotalPrice,
		AmountPaid:    booking.AmountPaid,
		BalanceDue:    booking.BalanceDue,
	}

	if booking.Travelers > 0 {
		data.UnitPrice = (booking.TotalPrice + booking.Discount) / int64(booking.Travelers)
	}

	if pkg, err := s.repo.Package.FindByID(ctx, booking.PackageID); err == nil && pkg != nil {
		data.TripTitle = pkg.Title
	}
	if departure, err := s.repo.Departure.FindByID(ctx, booking.DepartureID); err == nil && departure != nil {
		data.DepartDate = departure.DepartDate.Format("02 Jan 2006")
	}
	if pay, err := s.repo.Payment.LatestSuccessByBookingID(ctx, booking.ID); err == nil && pay != nil {
		data.PaymentRef = pay.GatewayRef
		data.PaidAt = pay.CreatedAt
	}

	pdfBytes, err := buildInvoicePDF(data)
	if err != nil {
		s.log.Error("Failed to render invoice", zap.Error(err), zap.String("booking_id", bookingID))
		return nil, "", fmt.Errorf("render invoice for booking %s: %w", bookingID, err)
	}

	s.log.Info("Invoice rendered",
		zap.String("booking_id", bookingID),
		zap.String("invoice_no", data.InvoiceNo),
	)

	filename := fmt.Sprintf("%s.pdf", data.InvoiceNo)
	return pdfBytes, filename, nil
}

// invoiceNumber derives the invoice number from the order reference so
// re-renders always agree: TRV-20260115-093012-4821 -> INV-20260115-4821.
func invoiceNumber(orderRef string) string {
	parts := strings.Split(orderRef, "-")
	if len(parts) == 4 {
		return fmt.Sprintf("INV-%s-%s", parts[1], parts[3])
	}
	return "INV-" + orderRef
}

func buildInvoicePDF(d invoiceData) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+d.InvoiceNo, false)
	// Pin the document metadata to the render clock so re-renders of
	// the same booking produce identical bytes.
	pdf.SetCreationDate(d.GeneratedAt)
	pdf.SetModificationDate(d.GeneratedAt)
	pdf.AddPage()

	// Header / identity block
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, d.Company.Name)
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	pdf.Cell(0, 5, d.Company.Address)
	pdf.Ln(5)
	pdf.Cell(0, 5, fmt.Sprintf("%s | %s", d.Company.Email, d.Company.Phone))
	pdf.Ln(5)
	if d.Company.GSTIN != "" {
		pdf.Cell(0, 5, "GSTIN: "+d.Company.GSTIN)
		pdf.Ln(5)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, "TAX INVOICE")
	pdf.Ln(12)

	// Invoice metadata
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Invoice No  : "+d.InvoiceNo)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Order Ref   : "+d.OrderRef)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date        : "+d.GeneratedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(10)

	// Bill-to block
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Billed To:")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, d.CustomerName)
	pdf.Ln(6)
	pdf.Cell(0, 6, d.CustomerEmail)
	pdf.Ln(6)
	pdf.Cell(0, 6, d.CustomerPhone)
	pdf.Ln(10)

	// Line-item table
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(80, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, "Unit Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, "Discount", "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "1", 1, "R", false, 0, "")

	desc := d.TripTitle
	if d.DepartDate != "" {
		desc = fmt.Sprintf("%s (departing %s)", d.TripTitle, d.DepartDate)
	}

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(80, 8, desc, "1", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, fmt.Sprintf("%d", d.Travelers), "1", 0, "C", false, 0, "")
	pdf.CellFormat(35, 8, utils.FormatRupees(d.UnitPrice), "1", 0, "R", false, 0, "")
	pdf.CellFormat(25, 8, utils.FormatRupees(d.Discount), "1", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, utils.FormatRupees(d.TotalPrice), "1", 1, "R", false, 0, "")
	pdf.Ln(6)

	// Totals block
	writeTotal := func(label string, amount int64, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 11)
		pdf.CellFormat(130, 7, "", "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 7, label, "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, utils.FormatRupees(amount), "", 1, "R", false, 0, "")
	}

	writeTotal("Subtotal", d.TotalPrice+d.Discount, false)
	writeTotal("Discount", d.Discount, false)
	writeTotal("Total", d.TotalPrice, true)
	writeTotal("Paid", d.AmountPaid, false)
	writeTotal("Balance Due", d.BalanceDue, true)
	pdf.Ln(6)

	// Amount in words
	pdf.SetFont("Helvetica", "I", 10)
	pdf.MultiCell(0, 5, "Amount paid in words: "+utils.AmountInWords(d.AmountPaid), "", "L", false)
	pdf.Ln(4)

	if d.PaymentRef != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, fmt.Sprintf("Payment reference: %s (received %s)", d.PaymentRef, d.PaidAt.Format("02 Jan 2006")))
		pdf.Ln(8)
	}

	// Terms block
	pdf.SetFont("Helvetica", "B", 10)
	pdf.Cell(0, 6, "Terms & Conditions")
	pdf.Ln(6)
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(0, 4.5,
		"1. Any balance due must be settled no later than 14 days before departure.\n"+
			"2. Deposits are non-refundable once the booking is confirmed.\n"+
			"3. Cancellations within 7 days of departure forfeit the full amount paid.\n"+
			"4. This invoice is system generated and valid without signature.",
		"", "L", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
