// Package receipt renders settlement receipts for settled bookings as PDF.
package receipt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	bookingdomain "github.com/smallbiznis/lodgia/internal/booking/domain"
	appconfig "github.com/smallbiznis/lodgia/internal/config"
	invoicedomain "github.com/smallbiznis/lodgia/internal/invoice/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrBookingNotFound is returned when the booking does not exist.
	ErrBookingNotFound = errors.New("receipt: booking not found")
	// ErrBookingNotSettled is returned when the booking has not been paid out.
	ErrBookingNotSettled = errors.New("receipt: booking not settled")
)

// Data is the flattened content of one receipt.
type Data struct {
	PropertyName  string
	ReceiptNumber string
	GuestName     string
	RoomCode      string
	Kind          string
	CheckedInAt   string
	DepartedAt    string
	Items         []Item
	Total         string
}

// Item is one receipt line.
type Item struct {
	Description string
	Qty         int64
	UnitPrice   string
	Amount      string
}

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	Config      appconfig.Config
	InvoiceRepo invoicedomain.Repository
}

// Service loads a settled booking and renders its receipt.
type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	cfg         appconfig.Config
	invoiceRepo invoicedomain.Repository
}

func NewService(p Params) *Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("receipt.service"),
		cfg:         p.Config,
		invoiceRepo: p.InvoiceRepo,
	}
}

type bookingRow struct {
	ID                snowflake.ID
	Kind              bookingdomain.BookingKind
	Status            bookingdomain.BookingStatus
	CheckedInAt       *time.Time
	ActualDepartureAt *time.Time
	RoomCode          string
	GuestName         *string
}

// Render builds the receipt PDF for a settled booking.
func (s *Service) Render(ctx context.Context, bookingID snowflake.ID) (io.Reader, error) {
	data, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.generate(data)
}

func (s *Service) load(ctx context.Context, bookingID snowflake.ID) (Data, error) {
	var row bookingRow
	err := s.db.WithContext(ctx).Raw(`
		SELECT b.id, b.kind, b.status, b.checked_in_at, b.actual_departure_at,
		       r.code AS room_code, si.guest_name AS guest_name
		FROM bookings b
		JOIN rooms r ON r.id = b.room_id
		LEFT JOIN stay_infos si ON si.booking_id = b.id
		WHERE b.id = ? AND b.deleted_at IS NULL
		LIMIT 1`, bookingID).Scan(&row).Error
	if err != nil {
		return Data{}, err
	}
	if row.ID == 0 {
		return Data{}, ErrBookingNotFound
	}
	if row.Status != bookingdomain.BookingStatusSettled {
		return Data{}, ErrBookingNotSettled
	}

	var extras []bookingdomain.BookingExtra
	if err := s.db.WithContext(ctx).Raw(`
		SELECT item_code, item_name, quantity, unit_price, amount
		FROM booking_extras
		WHERE booking_id = ? AND quantity > 0
		ORDER BY item_code`, bookingID).Scan(&extras).Error; err != nil {
		return Data{}, err
	}

	invoices, err := s.invoiceRepo.ListByBooking(ctx, s.db, bookingID)
	if err != nil {
		return Data{}, err
	}

	data := Data{
		PropertyName:  s.cfg.PropertyName,
		ReceiptNumber: row.ID.String(),
		GuestName:     "Guest",
		RoomCode:      row.RoomCode,
		Kind:          string(row.Kind),
	}
	if row.GuestName != nil && *row.GuestName != "" {
		data.GuestName = *row.GuestName
	}
	if row.CheckedInAt != nil {
		data.CheckedInAt = row.CheckedInAt.Format("2006-01-02 15:04")
	}
	if row.ActualDepartureAt != nil {
		data.DepartedAt = row.ActualDepartureAt.Format("2006-01-02 15:04")
	}

	var total int64
	for _, inv := range invoices {
		if !inv.Paid {
			continue
		}
		total += inv.Amount
		data.Items = append(data.Items, Item{
			Description: "Payment " + inv.IssuedAt.Format("2006-01-02 15:04"),
			Qty:         1,
			UnitPrice:   formatAmount(inv.Amount),
			Amount:      formatAmount(inv.Amount),
		})
	}
	for _, extra := range extras {
		data.Items = append(data.Items, Item{
			Description: extra.ItemName,
			Qty:         extra.Quantity,
			UnitPrice:   formatAmount(extra.UnitPrice),
			Amount:      formatAmount(extra.Amount),
		})
	}
	data.Total = formatAmount(total)
	return data, nil
}

func (s *Service) generate(data Data) (io.Reader, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(20,
		text.NewCol(8, data.PropertyName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
		text.NewCol(4, "Receipt", props.Text{
			Size:  14,
			Align: align.Right,
		}),
	)

	m.AddRow(25,
		col.New(6).Add(
			text.New("Receipt number: "+data.ReceiptNumber, props.Text{Top: 0}),
			text.New("Guest: "+data.GuestName, props.Text{Top: 5}),
			text.New("Room: "+data.RoomCode, props.Text{Top: 10}),
		),
		col.New(6).Add(
			text.New("Rental: "+data.Kind, props.Text{Top: 0}),
			text.New("Checked in: "+data.CheckedInAt, props.Text{Top: 5}),
			text.New("Departed: "+data.DepartedAt, props.Text{Top: 10}),
		),
	)

	m.AddRow(10,
		text.NewCol(6, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, "Qty", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Unit price", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
		text.NewCol(2, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(6, item.Description, props.Text{Size: 9}),
			text.NewCol(2, fmt.Sprintf("%d", item.Qty), props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.UnitPrice, props.Text{Size: 9, Align: align.Right}),
			text.NewCol(2, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(10,
		col.New(8),
		text.NewCol(2, "Total paid", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(doc.GetBytes()), nil
}

// formatAmount renders a minor-unit amount with thousands separators.
func formatAmount(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var out []byte
	for i, c := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return sign + string(out)
}
