package server

import (
	"io"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) registerBookingRoutes() {
	group := s.engine.Group("/api/bookings")
	group.GET("/:booking_id/invoices", s.ListBookingInvoices)
	group.GET("/:booking_id/receipt", s.RenderBookingReceipt)
}

func bookingIDParam(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("booking_id"))
	if err != nil || id <= 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) ListBookingInvoices(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	invoices, err := s.invoiceRepo.ListByBooking(c.Request.Context(), s.db, bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var total int64
	for _, inv := range invoices {
		if inv.Paid {
			total += inv.Amount
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"invoices":   invoices,
		"paid_total": total,
	})
}

func (s *Server) RenderBookingReceipt(c *gin.Context) {
	bookingID, ok := bookingIDParam(c)
	if !ok {
		return
	}

	reader, err := s.receiptSvc.Render(c.Request.Context(), bookingID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="receipt-`+bookingID.String()+`.pdf"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}
