package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/lodgia/internal/checkout/domain"
)

func (s *Server) registerCheckoutRoutes() {
	group := s.engine.Group("/api/checkout")
	group.POST("/hourly/save", s.SaveHourly)
	group.POST("/hourly/pay", s.PayHourly)
	group.POST("/hourly/cancel", s.CancelHourly)
	group.POST("/overnight/save", s.SaveOvernight)
	group.POST("/overnight/pay", s.PayOvernight)
	group.POST("/overnight/cancel", s.CancelOvernight)
}

type extrasBody struct {
	SoftDrinkQty       int64 `json:"soft_drink_qty"`
	SoftDrinkUnitPrice int64 `json:"soft_drink_unit_price"`
	WaterQty           int64 `json:"water_qty"`
	WaterUnitPrice     int64 `json:"water_unit_price"`
}

func (b extrasBody) input() checkoutdomain.ExtrasInput {
	return checkoutdomain.ExtrasInput{
		SoftDrinkQty:       b.SoftDrinkQty,
		SoftDrinkUnitPrice: b.SoftDrinkUnitPrice,
		WaterQty:           b.WaterQty,
		WaterUnitPrice:     b.WaterUnitPrice,
	}
}

type saveHourlyBody struct {
	BookingID snowflake.ID `json:"booking_id"`
	RoomID    snowflake.ID `json:"room_id"`
	StartAt   time.Time    `json:"start_at"`
	GuestName string       `json:"guest_name"`
	Extras    extrasBody   `json:"extras"`
}

func (s *Server) SaveHourly(c *gin.Context) {
	var body saveHourlyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid request body"))
		return
	}

	result, err := s.checkoutSvc.SaveHourly(c.Request.Context(), checkoutdomain.SaveHourlyRequest{
		BookingID: body.BookingID,
		RoomID:    body.RoomID,
		StartAt:   body.StartAt,
		GuestName: body.GuestName,
		Extras:    body.Extras.input(),
		Actor:     actor(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type payHourlyBody struct {
	BookingID snowflake.ID `json:"booking_id"`
	RoomID    snowflake.ID `json:"room_id"`
	DueAmount int64        `json:"due_amount"`
	Extras    extrasBody   `json:"extras"`
}

func (s *Server) PayHourly(c *gin.Context) {
	var body payHourlyBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid request body"))
		return
	}

	result, err := s.checkoutSvc.PayHourly(c.Request.Context(), checkoutdomain.PayHourlyRequest{
		BookingID: body.BookingID,
		RoomID:    body.RoomID,
		DueAmount: body.DueAmount,
		Extras:    body.Extras.input(),
		Actor:     actor(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelBody struct {
	BookingID snowflake.ID `json:"booking_id"`
	RoomID    snowflake.ID `json:"room_id"`
}

func (s *Server) CancelHourly(c *gin.Context) {
	s.cancel(c, s.checkoutSvc.CancelHourly)
}

func (s *Server) CancelOvernight(c *gin.Context) {
	s.cancel(c, s.checkoutSvc.CancelOvernight)
}

func (s *Server) cancel(c *gin.Context, op func(ctx context.Context, req checkoutdomain.CancelRequest) (checkoutdomain.Result, error)) {
	var body cancelBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid request body"))
		return
	}

	result, err := op(c.Request.Context(), checkoutdomain.CancelRequest{
		BookingID: body.BookingID,
		RoomID:    body.RoomID,
		Actor:     actor(c),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type saveOvernightBody struct {
	BookingID             snowflake.ID `json:"booking_id"`
	RoomID                snowflake.ID `json:"room_id"`
	StartAt               time.Time    `json:"start_at"`
	GuestName             string       `json:"guest_name"`
	Nights                int          `json:"nights"`
	NightlyRate           int64        `json:"nightly_rate"`
	TargetCollectedAmount int64        `json:"target_collected_amount"`
	Extras                extrasBody   `json:"extras"`
}

func (b saveOvernightBody) request(actor string) checkoutdomain.SaveOvernightRequest {
	return checkoutdomain.SaveOvernightRequest{
		BookingID:             b.BookingID,
		RoomID:                b.RoomID,
		StartAt:               b.StartAt,
		GuestName:             b.GuestName,
		Nights:                b.Nights,
		NightlyRate:           b.NightlyRate,
		TargetCollectedAmount: b.TargetCollectedAmount,
		Extras:                b.Extras.input(),
		Actor:                 actor,
	}
}

func (s *Server) SaveOvernight(c *gin.Context) {
	var body saveOvernightBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid request body"))
		return
	}

	result, err := s.checkoutSvc.SaveOvernight(c.Request.Context(), body.request(actor(c)))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type payOvernightBody struct {
	saveOvernightBody
	TotalCharge int64 `json:"total_charge"`
}

func (s *Server) PayOvernight(c *gin.Context) {
	var body payOvernightBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid request body"))
		return
	}

	result, err := s.checkoutSvc.PayOvernight(c.Request.Context(), checkoutdomain.PayOvernightRequest{
		SaveOvernightRequest: body.request(actor(c)),
		TotalCharge:          body.TotalCharge,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
