package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	checkoutdomain "github.com/smallbiznis/lodgia/internal/checkout/domain"
	pricingdomain "github.com/smallbiznis/lodgia/internal/pricing/domain"
)

func (s *Server) registerPricingRoutes() {
	group := s.engine.Group("/api/pricing")
	group.GET("/settings", s.GetPricingSettings)
	group.PUT("/settings", s.SavePricingSettings)
	group.GET("/quote/hourly", s.QuoteHourly)
	group.GET("/quote/overnight", s.QuoteOvernight)
}

func (s *Server) GetPricingSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.pricingSvc.Current(c.Request.Context()))
}

func (s *Server) SavePricingSettings(c *gin.Context) {
	var settings pricingdomain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid request body"))
		return
	}

	if err := s.pricingSvc.Save(c.Request.Context(), settings, actor(c)); err != nil {
		AbortWithError(c, checkoutdomain.Classify(err))
		return
	}
	c.JSON(http.StatusOK, s.pricingSvc.Current(c.Request.Context()))
}

type hourlyQuoteQuery struct {
	RoomType string    `form:"room_type"`
	StartAt  time.Time `form:"start_at" time_format:"2006-01-02T15:04:05Z07:00"`
	Now      time.Time `form:"now" time_format:"2006-01-02T15:04:05Z07:00"`
}

type hourlyQuoteResponse struct {
	BillableHours int   `json:"billable_hours"`
	Charge        int64 `json:"charge"`
}

func (s *Server) QuoteHourly(c *gin.Context) {
	var query hourlyQuoteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid query"))
		return
	}
	if query.StartAt.IsZero() {
		AbortWithError(c, checkoutdomain.ValidationError("start_at is required"))
		return
	}
	if query.Now.IsZero() {
		query.Now = time.Now().UTC()
	}

	ctx := c.Request.Context()
	c.JSON(http.StatusOK, hourlyQuoteResponse{
		BillableHours: s.pricingSvc.BillableHours(ctx, query.StartAt, query.Now, query.RoomType),
		Charge:        s.pricingSvc.HourlyCharge(ctx, query.StartAt, query.Now, query.RoomType),
	})
}

type overnightQuoteQuery struct {
	RoomType    string    `form:"room_type"`
	CheckIn     time.Time `form:"check_in" time_format:"2006-01-02T15:04:05Z07:00"`
	Nights      int       `form:"nights"`
	NightlyRate int64     `form:"nightly_rate"`
	DailyRate   int64     `form:"daily_rate"`
	Now         time.Time `form:"now" time_format:"2006-01-02T15:04:05Z07:00"`
}

func (s *Server) QuoteOvernight(c *gin.Context) {
	var query overnightQuoteQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, checkoutdomain.ValidationError("invalid query"))
		return
	}
	if query.CheckIn.IsZero() {
		AbortWithError(c, checkoutdomain.ValidationError("check_in is required"))
		return
	}
	if query.Nights <= 0 {
		AbortWithError(c, checkoutdomain.ValidationError("nights must be positive"))
		return
	}
	if query.Now.IsZero() {
		query.Now = time.Now().UTC()
	}

	breakdown := s.pricingSvc.OvernightBreakdown(
		c.Request.Context(),
		query.CheckIn, query.Nights, query.RoomType,
		query.NightlyRate, query.Now, query.DailyRate,
	)
	c.JSON(http.StatusOK, breakdown)
}
