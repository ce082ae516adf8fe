package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) registerRoomRoutes() {
	s.engine.GET("/api/rooms/board", s.ListRoomBoard)
}

func (s *Server) ListRoomBoard(c *gin.Context) {
	rows, err := s.roomRepo.ListBoard(c.Request.Context(), s.db)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rows})
}
