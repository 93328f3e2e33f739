package server

import (
	"net/http"
	"strings"

	quotedomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateQuote(c *gin.Context) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	var req quotedomain.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.OrgID = orgID

	item, err := s.quoteSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (s *Server) GetQuoteByID(c *gin.Context) {
	orgID, id, ok := s.quoteRequestIDs(c)
	if !ok {
		return
	}

	item, err := s.quoteSvc.Get(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) UpdateQuote(c *gin.Context) {
	orgID, id, ok := s.quoteRequestIDs(c)
	if !ok {
		return
	}

	var req quotedomain.UpdateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.OrgID = orgID
	req.QuoteID = id

	item, err := s.quoteSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) SendQuote(c *gin.Context) {
	orgID, id, ok := s.quoteRequestIDs(c)
	if !ok {
		return
	}

	item, err := s.quoteSvc.Send(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) AcceptQuote(c *gin.Context) {
	orgID, id, ok := s.quoteRequestIDs(c)
	if !ok {
		return
	}

	item, err := s.quoteSvc.Accept(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) RejectQuote(c *gin.Context) {
	orgID, id, ok := s.quoteRequestIDs(c)
	if !ok {
		return
	}

	item, err := s.quoteSvc.Reject(c.Request.Context(), orgID, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) quoteRequestIDs(c *gin.Context) (snowflake.ID, snowflake.ID, bool) {
	orgID, ok := orgIDFromContext(c)
	if !ok {
		AbortWithError(c, ErrInvalidRequest)
		return 0, 0, false
	}
	id, err := snowflake.ParseString(strings.TrimSpace(c.Param("id")))
	if err != nil || id == 0 {
		AbortWithError(c, ErrInvalidRequest)
		return 0, 0, false
	}
	return orgID, id, true
}
