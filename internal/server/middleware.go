package server

import (
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

const orgIDContextKey = "org_id"

// OrgContext resolves the tenant from the X-Org-ID header. Every quote API
// call is tenant-scoped; requests without a valid org id never reach a
// handler.
func (s *Server) OrgContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("X-Org-ID"))
		if raw == "" {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		orgID, err := snowflake.ParseString(raw)
		if err != nil || orgID == 0 {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		c.Set(orgIDContextKey, orgID)
		c.Next()
	}
}

func orgIDFromContext(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(orgIDContextKey)
	if !ok {
		return 0, false
	}
	orgID, ok := value.(snowflake.ID)
	return orgID, ok
}
