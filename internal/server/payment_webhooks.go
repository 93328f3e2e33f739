package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	obsmetrics "github.com/Pathan99z/rc-convergio-b-sub001/internal/observability/metrics"
	reconciledomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/reconcile/domain"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) HandlePaymentWebhook(c *gin.Context) {
	provider := strings.ToLower(strings.TrimSpace(c.Param("provider")))
	started := time.Now()

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		s.webhookMetrics.ObserveEvent(provider, obsmetrics.WebhookOutcomeRejected)
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.reconcileSvc.IngestWebhook(c.Request.Context(), provider, payload, c.Request.Header)
	s.webhookMetrics.ObserveDuration(provider, time.Since(started).Seconds())
	if err != nil {
		status, _ := mapError(err)
		outcome := obsmetrics.WebhookOutcomeFailed
		if status < http.StatusInternalServerError {
			outcome = obsmetrics.WebhookOutcomeRejected
		}
		s.webhookMetrics.ObserveEvent(provider, outcome)
		s.log.Warn("webhook rejected",
			zap.String("provider", provider),
			zap.Int("status", status),
			zap.Error(err),
		)
		AbortWithError(c, err)
		return
	}

	outcome := obsmetrics.WebhookOutcomeProcessed
	if result.Status == reconciledomain.StatusDuplicate {
		outcome = obsmetrics.WebhookOutcomeDuplicate
	}
	s.webhookMetrics.ObserveEvent(provider, outcome)

	c.JSON(http.StatusOK, result)
}
