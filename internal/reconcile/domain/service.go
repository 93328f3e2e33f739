package domain

import (
	"context"
	"net/http"
)

const (
	StatusOK        = "ok"
	StatusDuplicate = "duplicate"
)

// Result is the normalized acknowledgment returned to the provider.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Service drives one webhook delivery through classification, verification,
// ledger recording, and the state changes it implies, all inside a single
// transaction.
type Service interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (*Result, error)
}
