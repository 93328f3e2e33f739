package domain

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
)

// AdapterConfig carries the tenant-scoped provider configuration. Adapters
// are always constructed per tenant; there is no global secret.
type AdapterConfig struct {
	OrgID    snowflake.ID
	Provider string
	Config   map[string]any
}

// AdapterFactory builds per-tenant adapters and offers the stateless payload
// introspection the orchestrator needs before it knows the tenant.
type AdapterFactory interface {
	Provider() string
	// Reference extracts the merchant reference from an unverified payload so
	// the event can be classified and the tenant resolved prior to
	// verification. It must not trust any other field.
	Reference(payload []byte) (string, error)
	NewAdapter(cfg AdapterConfig) (Adapter, error)
}

// Adapter verifies and parses a provider payload for one tenant.
type Adapter interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
}
