// Package document renders the client-facing quote document. The storage
// backend is intentionally thin: content is written once under a stable path
// and the quote caches that path.
package document

import (
	"context"

	quotedomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
)

// Generator produces the quote document and returns its storage path.
type Generator interface {
	Generate(ctx context.Context, quote *quotedomain.Quote) (content []byte, path string, err error)
}

// LogoProvider supplies tenant branding for generated documents. A failing
// provider degrades to no logo; it never fails the document.
type LogoProvider interface {
	Logo(ctx context.Context, orgID snowflake.ID) ([]byte, error)
}
