package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/pkg/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const numberAttempts = 5

const numberSavePoint = "quote_number"

// insertWithNumber persists the quote under a freshly generated number,
// retrying on the (org_id, number) unique index when a collision hits. Each
// attempt runs under a savepoint: postgres aborts the surrounding transaction
// on a constraint violation, so the failed insert must be rolled back before
// the next attempt can run.
func (s *Service) insertWithNumber(ctx context.Context, tx *gorm.DB, quote *domain.Quote) error {
	prefix := strings.TrimSpace(s.settings.Get().QuoteNumberPrefix)
	if prefix == "" {
		prefix = "QT"
	}
	year := s.clock.Now().Year()

	var lastErr error
	for attempt := 0; attempt < numberAttempts; attempt++ {
		quote.Number = generateNumber(prefix, year)
		if err := tx.SavePoint(numberSavePoint).Error; err != nil {
			return err
		}
		err := s.repo.Insert(ctx, tx, quote)
		if err == nil {
			return nil
		}
		if !db.IsDuplicateKeyErr(err) {
			return err
		}
		if err := tx.RollbackTo(numberSavePoint).Error; err != nil {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("quote number generation exhausted retries: %w", lastErr)
}

// generateNumber is a package variable so collision handling is testable.
var generateNumber = func(prefix string, year int) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return fmt.Sprintf("%s-%d-%s", prefix, year, suffix)
}
