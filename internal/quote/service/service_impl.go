package service

import (
	"context"
	"strings"
	"time"

	auditdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/audit/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/clock"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	dealdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/document"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/calc"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	DealRepo  dealdomain.Repository
	Generator document.Generator `optional:"true"`
	AuditSvc  auditdomain.Service
	Settings  *config.PaymentSettingsHolder
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	dealRepo  dealdomain.Repository
	generator document.Generator
	auditSvc  auditdomain.Service
	settings  *config.PaymentSettingsHolder
}

func NewService(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("quote.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		dealRepo:  p.DealRepo,
		generator: p.Generator,
		auditSvc:  p.AuditSvc,
		settings:  p.Settings,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateQuoteRequest) (*domain.Quote, error) {
	if req.OrgID == 0 || req.DealID == 0 {
		return nil, domain.ErrNotFound
	}
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	settings := s.settings.Get()
	if currency == "" {
		currency = settings.DefaultCurrency
	}

	now := s.clock.Now()
	validUntil := now.AddDate(0, 0, settings.QuoteValidityDays)

	quote := &domain.Quote{
		ID:         s.genID.Generate(),
		OrgID:      req.OrgID,
		DealID:     req.DealID,
		Status:     domain.QuoteStatusDraft,
		QuoteType:  domain.QuoteTypePrimary,
		Currency:   currency,
		ValidUntil: &validUntil,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.applyTotals(quote, items, now)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		deal, err := s.dealRepo.FindByID(ctx, tx, req.OrgID, req.DealID)
		if err != nil {
			return err
		}
		if deal == nil {
			return dealdomain.ErrNotFound
		}
		return s.insertWithNumber(ctx, tx, quote)
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, nil, quote, "quote.created", nil)
	return quote, nil
}

func (s *Service) Get(ctx context.Context, orgID, id snowflake.ID) (*domain.Quote, error) {
	quote, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	return quote, nil
}

func (s *Service) Update(ctx context.Context, req domain.UpdateQuoteRequest) (*domain.Quote, error) {
	items, err := buildItems(req.Items)
	if err != nil {
		return nil, err
	}

	var updated *domain.Quote
	err = s.db.Transaction(func(tx *gorm.DB) error {
		quote, err := s.repo.FindByIDForUpdate(ctx, tx, req.OrgID, req.QuoteID)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		if !quote.CanBeModified() {
			return domain.NewTransitionError(quote.Status, domain.QuoteStatusSent)
		}

		if currency := strings.ToUpper(strings.TrimSpace(req.Currency)); currency != "" {
			quote.Currency = currency
		}

		now := s.clock.Now()
		s.applyTotals(quote, items, now)
		// Items changed, so any previously generated document is stale.
		quote.DocumentPath = nil

		for i := range quote.Items {
			quote.Items[i].QuoteID = quote.ID
			quote.Items[i].OrgID = quote.OrgID
		}
		if err := s.repo.ReplaceItems(ctx, tx, quote, quote.Items); err != nil {
			return err
		}
		if err := s.repo.UpdateTotals(ctx, tx, quote); err != nil {
			return err
		}
		updated = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, nil, updated, "quote.updated", nil)
	return updated, nil
}

func (s *Service) Send(ctx context.Context, orgID, id snowflake.ID) (*domain.Quote, error) {
	quote, err := s.repo.FindByID(ctx, s.db, orgID, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	if quote.Status.Terminal() {
		return nil, domain.NewTransitionError(quote.Status, domain.QuoteStatusDraft)
	}

	// Generate the document at most once; updates clear the cached path.
	if quote.DocumentPath == nil && s.generator != nil {
		_, path, err := s.generator.Generate(ctx, quote)
		if err != nil {
			return nil, err
		}
		if err := s.repo.SetDocumentPath(ctx, s.db, orgID, id, path); err != nil {
			return nil, err
		}
		quote.DocumentPath = &path
	}

	quote.Status = domain.QuoteStatusSent
	if err := s.repo.SetStatus(ctx, s.db, quote); err != nil {
		return nil, err
	}

	s.audit(ctx, nil, quote, "quote.sent", nil)
	return quote, nil
}

func (s *Service) Accept(ctx context.Context, orgID, id snowflake.ID) (*domain.Quote, error) {
	var accepted *domain.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		quote, err := s.AcceptWithTx(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		accepted = quote
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accepted, nil
}

// AcceptWithTx applies the acceptance state machine inside the caller's
// transaction. The deal row lock serializes the first-acceptance check with
// the primary flag write, so two concurrent acceptances for one deal cannot
// both claim primary.
func (s *Service) AcceptWithTx(ctx context.Context, tx *gorm.DB, orgID, id snowflake.ID) (*domain.Quote, error) {
	quote, err := s.repo.FindByIDForUpdate(ctx, tx, orgID, id)
	if err != nil {
		return nil, err
	}
	if quote == nil {
		return nil, domain.ErrNotFound
	}
	if quote.Status != domain.QuoteStatusSent {
		return nil, domain.NewTransitionError(quote.Status, domain.QuoteStatusSent)
	}

	deal, err := s.dealRepo.FindByIDForUpdate(ctx, tx, orgID, quote.DealID)
	if err != nil {
		return nil, err
	}
	if deal == nil {
		return nil, dealdomain.ErrNotFound
	}

	acceptedCount, err := s.repo.CountAcceptedByDeal(ctx, tx, orgID, quote.DealID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if acceptedCount == 0 {
		quote.IsPrimary = true
		if err := s.dealRepo.MarkWon(ctx, tx, orgID, deal.ID, now); err != nil {
			return nil, err
		}
	} else {
		quote.QuoteType = domain.QuoteTypeFollowUp
	}

	quote.Status = domain.QuoteStatusAccepted
	if err := s.repo.SetStatus(ctx, tx, quote); err != nil {
		return nil, err
	}

	s.audit(ctx, tx, quote, "quote.accepted", map[string]any{
		"is_primary": quote.IsPrimary,
		"deal_id":    deal.ID.String(),
	})
	return quote, nil
}

func (s *Service) Reject(ctx context.Context, orgID, id snowflake.ID) (*domain.Quote, error) {
	var rejected *domain.Quote
	err := s.db.Transaction(func(tx *gorm.DB) error {
		quote, err := s.repo.FindByIDForUpdate(ctx, tx, orgID, id)
		if err != nil {
			return err
		}
		if quote == nil {
			return domain.ErrNotFound
		}
		if quote.Status != domain.QuoteStatusSent {
			return domain.NewTransitionError(quote.Status, domain.QuoteStatusSent)
		}

		quote.Status = domain.QuoteStatusRejected
		if err := s.repo.SetStatus(ctx, tx, quote); err != nil {
			return err
		}
		rejected = quote
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.audit(ctx, nil, rejected, "quote.rejected", nil)
	return rejected, nil
}

func (s *Service) applyTotals(quote *domain.Quote, items []domain.QuoteItem, now time.Time) {
	inputs := make([]calc.Item, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, calc.Item{
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			DiscountPct: item.DiscountPct,
			TaxRatePct:  item.TaxRatePct,
		})
	}

	perItem, totals := calc.Compute(inputs)
	for i := range items {
		items[i].ID = s.genID.Generate()
		items[i].OrgID = quote.OrgID
		items[i].QuoteID = quote.ID
		items[i].Total = perItem[i].Total
		items[i].SortOrder = i
		items[i].CreatedAt = now
		items[i].UpdatedAt = now
	}

	quote.Items = items
	quote.Subtotal = totals.Subtotal
	quote.Discount = totals.Discount
	quote.Tax = totals.Tax
	quote.Total = totals.Total
	quote.UpdatedAt = now
}

func buildItems(inputs []domain.QuoteItemInput) ([]domain.QuoteItem, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvalidItems
	}
	items := make([]domain.QuoteItem, 0, len(inputs))
	for _, input := range inputs {
		if input.Quantity.Sign() <= 0 || input.UnitPrice.Sign() < 0 {
			return nil, domain.ErrInvalidItems
		}
		if input.DiscountPct.Sign() < 0 || input.TaxRatePct.Sign() < 0 {
			return nil, domain.ErrInvalidItems
		}
		items = append(items, domain.QuoteItem{
			Description: strings.TrimSpace(input.Description),
			Quantity:    input.Quantity,
			UnitPrice:   input.UnitPrice,
			DiscountPct: input.DiscountPct,
			TaxRatePct:  input.TaxRatePct,
		})
	}
	return items, nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, quote *domain.Quote, action string, extra map[string]any) {
	if quote == nil {
		return
	}
	metadata := map[string]any{
		"quote_number": quote.Number,
		"status":       string(quote.Status),
		"total":        quote.Total.StringFixed(2),
		"currency":     quote.Currency,
	}
	for key, value := range extra {
		metadata[key] = value
	}
	targetID := quote.ID.String()
	_ = s.auditSvc.AuditLog(ctx, tx, quote.OrgID, action, "quote", &targetID, metadata)
}
