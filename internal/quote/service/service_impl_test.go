package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/clock"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	dealdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/domain"
	dealrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/repository"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/repository"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type auditStub struct{}

func (auditStub) AuditLog(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, action, targetType string, targetID *string, metadata map[string]any) error {
	return nil
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return node
}

func setupQuoteService(t *testing.T, node *snowflake.Node, fc *clock.FakeClock) (domain.Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_loc=auto", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	_ = db.Exec("PRAGMA busy_timeout = 5000").Error
	prepareQuoteSchema(t, db)

	svc := NewService(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    node,
		Clock:    fc,
		Repo:     repository.Provide(),
		DealRepo: dealrepository.Provide(),
		AuditSvc: auditStub{},
		Settings: config.NewStaticPaymentSettingsHolder(config.DefaultPaymentSettings()),
	})
	return svc, db
}

func prepareQuoteSchema(t *testing.T, db *gorm.DB) {
	t.Helper()
	statements := []string{
		`CREATE TABLE deals (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'open',
			closed_date DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE quotes (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			deal_id BIGINT NOT NULL,
			number TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'draft',
			quote_type TEXT NOT NULL DEFAULT 'primary',
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			currency TEXT NOT NULL,
			subtotal NUMERIC(15,2) NOT NULL DEFAULT 0,
			discount NUMERIC(15,2) NOT NULL DEFAULT 0,
			tax NUMERIC(15,2) NOT NULL DEFAULT 0,
			total NUMERIC(15,2) NOT NULL DEFAULT 0,
			valid_until DATETIME,
			document_path TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX uq_quotes_org_number ON quotes (org_id, number)`,
		`CREATE TABLE quote_items (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			quote_id BIGINT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			quantity NUMERIC(15,2) NOT NULL DEFAULT 0,
			unit_price NUMERIC(15,2) NOT NULL DEFAULT 0,
			discount_pct NUMERIC(15,2) NOT NULL DEFAULT 0,
			tax_rate_pct NUMERIC(15,2) NOT NULL DEFAULT 0,
			total NUMERIC(15,2) NOT NULL DEFAULT 0,
			sort_order INT NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("prepare schema: %v", err)
		}
	}
}

func seedDeal(t *testing.T, db *gorm.DB, node *snowflake.Node, orgID snowflake.ID) snowflake.ID {
	t.Helper()
	dealID := node.Generate()
	deal := &dealdomain.Deal{
		ID:        dealID,
		OrgID:     orgID,
		Name:      "Acme expansion",
		Status:    dealdomain.DealStatusOpen,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := db.Create(deal).Error; err != nil {
		t.Fatalf("seed deal: %v", err)
	}
	return dealID
}

func standardItems() []domain.QuoteItemInput {
	return []domain.QuoteItemInput{{
		Description: "Implementation",
		Quantity:    decimal.NewFromInt(2),
		UnitPrice:   decimal.RequireFromString("100.00"),
		DiscountPct: decimal.NewFromInt(10),
		TaxRatePct:  decimal.NewFromInt(15),
	}}
}

func TestCreateComputesTotals(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)

	quote, err := svc.Create(context.Background(), domain.CreateQuoteRequest{
		OrgID:  orgID,
		DealID: dealID,
		Items:  standardItems(),
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if quote.Status != domain.QuoteStatusDraft {
		t.Fatalf("expected draft status, got %s", quote.Status)
	}
	if !strings.HasPrefix(quote.Number, "QT-2025-") {
		t.Fatalf("unexpected quote number %s", quote.Number)
	}
	if quote.Currency != "ZAR" {
		t.Fatalf("expected default currency ZAR, got %s", quote.Currency)
	}
	if !quote.Subtotal.Equal(decimal.RequireFromString("200.00")) {
		t.Fatalf("expected subtotal 200.00, got %s", quote.Subtotal)
	}
	if !quote.Discount.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("expected discount 20.00, got %s", quote.Discount)
	}
	if !quote.Tax.Equal(decimal.RequireFromString("27.00")) {
		t.Fatalf("expected tax 27.00, got %s", quote.Tax)
	}
	if !quote.Total.Equal(decimal.RequireFromString("207.00")) {
		t.Fatalf("expected total 207.00, got %s", quote.Total)
	}
	if quote.ValidUntil == nil || !quote.ValidUntil.Equal(fc.Now().AddDate(0, 0, 30)) {
		t.Fatalf("expected valid_until 30 days out, got %v", quote.ValidUntil)
	}
	if len(quote.Items) != 1 || !quote.Items[0].Total.Equal(decimal.RequireFromString("207.00")) {
		t.Fatalf("expected one item totalling 207.00, got %+v", quote.Items)
	}
}

func TestCreateRetriesOnNumberCollision(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)
	ctx := context.Background()

	existing, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create existing quote: %v", err)
	}

	original := generateNumber
	defer func() { generateNumber = original }()
	calls := 0
	generateNumber = func(prefix string, year int) string {
		calls++
		if calls == 1 {
			return existing.Number
		}
		return original(prefix, year)
	}

	created, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create after collision: %v", err)
	}
	if created.Number == existing.Number {
		t.Fatalf("expected a fresh number after collision, got %s twice", created.Number)
	}
	if calls < 2 {
		t.Fatalf("expected a retry after the collision, got %d attempts", calls)
	}

	var count int64
	if err := db.Raw(`SELECT COUNT(1) FROM quotes WHERE org_id = ?`, orgID).Scan(&count).Error; err != nil {
		t.Fatalf("count quotes: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected both quotes persisted, got %d", count)
	}
	var itemCount int64
	if err := db.Raw(`SELECT COUNT(1) FROM quote_items WHERE org_id = ? AND quote_id = ?`, orgID, created.ID).Scan(&itemCount).Error; err != nil {
		t.Fatalf("count items: %v", err)
	}
	if itemCount != 1 {
		t.Fatalf("expected the retried quote to keep its items, got %d", itemCount)
	}
}

func TestCreateRejectsInvalidItems(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Now().UTC())
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)

	_, err := svc.Create(context.Background(), domain.CreateQuoteRequest{
		OrgID:  orgID,
		DealID: dealID,
		Items:  nil,
	})
	if !errors.Is(err, domain.ErrInvalidItems) {
		t.Fatalf("expected invalid items error, got %v", err)
	}

	_, err = svc.Create(context.Background(), domain.CreateQuoteRequest{
		OrgID:  orgID,
		DealID: dealID,
		Items: []domain.QuoteItemInput{{
			Quantity:  decimal.NewFromInt(-1),
			UnitPrice: decimal.NewFromInt(10),
		}},
	})
	if !errors.Is(err, domain.ErrInvalidItems) {
		t.Fatalf("expected invalid items error for negative quantity, got %v", err)
	}
}

func TestTerminalQuoteIsImmutable(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Now().UTC())
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)
	ctx := context.Background()

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if _, err := svc.Send(ctx, orgID, quote.ID); err != nil {
		t.Fatalf("send quote: %v", err)
	}
	if _, err := svc.Accept(ctx, orgID, quote.ID); err != nil {
		t.Fatalf("accept quote: %v", err)
	}

	_, err = svc.Update(ctx, domain.UpdateQuoteRequest{OrgID: orgID, QuoteID: quote.ID, Items: standardItems()})
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error on update, got %v", err)
	}
	_, err = svc.Send(ctx, orgID, quote.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error on send, got %v", err)
	}
	_, err = svc.Accept(ctx, orgID, quote.ID)
	if !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error on re-accept, got %v", err)
	}
}

func TestAcceptPrimaryThenFollowUp(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC))
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)
	ctx := context.Background()

	first, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create first quote: %v", err)
	}
	second, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create second quote: %v", err)
	}
	for _, id := range []snowflake.ID{first.ID, second.ID} {
		if _, err := svc.Send(ctx, orgID, id); err != nil {
			t.Fatalf("send quote: %v", err)
		}
	}

	accepted, err := svc.Accept(ctx, orgID, first.ID)
	if err != nil {
		t.Fatalf("accept first quote: %v", err)
	}
	if !accepted.IsPrimary {
		t.Fatalf("expected first accepted quote to be primary")
	}

	var deal dealdomain.Deal
	if err := db.Where("org_id = ? AND id = ?", orgID, dealID).First(&deal).Error; err != nil {
		t.Fatalf("load deal: %v", err)
	}
	if deal.Status != dealdomain.DealStatusWon {
		t.Fatalf("expected deal won, got %s", deal.Status)
	}
	if deal.ClosedDate == nil {
		t.Fatalf("expected closed date on won deal")
	}

	followUp, err := svc.Accept(ctx, orgID, second.ID)
	if err != nil {
		t.Fatalf("accept second quote: %v", err)
	}
	if followUp.IsPrimary {
		t.Fatalf("expected second accepted quote to not be primary")
	}
	if followUp.QuoteType != domain.QuoteTypeFollowUp {
		t.Fatalf("expected follow_up type, got %s", followUp.QuoteType)
	}

	var primaryCount int64
	if err := db.Raw(
		`SELECT COUNT(1) FROM quotes WHERE org_id = ? AND deal_id = ? AND is_primary = ?`,
		orgID, dealID, true,
	).Scan(&primaryCount).Error; err != nil {
		t.Fatalf("count primary quotes: %v", err)
	}
	if primaryCount != 1 {
		t.Fatalf("expected exactly one primary quote, got %d", primaryCount)
	}
}

func TestRejectRequiresSent(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Now().UTC())
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)
	ctx := context.Background()

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}

	if _, err := svc.Reject(ctx, orgID, quote.ID); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected transition error rejecting draft, got %v", err)
	}

	if _, err := svc.Send(ctx, orgID, quote.ID); err != nil {
		t.Fatalf("send quote: %v", err)
	}
	rejected, err := svc.Reject(ctx, orgID, quote.ID)
	if err != nil {
		t.Fatalf("reject quote: %v", err)
	}
	if rejected.Status != domain.QuoteStatusRejected {
		t.Fatalf("expected rejected status, got %s", rejected.Status)
	}
}

func TestUpdateRecomputesAndClearsDocument(t *testing.T) {
	node := mustNode(t)
	fc := clock.NewFakeClock(time.Now().UTC())
	svc, db := setupQuoteService(t, node, fc)

	orgID := node.Generate()
	dealID := seedDeal(t, db, node, orgID)
	ctx := context.Background()

	quote, err := svc.Create(ctx, domain.CreateQuoteRequest{OrgID: orgID, DealID: dealID, Items: standardItems()})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if err := db.Exec(
		`UPDATE quotes SET document_path = ? WHERE id = ?`,
		"quote_old.html", quote.ID,
	).Error; err != nil {
		t.Fatalf("seed document path: %v", err)
	}

	updated, err := svc.Update(ctx, domain.UpdateQuoteRequest{
		OrgID:   orgID,
		QuoteID: quote.ID,
		Items: []domain.QuoteItemInput{{
			Description: "Implementation",
			Quantity:    decimal.NewFromInt(3),
			UnitPrice:   decimal.RequireFromString("50.00"),
		}},
	})
	if err != nil {
		t.Fatalf("update quote: %v", err)
	}
	if !updated.Total.Equal(decimal.RequireFromString("150.00")) {
		t.Fatalf("expected total 150.00, got %s", updated.Total)
	}
	if updated.DocumentPath != nil {
		t.Fatalf("expected document path cleared on update")
	}

	reloaded, err := svc.Get(ctx, orgID, quote.ID)
	if err != nil {
		t.Fatalf("reload quote: %v", err)
	}
	if reloaded.DocumentPath != nil {
		t.Fatalf("expected persisted document path cleared, got %v", *reloaded.DocumentPath)
	}
	if len(reloaded.Items) != 1 || !reloaded.Items[0].Quantity.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected replaced items, got %+v", reloaded.Items)
	}
}
