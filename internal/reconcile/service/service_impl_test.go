package service

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/clock"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/config"
	dealdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/domain"
	dealrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/deal/repository"
	orderdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/order/domain"
	orderrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/order/repository"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/adapters"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/adapters/payfast"
	paymentdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/domain"
	paymentrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/repository"
	linkdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/paymentlink/domain"
	linkrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/paymentlink/repository"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig"
	providerconfigdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig/domain"
	providerconfigrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig/repository"
	quotedomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	quoterepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/repository"
	quoteservice "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/service"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/reconcile/domain"
	subscriptiondomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/domain"
	subscriptionrepository "github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/repository"
	subscriptionservice "github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/service"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testPassphrase = "itn-test-passphrase"

type auditRecorder struct {
	actions []string
}

func (a *auditRecorder) AuditLog(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, action, targetType string, targetID *string, metadata map[string]any) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *auditRecorder) seen(action string) bool {
	for _, item := range a.actions {
		if item == action {
			return true
		}
	}
	return false
}

type harness struct {
	db       *gorm.DB
	node     *snowflake.Node
	clock    *clock.FakeClock
	codec    *providerconfig.Codec
	svc      domain.Service
	quoteSvc quotedomain.Service
	audit    *auditRecorder
}

func newHarness(t *testing.T, start time.Time) *harness {
	t.Helper()

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	fc := clock.NewFakeClock(start)

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
	prepareReconcileSchema(t, db)

	log := zap.NewNop()
	codec := providerconfig.NewCodec(config.Config{ProviderConfigSecret: "unit-test-secret"})
	recorder := &auditRecorder{}

	quoteSvc := quoteservice.NewService(quoteservice.Params{
		DB:       db,
		Log:      log,
		GenID:    node,
		Clock:    fc,
		Repo:     quoterepository.Provide(),
		DealRepo: dealrepository.Provide(),
		AuditSvc: recorder,
		Settings: config.NewStaticPaymentSettingsHolder(config.DefaultPaymentSettings()),
	})
	subscriptionSvc := subscriptionservice.NewService(subscriptionservice.Params{
		Log:   log,
		GenID: node,
		Repo:  subscriptionrepository.Provide(),
	})

	svc := NewService(Params{
		DB:              db,
		Log:             log,
		GenID:           node,
		Clock:           fc,
		Adapters:        adapters.NewRegistry(payfast.NewFactory()),
		Codec:           codec,
		PaymentRepo:     paymentrepository.Provide(),
		LinkRepo:        linkrepository.Provide(),
		OrderRepo:       orderrepository.Provide(),
		QuoteRepo:       quoterepository.Provide(),
		QuoteSvc:        quoteSvc,
		ProviderCfgRepo: providerconfigrepository.Provide(),
		SubscriptionSvc: subscriptionSvc,
		AuditSvc:        recorder,
	})

	return &harness{db: db, node: node, clock: fc, codec: codec, svc: svc, quoteSvc: quoteSvc, audit: recorder}
}

func prepareReconcileSchema(t *testing.T, db *gorm.DB) {
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
		`CREATE TABLE payment_links (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			quote_id BIGINT,
			amount NUMERIC(15,2) NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			order_id BIGINT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE orders (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			deal_id BIGINT,
			quote_id BIGINT,
			amount NUMERIC(15,2) NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			placed_at DATETIME NOT NULL
		)`,
		`CREATE TABLE transactions (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			provider TEXT NOT NULL,
			provider_event_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			amount NUMERIC(15,2) NOT NULL,
			currency TEXT NOT NULL,
			status TEXT NOT NULL,
			payload TEXT NOT NULL,
			received_at DATETIME NOT NULL,
			order_id BIGINT,
			subscription_id BIGINT
		)`,
		`CREATE UNIQUE INDEX uq_transactions_provider_event ON transactions (provider, provider_event_id)`,
		`CREATE TABLE plans (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			code TEXT NOT NULL,
			name TEXT NOT NULL,
			interval TEXT NOT NULL,
			amount NUMERIC(15,2) NOT NULL,
			currency TEXT NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE subscriptions (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			plan_id BIGINT NOT NULL,
			status TEXT NOT NULL,
			current_period_start DATETIME NOT NULL,
			current_period_end DATETIME NOT NULL,
			payer_email TEXT,
			provider_payment_id TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE TABLE subscription_invoices (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			subscription_id BIGINT NOT NULL,
			provider_payment_id TEXT NOT NULL,
			amount_cents BIGINT NOT NULL,
			currency TEXT NOT NULL,
			paid_at DATETIME NOT NULL,
			created_at DATETIME NOT NULL
		)`,
		`CREATE TABLE payment_provider_configs (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			provider TEXT NOT NULL,
			config TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
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

func (h *harness) seedProviderConfig(t *testing.T, orgID snowflake.ID) {
	t.Helper()
	encrypted, err := h.codec.Encrypt(map[string]any{"passphrase": testPassphrase})
	if err != nil {
		t.Fatalf("encrypt config: %v", err)
	}
	cfg := &providerconfigdomain.ProviderConfig{
		ID:        h.node.Generate(),
		OrgID:     orgID,
		Provider:  "payfast",
		Config:    encrypted,
		IsActive:  true,
		CreatedAt: h.clock.Now(),
		UpdatedAt: h.clock.Now(),
	}
	if err := h.db.Create(cfg).Error; err != nil {
		t.Fatalf("seed provider config: %v", err)
	}
}

// seedSentQuote builds a deal with one sent quote totalling 207.00 and a
// pending payment link for it.
func (h *harness) seedSentQuote(t *testing.T, orgID snowflake.ID) (*quotedomain.Quote, *linkdomain.PaymentLink) {
	t.Helper()
	ctx := context.Background()

	deal := &dealdomain.Deal{
		ID:        h.node.Generate(),
		OrgID:     orgID,
		Name:      "Acme expansion",
		Status:    dealdomain.DealStatusOpen,
		CreatedAt: h.clock.Now(),
		UpdatedAt: h.clock.Now(),
	}
	if err := h.db.Create(deal).Error; err != nil {
		t.Fatalf("seed deal: %v", err)
	}

	quote, err := h.quoteSvc.Create(ctx, quotedomain.CreateQuoteRequest{
		OrgID:  orgID,
		DealID: deal.ID,
		Items: []quotedomain.QuoteItemInput{{
			Description: "Implementation",
			Quantity:    decimal.NewFromInt(2),
			UnitPrice:   decimal.RequireFromString("100.00"),
			DiscountPct: decimal.NewFromInt(10),
			TaxRatePct:  decimal.NewFromInt(15),
		}},
	})
	if err != nil {
		t.Fatalf("create quote: %v", err)
	}
	if _, err := h.quoteSvc.Send(ctx, orgID, quote.ID); err != nil {
		t.Fatalf("send quote: %v", err)
	}

	link := &linkdomain.PaymentLink{
		ID:        h.node.Generate(),
		OrgID:     orgID,
		QuoteID:   &quote.ID,
		Amount:    quote.Total,
		Currency:  quote.Currency,
		Status:    linkdomain.StatusPending,
		CreatedAt: h.clock.Now(),
		UpdatedAt: h.clock.Now(),
	}
	if err := h.db.Create(link).Error; err != nil {
		t.Fatalf("seed payment link: %v", err)
	}
	return quote, link
}

func (h *harness) seedPlan(t *testing.T, orgID snowflake.ID, interval subscriptiondomain.Interval) *subscriptiondomain.Plan {
	t.Helper()
	plan := &subscriptiondomain.Plan{
		ID:        h.node.Generate(),
		OrgID:     orgID,
		Code:      "pro-" + string(interval),
		Name:      "Pro",
		Interval:  interval,
		Amount:    decimal.RequireFromString("49.00"),
		Currency:  "ZAR",
		CreatedAt: h.clock.Now(),
		UpdatedAt: h.clock.Now(),
	}
	if err := h.db.Create(plan).Error; err != nil {
		t.Fatalf("seed plan: %v", err)
	}
	return plan
}

// itnBody signs the fields the way the provider does: the urlencoded pairs
// in send order with the passphrase appended, hashed with MD5.
func itnBody(passphrase string, fields [][2]string) []byte {
	var base strings.Builder
	for i, field := range fields {
		if i > 0 {
			base.WriteByte('&')
		}
		base.WriteString(field[0])
		base.WriteByte('=')
		base.WriteString(url.QueryEscape(field[1]))
	}
	signed := base.String() + "&passphrase=" + url.QueryEscape(passphrase)
	sum := md5.Sum([]byte(signed))
	return []byte(base.String() + "&signature=" + hex.EncodeToString(sum[:]))
}

func completeITN(reference, eventID, amount, email string) []byte {
	return itnBody(testPassphrase, [][2]string{
		{"m_payment_id", reference},
		{"pf_payment_id", eventID},
		{"payment_status", "COMPLETE"},
		{"amount_gross", amount},
		{"email_address", email},
	})
}

func cancelledITN(reference, eventID, amount, email string) []byte {
	return itnBody(testPassphrase, [][2]string{
		{"m_payment_id", reference},
		{"pf_payment_id", eventID},
		{"payment_status", "CANCELLED"},
		{"amount_gross", amount},
		{"email_address", email},
	})
}

func (h *harness) countRows(t *testing.T, query string, args ...any) int64 {
	t.Helper()
	var count int64
	if err := h.db.Raw(query, args...).Scan(&count).Error; err != nil {
		t.Fatalf("count query: %v", err)
	}
	return count
}

func TestLinkPaymentSucceeded(t *testing.T) {
	h := newHarness(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)
	quote, link := h.seedSentQuote(t, orgID)

	body := completeITN(link.ID.String(), "pf-1001", "207.00", "buyer@example.com")
	result, err := h.svc.IngestWebhook(ctx, "payfast", body, http.Header{})
	if err != nil {
		t.Fatalf("ingest webhook: %v", err)
	}
	if result.Status != domain.StatusOK {
		t.Fatalf("expected ok result, got %s", result.Status)
	}

	var txn paymentdomain.Transaction
	if err := h.db.Where("provider = ? AND provider_event_id = ?", "payfast", "pf-1001").First(&txn).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.Status != paymentdomain.TransactionStatusSucceeded {
		t.Fatalf("expected succeeded transaction, got %s", txn.Status)
	}
	if txn.OrderID == nil {
		t.Fatalf("expected order attached to transaction")
	}

	var reloadedLink linkdomain.PaymentLink
	if err := h.db.First(&reloadedLink, "id = ?", link.ID).Error; err != nil {
		t.Fatalf("load link: %v", err)
	}
	if reloadedLink.Status != linkdomain.StatusCompleted {
		t.Fatalf("expected completed link, got %s", reloadedLink.Status)
	}
	if reloadedLink.OrderID == nil || *reloadedLink.OrderID != *txn.OrderID {
		t.Fatalf("expected link order backfill to match transaction")
	}

	var order orderdomain.Order
	if err := h.db.First(&order, "id = ?", *txn.OrderID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != orderdomain.StatusPaid {
		t.Fatalf("expected paid order, got %s", order.Status)
	}
	if order.QuoteID == nil || *order.QuoteID != quote.ID {
		t.Fatalf("expected order linked to quote")
	}
	if !order.Amount.Equal(decimal.RequireFromString("207.00")) {
		t.Fatalf("expected order amount 207.00, got %s", order.Amount)
	}

	reloadedQuote, err := h.quoteSvc.Get(ctx, orgID, quote.ID)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if reloadedQuote.Status != quotedomain.QuoteStatusAccepted {
		t.Fatalf("expected accepted quote, got %s", reloadedQuote.Status)
	}
	if !reloadedQuote.IsPrimary {
		t.Fatalf("expected accepted quote to be primary")
	}

	var deal dealdomain.Deal
	if err := h.db.First(&deal, "id = ?", reloadedQuote.DealID).Error; err != nil {
		t.Fatalf("load deal: %v", err)
	}
	if deal.Status != dealdomain.DealStatusWon {
		t.Fatalf("expected won deal, got %s", deal.Status)
	}
}

func TestLinkPaymentReplayIsDuplicate(t *testing.T) {
	h := newHarness(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)
	_, link := h.seedSentQuote(t, orgID)

	body := completeITN(link.ID.String(), "pf-2001", "207.00", "buyer@example.com")
	if _, err := h.svc.IngestWebhook(ctx, "payfast", body, http.Header{}); err != nil {
		t.Fatalf("first ingest: %v", err)
	}

	replay, err := h.svc.IngestWebhook(ctx, "payfast", body, http.Header{})
	if err != nil {
		t.Fatalf("replay ingest: %v", err)
	}
	if replay.Status != domain.StatusDuplicate {
		t.Fatalf("expected duplicate result, got %s", replay.Status)
	}

	if got := h.countRows(t, `SELECT COUNT(1) FROM transactions WHERE provider_event_id = ?`, "pf-2001"); got != 1 {
		t.Fatalf("expected one ledger row after replay, got %d", got)
	}
	if got := h.countRows(t, `SELECT COUNT(1) FROM orders WHERE org_id = ?`, orgID); got != 1 {
		t.Fatalf("expected one order after replay, got %d", got)
	}
	if !h.audit.seen("payment.webhook.duplicate") {
		t.Fatalf("expected the replay to be audited")
	}
}

func TestLinkPaymentFailed(t *testing.T) {
	h := newHarness(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)
	quote, link := h.seedSentQuote(t, orgID)

	body := cancelledITN(link.ID.String(), "pf-3001", "207.00", "buyer@example.com")
	result, err := h.svc.IngestWebhook(ctx, "payfast", body, http.Header{})
	if err != nil {
		t.Fatalf("ingest webhook: %v", err)
	}
	if result.Status != domain.StatusOK {
		t.Fatalf("expected ok result, got %s", result.Status)
	}

	var reloadedLink linkdomain.PaymentLink
	if err := h.db.First(&reloadedLink, "id = ?", link.ID).Error; err != nil {
		t.Fatalf("load link: %v", err)
	}
	if reloadedLink.Status != linkdomain.StatusCancelled {
		t.Fatalf("expected cancelled link, got %s", reloadedLink.Status)
	}

	var order orderdomain.Order
	if err := h.db.First(&order, "org_id = ? AND quote_id = ?", orgID, quote.ID).Error; err != nil {
		t.Fatalf("load order: %v", err)
	}
	if order.Status != orderdomain.StatusPaymentFailed {
		t.Fatalf("expected payment_failed order, got %s", order.Status)
	}

	reloadedQuote, err := h.quoteSvc.Get(ctx, orgID, quote.ID)
	if err != nil {
		t.Fatalf("load quote: %v", err)
	}
	if reloadedQuote.Status != quotedomain.QuoteStatusSent {
		t.Fatalf("expected quote to stay sent, got %s", reloadedQuote.Status)
	}
}

func TestSubscriptionPaymentLifecycle(t *testing.T) {
	h := newHarness(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)
	plan := h.seedPlan(t, orgID, subscriptiondomain.IntervalMonthly)
	reference := fmt.Sprintf("subscription_%s_ab12cd", plan.ID)

	first := completeITN(reference, "pf-4001", "49.00", "payer@example.com")
	result, err := h.svc.IngestWebhook(ctx, "payfast", first, http.Header{})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if result.Status != domain.StatusOK {
		t.Fatalf("expected ok result, got %s", result.Status)
	}

	var sub subscriptiondomain.Subscription
	if err := h.db.First(&sub, "org_id = ? AND plan_id = ?", orgID, plan.ID).Error; err != nil {
		t.Fatalf("load subscription: %v", err)
	}
	if sub.Status != subscriptiondomain.StatusActive {
		t.Fatalf("expected active subscription, got %s", sub.Status)
	}
	if !sub.CurrentPeriodStart.Equal(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period start %v", sub.CurrentPeriodStart)
	}
	if !sub.CurrentPeriodEnd.Equal(time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected period end %v", sub.CurrentPeriodEnd)
	}

	var txn paymentdomain.Transaction
	if err := h.db.First(&txn, "provider_event_id = ?", "pf-4001").Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if txn.SubscriptionID == nil || *txn.SubscriptionID != sub.ID {
		t.Fatalf("expected subscription attached to transaction")
	}

	// A late renewal anchors the new period at the payment timestamp.
	h.clock.Set(time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC))
	second := completeITN(reference, "pf-4002", "49.00", "payer@example.com")
	if _, err := h.svc.IngestWebhook(ctx, "payfast", second, http.Header{}); err != nil {
		t.Fatalf("second payment: %v", err)
	}

	if got := h.countRows(t, `SELECT COUNT(1) FROM subscriptions WHERE org_id = ?`, orgID); got != 1 {
		t.Fatalf("expected a single subscription, got %d", got)
	}
	if err := h.db.First(&sub, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reload subscription: %v", err)
	}
	if !sub.CurrentPeriodStart.Equal(time.Date(2025, 2, 3, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected renewed period start %v", sub.CurrentPeriodStart)
	}
	if !sub.CurrentPeriodEnd.Equal(time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected renewed period end %v", sub.CurrentPeriodEnd)
	}

	invoices, err := subscriptionrepository.Provide().ListInvoices(ctx, h.db, orgID, sub.ID)
	if err != nil {
		t.Fatalf("list invoices: %v", err)
	}
	if len(invoices) != 2 {
		t.Fatalf("expected two invoices, got %d", len(invoices))
	}
	if invoices[1].ProviderPaymentID != "pf-4002" {
		t.Fatalf("expected invoices ordered by paid_at, got %s last", invoices[1].ProviderPaymentID)
	}
	if invoices[1].AmountCents != 4900 {
		t.Fatalf("expected 4900 cents, got %d", invoices[1].AmountCents)
	}

	// A failed charge marks the subscription past due without moving the period.
	failed := cancelledITN(reference, "pf-4003", "49.00", "payer@example.com")
	if _, err := h.svc.IngestWebhook(ctx, "payfast", failed, http.Header{}); err != nil {
		t.Fatalf("failed payment: %v", err)
	}
	if err := h.db.First(&sub, "id = ?", sub.ID).Error; err != nil {
		t.Fatalf("reload subscription: %v", err)
	}
	if sub.Status != subscriptiondomain.StatusPastDue {
		t.Fatalf("expected past_due subscription, got %s", sub.Status)
	}
	if !sub.CurrentPeriodEnd.Equal(time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected period untouched by failed charge, got %v", sub.CurrentPeriodEnd)
	}
}

func TestSubscriptionFailedFirstPaymentIsNoOp(t *testing.T) {
	h := newHarness(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)
	plan := h.seedPlan(t, orgID, subscriptiondomain.IntervalMonthly)
	reference := fmt.Sprintf("subscription_%s_zz99", plan.ID)

	body := cancelledITN(reference, "pf-5001", "49.00", "stranger@example.com")
	result, err := h.svc.IngestWebhook(ctx, "payfast", body, http.Header{})
	if err != nil {
		t.Fatalf("ingest webhook: %v", err)
	}
	if result.Status != domain.StatusOK {
		t.Fatalf("expected ok result, got %s", result.Status)
	}

	if got := h.countRows(t, `SELECT COUNT(1) FROM subscriptions WHERE org_id = ?`, orgID); got != 0 {
		t.Fatalf("expected no subscription for a failed first charge, got %d", got)
	}
	if got := h.countRows(t, `SELECT COUNT(1) FROM transactions WHERE provider_event_id = ?`, "pf-5001"); got != 1 {
		t.Fatalf("expected the ledger row regardless, got %d", got)
	}
}

func TestInvalidSignatureRejected(t *testing.T) {
	h := newHarness(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)
	_, link := h.seedSentQuote(t, orgID)

	body := completeITN(link.ID.String(), "pf-6001", "207.00", "buyer@example.com")
	tampered := strings.Replace(string(body), "amount_gross=207.00", "amount_gross=1.00", 1)

	_, err := h.svc.IngestWebhook(ctx, "payfast", []byte(tampered), http.Header{})
	if !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected signature error, got %v", err)
	}

	if got := h.countRows(t, `SELECT COUNT(1) FROM transactions WHERE provider_event_id = ?`, "pf-6001"); got != 0 {
		t.Fatalf("expected no ledger row for rejected payload, got %d", got)
	}
}

func TestUnknownPaymentLink(t *testing.T) {
	h := newHarness(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))
	ctx := context.Background()

	orgID := h.node.Generate()
	h.seedProviderConfig(t, orgID)

	body := completeITN(h.node.Generate().String(), "pf-7001", "10.00", "buyer@example.com")
	_, err := h.svc.IngestWebhook(ctx, "payfast", body, http.Header{})
	if !errors.Is(err, linkdomain.ErrNotFound) {
		t.Fatalf("expected link not found, got %v", err)
	}
}

func TestUnknownProvider(t *testing.T) {
	h := newHarness(t, time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC))

	_, err := h.svc.IngestWebhook(context.Background(), "stripe", []byte("m_payment_id=1"), http.Header{})
	if !errors.Is(err, paymentdomain.ErrProviderNotFound) {
		t.Fatalf("expected provider not found, got %v", err)
	}
}
