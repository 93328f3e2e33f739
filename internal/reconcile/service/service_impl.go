package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	auditdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/audit/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/clock"
	orderdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/order/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/adapters"
	paymentdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/payment/domain"
	linkdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/paymentlink/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig"
	providerconfigdomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/providerconfig/domain"
	quotedomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/quote/domain"
	"github.com/Pathan99z/rc-convergio-b-sub001/internal/reconcile/domain"
	subscriptiondomain "github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB              *gorm.DB
	Log             *zap.Logger
	GenID           *snowflake.Node
	Clock           clock.Clock
	Adapters        *adapters.Registry
	Codec           *providerconfig.Codec
	PaymentRepo     paymentdomain.Repository
	LinkRepo        linkdomain.Repository
	OrderRepo       orderdomain.Repository
	QuoteRepo       quotedomain.Repository
	QuoteSvc        quotedomain.Service
	ProviderCfgRepo providerconfigdomain.Repository
	SubscriptionSvc subscriptiondomain.Service
	AuditSvc        auditdomain.Service
}

type Service struct {
	db              *gorm.DB
	log             *zap.Logger
	genID           *snowflake.Node
	clock           clock.Clock
	adapters        *adapters.Registry
	codec           *providerconfig.Codec
	paymentRepo     paymentdomain.Repository
	linkRepo        linkdomain.Repository
	orderRepo       orderdomain.Repository
	quoteRepo       quotedomain.Repository
	quoteSvc        quotedomain.Service
	providerCfgRepo providerconfigdomain.Repository
	subscriptionSvc subscriptiondomain.Service
	auditSvc        auditdomain.Service
}

func NewService(p Params) domain.Service {
	return &Service{
		db:              p.DB,
		log:             p.Log.Named("reconcile.service"),
		genID:           p.GenID,
		clock:           p.Clock,
		adapters:        p.Adapters,
		codec:           p.Codec,
		paymentRepo:     p.PaymentRepo,
		linkRepo:        p.LinkRepo,
		orderRepo:       p.OrderRepo,
		quoteRepo:       p.QuoteRepo,
		quoteSvc:        p.QuoteSvc,
		providerCfgRepo: p.ProviderCfgRepo,
		subscriptionSvc: p.SubscriptionSvc,
		auditSvc:        p.AuditSvc,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) (*domain.Result, error) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return nil, paymentdomain.ErrInvalidProvider
	}
	if s.adapters == nil || !s.adapters.ProviderExists(provider) {
		return nil, paymentdomain.ErrProviderNotFound
	}

	// The merchant reference is the only field read before verification; it
	// is needed to resolve the tenant whose secret verifies the payload.
	reference, err := s.adapters.Reference(provider, payload)
	if err != nil {
		return nil, err
	}
	parsed, err := paymentdomain.ClassifyReference(reference)
	if err != nil {
		return nil, err
	}

	var result *domain.Result
	err = s.db.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.ingestTx(ctx, tx, provider, payload, headers, parsed)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) ingestTx(
	ctx context.Context,
	tx *gorm.DB,
	provider string,
	payload []byte,
	headers http.Header,
	parsed paymentdomain.ParsedReference,
) (*domain.Result, error) {
	var (
		orgID snowflake.ID
		link  *linkdomain.PaymentLink
		plan  *subscriptiondomain.Plan
		err   error
	)

	switch parsed.Kind {
	case paymentdomain.ReferenceKindPaymentLink:
		link, err = s.linkRepo.FindByIDForUpdate(ctx, tx, parsed.LinkID)
		if err != nil {
			return nil, err
		}
		if link == nil {
			s.log.Warn("webhook for unknown payment link",
				zap.String("provider", provider),
				zap.String("link_id", parsed.LinkID.String()),
			)
			return nil, linkdomain.ErrNotFound
		}
		orgID = link.OrgID
	case paymentdomain.ReferenceKindSubscription:
		plan, err = s.subscriptionSvc.FindPlan(ctx, tx, parsed.PlanID)
		if err != nil {
			return nil, err
		}
		orgID = plan.OrgID
	default:
		return nil, paymentdomain.ErrMissingReference
	}

	adapter, err := s.buildAdapter(ctx, tx, orgID, provider)
	if err != nil {
		return nil, err
	}
	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected",
			zap.String("provider", provider),
			zap.String("org_id", orgID.String()),
		)
		return nil, err
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	txn := &paymentdomain.Transaction{
		ID:              s.genID.Generate(),
		OrgID:           orgID,
		Provider:        provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       eventType(event.Status),
		Amount:          event.Amount,
		Currency:        event.Currency,
		Status:          event.Status,
		Payload:         datatypes.JSON(event.RawPayload),
		ReceivedAt:      now,
	}
	inserted, err := s.paymentRepo.InsertTransaction(ctx, tx, txn)
	if err != nil {
		return nil, err
	}
	if !inserted {
		original, err := s.paymentRepo.FindTransaction(ctx, tx, provider, event.ProviderEventID)
		if err != nil {
			return nil, err
		}
		metadata := map[string]any{
			"provider":          provider,
			"provider_event_id": event.ProviderEventID,
		}
		var targetID snowflake.ID
		if original != nil {
			targetID = original.ID
			metadata["received_at"] = original.ReceivedAt.Format(time.RFC3339)
		}
		s.log.Info("duplicate webhook event",
			zap.String("provider", provider),
			zap.String("org_id", orgID.String()),
			zap.String("provider_event_id", event.ProviderEventID),
			zap.String("transaction_id", targetID.String()),
		)
		s.audit(ctx, tx, orgID, "payment.webhook.duplicate", "transaction", targetID, metadata)
		return &domain.Result{Status: domain.StatusDuplicate, Message: "event already processed"}, nil
	}

	switch parsed.Kind {
	case paymentdomain.ReferenceKindPaymentLink:
		err = s.reconcileLink(ctx, tx, txn, link, event, now)
	case paymentdomain.ReferenceKindSubscription:
		err = s.reconcileSubscription(ctx, tx, txn, plan, event, now)
	}
	if err != nil {
		return nil, err
	}

	s.audit(ctx, tx, orgID, "payment.webhook."+string(event.Status), "transaction", txn.ID, map[string]any{
		"provider":          provider,
		"provider_event_id": event.ProviderEventID,
		"reference":         event.Reference,
		"kind":              string(parsed.Kind),
	})

	return &domain.Result{Status: domain.StatusOK, Message: "event processed"}, nil
}

func (s *Service) buildAdapter(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, provider string) (paymentdomain.Adapter, error) {
	cfg, err := s.providerCfgRepo.FindActive(ctx, tx, orgID, provider)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		s.log.Warn("no active provider config for tenant",
			zap.String("provider", provider),
			zap.String("org_id", orgID.String()),
		)
		return nil, providerconfigdomain.ErrNotFound
	}

	decrypted, err := s.codec.Decrypt(cfg.Config)
	if err != nil {
		return nil, err
	}
	return s.adapters.NewAdapter(provider, paymentdomain.AdapterConfig{
		OrgID:    orgID,
		Provider: provider,
		Config:   decrypted,
	})
}

// reconcileLink applies a link payment outcome: the link status, the order,
// the quote acceptance path, and the id backfills all commit or roll back
// together with the ledger row.
func (s *Service) reconcileLink(
	ctx context.Context,
	tx *gorm.DB,
	txn *paymentdomain.Transaction,
	link *linkdomain.PaymentLink,
	event *paymentdomain.Event,
	now time.Time,
) error {
	succeeded := event.Status == paymentdomain.TransactionStatusSucceeded

	linkStatus := linkdomain.StatusCancelled
	orderStatus := orderdomain.StatusPaymentFailed
	if succeeded {
		linkStatus = linkdomain.StatusCompleted
		orderStatus = orderdomain.StatusPaid
	}
	if err := s.linkRepo.UpdateStatus(ctx, tx, link.ID, linkStatus); err != nil {
		return err
	}

	var quote *quotedomain.Quote
	if link.QuoteID != nil {
		var err error
		quote, err = s.quoteRepo.FindByID(ctx, tx, link.OrgID, *link.QuoteID)
		if err != nil {
			return err
		}
	}

	order, err := s.syncOrder(ctx, tx, link, quote, event, orderStatus, now)
	if err != nil {
		return err
	}

	if succeeded && quote != nil {
		switch quote.Status {
		case quotedomain.QuoteStatusSent:
			if _, err := s.quoteSvc.AcceptWithTx(ctx, tx, link.OrgID, quote.ID); err != nil {
				return err
			}
		case quotedomain.QuoteStatusAccepted:
			// Already accepted, nothing to advance.
		default:
			s.log.Warn("paid link references quote outside acceptable state",
				zap.String("org_id", link.OrgID.String()),
				zap.String("quote_id", quote.ID.String()),
				zap.String("quote_status", string(quote.Status)),
				zap.String("provider_event_id", event.ProviderEventID),
			)
		}
	}

	if order != nil {
		if err := s.linkRepo.AttachOrder(ctx, tx, link.ID, order.ID); err != nil {
			return err
		}
		if err := s.paymentRepo.AttachOrder(ctx, tx, txn.ID, order.ID); err != nil {
			return err
		}
		txn.OrderID = &order.ID
	}
	return nil
}

// syncOrder re-uses the quote's existing order when there is one, otherwise
// creates it with the outcome of this payment.
func (s *Service) syncOrder(
	ctx context.Context,
	tx *gorm.DB,
	link *linkdomain.PaymentLink,
	quote *quotedomain.Quote,
	event *paymentdomain.Event,
	status orderdomain.Status,
	now time.Time,
) (*orderdomain.Order, error) {
	if quote != nil {
		existing, err := s.orderRepo.FindByQuote(ctx, tx, link.OrgID, quote.ID)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.Status != status {
				if err := s.orderRepo.UpdateStatus(ctx, tx, link.OrgID, existing.ID, status); err != nil {
					return nil, err
				}
				existing.Status = status
			}
			return existing, nil
		}
	}

	order := &orderdomain.Order{
		ID:       s.genID.Generate(),
		OrgID:    link.OrgID,
		Amount:   event.Amount,
		Currency: event.Currency,
		Status:   status,
		PlacedAt: now,
	}
	if quote != nil {
		order.QuoteID = &quote.ID
		order.DealID = &quote.DealID
	}
	if err := s.orderRepo.Insert(ctx, tx, order); err != nil {
		return nil, err
	}
	return order, nil
}

func (s *Service) reconcileSubscription(
	ctx context.Context,
	tx *gorm.DB,
	txn *paymentdomain.Transaction,
	plan *subscriptiondomain.Plan,
	event *paymentdomain.Event,
	now time.Time,
) error {
	var (
		sub *subscriptiondomain.Subscription
		err error
	)
	if event.Status == paymentdomain.TransactionStatusSucceeded {
		sub, err = s.subscriptionSvc.ApplyPayment(ctx, tx, subscriptiondomain.PaymentApplication{
			Plan:              plan,
			PayerEmail:        event.PayerEmail,
			ProviderPaymentID: event.ProviderEventID,
			Amount:            event.Amount,
			Currency:          event.Currency,
			PaidAt:            now,
		})
	} else {
		sub, err = s.subscriptionSvc.MarkPaymentFailed(ctx, tx, plan, event.PayerEmail, event.ProviderEventID)
	}
	if err != nil {
		return err
	}

	if sub != nil {
		if err := s.paymentRepo.AttachSubscription(ctx, tx, txn.ID, sub.ID); err != nil {
			return err
		}
		txn.SubscriptionID = &sub.ID
	}
	return nil
}

func (s *Service) audit(ctx context.Context, tx *gorm.DB, orgID snowflake.ID, action, targetType string, targetID snowflake.ID, metadata map[string]any) {
	if s.auditSvc == nil {
		return
	}
	id := targetID.String()
	if err := s.auditSvc.AuditLog(ctx, tx, orgID, action, targetType, &id, metadata); err != nil {
		s.log.Warn("audit log write failed", zap.Error(err))
	}
}

func eventType(status paymentdomain.TransactionStatus) string {
	if status == paymentdomain.TransactionStatusSucceeded {
		return paymentdomain.EventTypePaymentSucceeded
	}
	return paymentdomain.EventTypePaymentFailed
}
