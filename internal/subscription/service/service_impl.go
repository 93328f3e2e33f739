package service

import (
	"context"
	"strings"

	"github.com/Pathan99z/rc-convergio-b-sub001/internal/subscription/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func NewService(p Params) domain.Service {
	return &Service{
		log:   p.Log.Named("subscription.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) FindPlan(ctx context.Context, tx *gorm.DB, planID snowflake.ID) (*domain.Plan, error) {
	plan, err := s.repo.FindPlanByID(ctx, tx, planID)
	if err != nil {
		return nil, err
	}
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}
	return plan, nil
}

func (s *Service) ApplyPayment(ctx context.Context, tx *gorm.DB, req domain.PaymentApplication) (*domain.Subscription, error) {
	if req.Plan == nil {
		return nil, domain.ErrPlanNotFound
	}

	sub, err := s.resolve(ctx, tx, req.Plan, req.PayerEmail, req.ProviderPaymentID)
	if err != nil {
		return nil, err
	}

	paidAt := req.PaidAt.UTC()
	providerPaymentID := strings.TrimSpace(req.ProviderPaymentID)

	if sub == nil {
		sub = &domain.Subscription{
			ID:                 s.genID.Generate(),
			OrgID:              req.Plan.OrgID,
			PlanID:             req.Plan.ID,
			Status:             domain.StatusActive,
			CurrentPeriodStart: paidAt,
			CurrentPeriodEnd:   req.Plan.Interval.Next(paidAt),
			PayerEmail:         strings.TrimSpace(req.PayerEmail),
			CreatedAt:          paidAt,
			UpdatedAt:          paidAt,
		}
		if providerPaymentID != "" {
			sub.ProviderPaymentID = &providerPaymentID
		}
		if err := s.repo.InsertSubscription(ctx, tx, sub); err != nil {
			return nil, err
		}
		s.log.Info("subscription created",
			zap.String("org_id", sub.OrgID.String()),
			zap.String("plan_id", sub.PlanID.String()),
			zap.String("subscription_id", sub.ID.String()),
		)
	} else {
		// Periods anchor at the payment timestamp, never at the previous
		// period end. A late payment shifts the whole window instead of
		// drifting it.
		sub.Status = domain.StatusActive
		sub.CurrentPeriodStart = paidAt
		sub.CurrentPeriodEnd = req.Plan.Interval.Next(paidAt)
		if email := strings.TrimSpace(req.PayerEmail); email != "" {
			sub.PayerEmail = email
		}
		if providerPaymentID != "" {
			sub.ProviderPaymentID = &providerPaymentID
		}
		if err := s.repo.UpdatePeriod(ctx, tx, sub); err != nil {
			return nil, err
		}
	}

	invoice := &domain.SubscriptionInvoice{
		ID:                s.genID.Generate(),
		OrgID:             req.Plan.OrgID,
		SubscriptionID:    sub.ID,
		ProviderPaymentID: providerPaymentID,
		AmountCents:       toMinorUnits(req.Amount),
		Currency:          strings.ToUpper(strings.TrimSpace(req.Currency)),
		PaidAt:            paidAt,
		CreatedAt:         paidAt,
	}
	if err := s.repo.InsertInvoice(ctx, tx, invoice); err != nil {
		return nil, err
	}

	return sub, nil
}

func (s *Service) MarkPaymentFailed(ctx context.Context, tx *gorm.DB, plan *domain.Plan, payerEmail, providerPaymentID string) (*domain.Subscription, error) {
	if plan == nil {
		return nil, domain.ErrPlanNotFound
	}

	sub, err := s.resolve(ctx, tx, plan, payerEmail, providerPaymentID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		s.log.Warn("failed payment with no matching subscription",
			zap.String("org_id", plan.OrgID.String()),
			zap.String("plan_id", plan.ID.String()),
			zap.String("payer_email", strings.TrimSpace(payerEmail)),
		)
		return nil, nil
	}

	if err := s.repo.MarkPastDue(ctx, tx, sub.OrgID, sub.ID); err != nil {
		return nil, err
	}
	sub.Status = domain.StatusPastDue
	return sub, nil
}

// resolve tries the correlation strategies in fixed priority order: first
// the stored provider payment id, then the payer email, then nothing.
func (s *Service) resolve(ctx context.Context, tx *gorm.DB, plan *domain.Plan, payerEmail, providerPaymentID string) (*domain.Subscription, error) {
	if id := strings.TrimSpace(providerPaymentID); id != "" {
		sub, err := s.repo.FindByProviderPaymentID(ctx, tx, plan.OrgID, plan.ID, id)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			return sub, nil
		}
	}
	if email := strings.TrimSpace(payerEmail); email != "" {
		sub, err := s.repo.FindByPayerEmail(ctx, tx, plan.OrgID, plan.ID, email)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			return sub, nil
		}
	}
	return nil, nil
}

func toMinorUnits(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}
