package domain

import (
	"strings"

	"github.com/bwmarrin/snowflake"
)

type ReferenceKind string

const (
	ReferenceKindPaymentLink  ReferenceKind = "payment_link"
	ReferenceKindSubscription ReferenceKind = "subscription"
)

// ParsedReference is the classified merchant reference of a webhook.
// The provider encodes the subject in the reference itself: a bare numeric id
// targets a payment link, a "subscription_{planID}_{nonce}" composite targets
// a recurring plan.
type ParsedReference struct {
	Kind   ReferenceKind
	LinkID snowflake.ID
	PlanID snowflake.ID
}

const subscriptionPrefix = "subscription_"

// ClassifyReference parses a merchant reference into its subject.
func ClassifyReference(reference string) (ParsedReference, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return ParsedReference{}, ErrMissingReference
	}

	if strings.HasPrefix(reference, subscriptionPrefix) {
		rest := strings.TrimPrefix(reference, subscriptionPrefix)
		parts := strings.SplitN(rest, "_", 2)
		planID, err := snowflake.ParseString(parts[0])
		if err != nil || planID == 0 {
			return ParsedReference{}, ErrMissingReference
		}
		return ParsedReference{Kind: ReferenceKindSubscription, PlanID: planID}, nil
	}

	linkID, err := snowflake.ParseString(reference)
	if err != nil || linkID == 0 {
		return ParsedReference{}, ErrMissingReference
	}
	return ParsedReference{Kind: ReferenceKindPaymentLink, LinkID: linkID}, nil
}
