package core

import (
	"context"
	"fmt"

	"pantrycore/pkg/domain"
)

// NewAppendOnlyHistoryRule returns the in-transaction rule protecting the
// append-only logs. A change that shrinks or rewrites the recorded prefix of
// a price or purchase history is blocked.
func NewAppendOnlyHistoryRule() domain.Rule {
	return appendOnlyHistoryRule{}
}

type appendOnlyHistoryRule struct{}

func (appendOnlyHistoryRule) Name() string { return "append_only_history" }

func (appendOnlyHistoryRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		switch change.Entity {
		case domain.EntityPriceHistory:
			before, okBefore := payloadAs[domain.PriceHistory](change.Before)
			after, okAfter := payloadAs[domain.PriceHistory](change.After)
			if !okBefore || !okAfter {
				continue
			}
			if violation := checkAppendOnly(len(before.PricePoints), len(after.PricePoints), func(i int) bool {
				return before.PricePoints[i] == after.PricePoints[i]
			}); violation != "" {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "append_only_history",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("price history for %q at %q %s", before.ItemName, before.Store, violation),
					Entity:   domain.EntityPriceHistory,
					EntityID: before.ItemName,
				})
			}
		case domain.EntityFrequency:
			before, okBefore := payloadAs[domain.FrequencyData](change.Before)
			after, okAfter := payloadAs[domain.FrequencyData](change.After)
			if !okBefore || !okAfter {
				continue
			}
			if violation := checkAppendOnly(len(before.PurchaseHistory), len(after.PurchaseHistory), func(i int) bool {
				return before.PurchaseHistory[i] == after.PurchaseHistory[i]
			}); violation != "" {
				res.Violations = append(res.Violations, domain.Violation{
					Rule:     "append_only_history",
					Severity: domain.SeverityBlock,
					Message:  fmt.Sprintf("purchase history for %q %s", before.ItemName, violation),
					Entity:   domain.EntityFrequency,
					EntityID: before.ItemName,
				})
			}
		}
	}
	return res, nil
}

func checkAppendOnly(beforeLen, afterLen int, equalAt func(int) bool) string {
	if afterLen < beforeLen {
		return fmt.Sprintf("shrank from %d to %d entries", beforeLen, afterLen)
	}
	for i := 0; i < beforeLen; i++ {
		if !equalAt(i) {
			return fmt.Sprintf("rewrote entry %d", i)
		}
	}
	return ""
}
