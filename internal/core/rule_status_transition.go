package core

import (
	"context"
	"fmt"

	"pantrycore/pkg/domain"
)

// NewStatusTransitionRule returns the in-transaction rule enforcing the list
// item lifecycle. Items may move to_buy -> bought, and to_buy or bought ->
// still_needed; everything else is blocked.
func NewStatusTransitionRule() domain.Rule {
	return statusTransitionRule{}
}

type statusTransitionRule struct{}

var validStatuses = map[domain.ItemStatus]struct{}{
	domain.StatusToBuy:       {},
	domain.StatusBought:      {},
	domain.StatusStillNeeded: {},
}

var allowedTransitions = map[domain.ItemStatus]map[domain.ItemStatus]struct{}{
	domain.StatusToBuy: {
		domain.StatusBought:      {},
		domain.StatusStillNeeded: {},
	},
	domain.StatusBought: {
		domain.StatusStillNeeded: {},
	},
	domain.StatusStillNeeded: {},
}

func (statusTransitionRule) Name() string { return "status_transition" }

func (statusTransitionRule) Evaluate(_ context.Context, _ domain.RuleView, changes []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, change := range changes {
		if change.Entity != domain.EntityGroceryItem {
			continue
		}
		after, ok := payloadAs[domain.GroceryItem](change.After)
		if !ok {
			continue
		}
		if _, valid := validStatuses[after.Status]; !valid {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "status_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("item %s set to unknown status %q", after.ID, after.Status),
				Entity:   domain.EntityGroceryItem,
				EntityID: after.ID.String(),
			})
			continue
		}
		if change.Action != domain.ActionUpdate {
			continue
		}
		before, ok := payloadAs[domain.GroceryItem](change.Before)
		if !ok || before.Status == after.Status {
			continue
		}
		if _, allowed := allowedTransitions[before.Status][after.Status]; !allowed {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "status_transition",
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("item %s cannot move from %s to %s", after.ID, before.Status, after.Status),
				Entity:   domain.EntityGroceryItem,
				EntityID: after.ID.String(),
			})
		}
	}
	return res, nil
}
