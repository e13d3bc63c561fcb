package reconcile

import (
	"context"
	"fmt"

	"items-planning/core/apperr"
	"items-planning/core/logger"
	"items-planning/core/planning"

	"go.uber.org/zap"
)

// PlanningCaseReconciler retracts the active planning case of an item and
// creates its successor. It makes no remote calls.
type PlanningCaseReconciler struct {
	store  planning.Store
	logger *zap.Logger
}

// NewPlanningCaseReconciler creates a reconciler.
func NewPlanningCaseReconciler(store planning.Store, log *zap.Logger) *PlanningCaseReconciler {
	return &PlanningCaseReconciler{store: store, logger: logger.OrNop(log)}
}

// Reconcile makes a new planning case the only active one for the item and returns
// it together with the case it superseded (nil if there was none). Both writes
// happen in one transaction.
func (r *PlanningCaseReconciler) Reconcile(ctx context.Context, item *planning.Item, templateID int, fingerprint string) (current, previous *planning.PlanningCase, err error) {
	err = r.store.Transaction(ctx, func(tx planning.Store) error {
		active, err := tx.ActivePlanningCases(ctx, item.ID)
		if err != nil {
			return err
		}
		if len(active) > 1 {
			ids := make([]int, len(active))
			for i, pc := range active {
				ids[i] = pc.ID
			}
			r.logger.Error("Multiple active planning cases",
				zap.Int("item_id", item.ID),
				zap.Ints("planning_case_ids", ids))
			return apperr.Consistency(fmt.Sprintf("item %d has %d active planning cases", item.ID, len(active))).
				WithOp("reconcile.planning_case")
		}

		if len(active) == 1 {
			previous = &active[0]
			if err := tx.RetractPlanningCase(ctx, previous); err != nil {
				return err
			}
		}

		current = &planning.PlanningCase{
			ItemID:           item.ID,
			Status:           planning.StatusCreated,
			RemoteTemplateID: templateID,
			Fingerprint:      fingerprint,
		}
		return tx.CreatePlanningCase(ctx, current)
	})
	if err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}
