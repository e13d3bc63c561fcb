package reconcile

import (
	"context"
	"fmt"
	"time"

	"items-planning/core/apperr"
	"items-planning/core/eform"
	"items-planning/core/logger"
	"items-planning/core/planning"

	"go.uber.org/zap"
)

// caseValidityYears is the length of the validity window stamped on new cases.
const caseValidityYears = 10

// SiteCaseSynchronizer makes one site agree with the current planning case: stale
// site rows are retracted together with their remote cases, and the current row
// gets exactly one remote case.
type SiteCaseSynchronizer struct {
	store         planning.Store
	cases         CaseService
	strictCleanup bool
	now           func() time.Time
	logger        *zap.Logger
}

// NewSiteCaseSynchronizer creates a synchronizer. A nil clock means time.Now.
func NewSiteCaseSynchronizer(store planning.Store, cases CaseService, strictCleanup bool, now func() time.Time, log *zap.Logger) *SiteCaseSynchronizer {
	if now == nil {
		now = time.Now
	}
	return &SiteCaseSynchronizer{
		store:         store,
		cases:         cases,
		strictCleanup: strictCleanup,
		now:           now,
		logger:        logger.OrNop(log),
	}
}

// Sync reconciles a single site. After a successful call exactly one active site
// row exists for (item, site) and it is bound to pc. The row carries a remote case
// id unless the remote service accepted the case without returning a handle, in
// which case the next run creates it.
func (s *SiteCaseSynchronizer) Sync(ctx context.Context, item *planning.Item, pc *planning.PlanningCase, siteID int, tpl *eform.Template, folderID int) (SiteOutcome, error) {
	out := SiteOutcome{SiteID: siteID}
	log := s.logger.With(zap.Int("item_id", item.ID), zap.Int("site_id", siteID), zap.Int("planning_case_id", pc.ID))

	if err := s.retractStale(ctx, item, pc, siteID, &out, log); err != nil {
		return out, err
	}

	now := s.now().UTC()
	payload := tpl.NewPayload(BuildLabel(item), folderID, now, now.AddDate(caseValidityYears, 0, 0))

	row, err := s.currentRow(ctx, item, pc, siteID)
	if err != nil {
		return out, err
	}
	out.PlanningCaseSiteID = row.ID

	if row.IsFulfilled() {
		out.AlreadyFulfilled = true
		out.RemoteCaseID = row.RemoteCaseID
		return out, nil
	}

	handle, err := s.cases.CreateCase(ctx, payload, siteID)
	if err != nil {
		return out, remoteError("reconcile.create_case", fmt.Sprintf("create case at site %d", siteID), err)
	}
	if handle == nil {
		log.Warn("Remote service returned no case handle")
		return out, nil
	}
	out.Created = true

	rec, err := s.cases.LookupByExternalID(ctx, *handle)
	if err != nil {
		return out, remoteError("reconcile.create_case", fmt.Sprintf("lookup created case %d", *handle), err)
	}
	if rec == nil || rec.CaseID == nil {
		log.Warn("Created case has no internal id", zap.Int("external_id", *handle))
		return out, nil
	}

	if err := s.store.SetRemoteCaseID(ctx, row, *rec.CaseID); err != nil {
		return out, err
	}
	out.RemoteCaseID = row.RemoteCaseID
	log.Info("Created remote case", zap.Int("external_id", *handle), zap.Int("case_id", *rec.CaseID))
	return out, nil
}

// retractStale retracts every active row for (item, site) bound to an older
// planning case, deleting its remote case first.
func (s *SiteCaseSynchronizer) retractStale(ctx context.Context, item *planning.Item, pc *planning.PlanningCase, siteID int, out *SiteOutcome, log *zap.Logger) error {
	rows, err := s.store.ActiveCaseSites(ctx, item.ID, siteID)
	if err != nil {
		return err
	}

	for i := range rows {
		row := &rows[i]
		if row.PlanningCaseID == pc.ID {
			continue
		}

		deleted, err := s.deleteRemote(ctx, row)
		if err != nil {
			if s.strictCleanup {
				return err
			}
			out.CleanupFailures++
			log.Warn("Stale remote case cleanup failed",
				zap.Int("planning_case_site_id", row.ID),
				zap.Error(err))
		}
		if deleted {
			out.Deleted++
		}

		if err := s.store.RetractCaseSite(ctx, row); err != nil {
			return err
		}
		out.Retracted++
	}
	return nil
}

// deleteRemote deletes the remote case behind a stale row. A case the remote
// service no longer knows counts as already gone.
func (s *SiteCaseSynchronizer) deleteRemote(ctx context.Context, row *planning.PlanningCaseSite) (bool, error) {
	if !row.IsFulfilled() {
		return false, nil
	}

	rec, err := s.cases.LookupByCaseID(ctx, *row.RemoteCaseID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, remoteError("reconcile.cleanup", fmt.Sprintf("lookup case %d", *row.RemoteCaseID), err)
	}
	if rec == nil || rec.ExternalID == nil {
		return false, nil
	}

	err = s.cases.DeleteCase(ctx, *rec.ExternalID)
	if apperr.IsKind(err, apperr.KindNotFound) {
		return false, nil
	}
	if err != nil {
		return false, remoteError("reconcile.cleanup", fmt.Sprintf("delete case %d", *rec.ExternalID), err)
	}
	return true, nil
}

// currentRow finds or creates the active row for (pc, site).
func (s *SiteCaseSynchronizer) currentRow(ctx context.Context, item *planning.Item, pc *planning.PlanningCase, siteID int) (*planning.PlanningCaseSite, error) {
	rows, err := s.store.CaseSitesFor(ctx, pc.ID, siteID)
	if err != nil {
		return nil, err
	}

	switch len(rows) {
	case 0:
		row := &planning.PlanningCaseSite{
			PlanningCaseID:   pc.ID,
			ItemID:           item.ID,
			SiteID:           siteID,
			RemoteTemplateID: pc.RemoteTemplateID,
			Status:           planning.StatusCreated,
		}
		if err := s.store.CreateCaseSite(ctx, row); err != nil {
			return nil, err
		}
		return row, nil
	case 1:
		return &rows[0], nil
	default:
		s.logger.Error("Multiple active case sites for planning case",
			zap.Int("planning_case_id", pc.ID),
			zap.Int("site_id", siteID),
			zap.Int("count", len(rows)))
		return nil, apperr.Consistency(fmt.Sprintf("planning case %d has %d active rows for site %d", pc.ID, len(rows), siteID)).
			WithOp("reconcile.case_site")
	}
}
