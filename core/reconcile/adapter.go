package reconcile

import (
	"context"

	"items-planning/core/apperr"
	"items-planning/core/eform"
)

// CaseService is the remote case service consumed by the engine.
// core/eform.Client implements it.
type CaseService interface {
	// ReadTemplate returns the template definition cases are built from.
	ReadTemplate(ctx context.Context, templateID int) (*eform.Template, error)
	// CreateCase creates a case at a site and returns its external handle,
	// or nil when the service did not assign one.
	CreateCase(ctx context.Context, payload *eform.CasePayload, siteID int) (*int, error)
	// LookupByExternalID resolves a case by external handle. A nil record means unknown.
	LookupByExternalID(ctx context.Context, externalID int) (*eform.CaseRecord, error)
	// LookupByCaseID resolves a case by internal id. A nil record means unknown.
	LookupByCaseID(ctx context.Context, caseID int) (*eform.CaseRecord, error)
	// DeleteCase removes a case instance by external handle. A case that is
	// already gone is reported as apperr.KindNotFound.
	DeleteCase(ctx context.Context, externalID int) error
}

// FolderService is the remote folder namespace.
type FolderService interface {
	ListFolders(ctx context.Context, includeInactive bool) ([]eform.Folder, error)
	CreateFolder(ctx context.Context, name, description string, parentID *int) error
}

// SiteSource returns the deduplicated, ascending set of target site ids.
type SiteSource interface {
	SiteIDs(ctx context.Context) ([]int, error)
}

// Locker provides an exclusive scope per key. The returned function releases it.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// ReportSink receives the report of every finished run.
type ReportSink interface {
	Save(ctx context.Context, report *Report) error
}

// remoteError makes sure a collaborator failure carries a kind. Errors that
// already have one pass through unchanged.
func remoteError(op, message string, err error) error {
	if apperr.KindOf(err) != apperr.KindUnknown {
		return err
	}
	return apperr.Remote(message, err).WithOp(op)
}
