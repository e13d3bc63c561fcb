package reconcile

import (
	"context"
	"errors"
	"testing"

	"items-planning/core/apperr"
	"items-planning/core/eform"
	"items-planning/core/planning"
	"items-planning/core/reconcile/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTemplate = &eform.Template{ID: 5, Label: "Inspection", Elements: []eform.Element{{ID: 1, Label: "Main"}}}

// staleFixture creates an item with a retracted-to-be planning case holding a fulfilled
// row at site 1, plus the current planning case.
func staleFixture(t *testing.T) (*planning.GormStore, *gorm.DB, *planning.Item, *planning.PlanningCase) {
	store, db := setupStore(t)
	ctx := context.Background()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})

	old := &planning.PlanningCase{ItemID: item.ID, Status: planning.StatusCreated, RemoteTemplateID: 5}
	require.NoError(t, store.CreatePlanningCase(ctx, old))
	row := &planning.PlanningCaseSite{PlanningCaseID: old.ID, ItemID: item.ID, SiteID: 1, RemoteTemplateID: 5}
	require.NoError(t, store.CreateCaseSite(ctx, row))
	require.NoError(t, store.SetRemoteCaseID(ctx, row, 900))
	require.NoError(t, store.RetractPlanningCase(ctx, old))

	current := &planning.PlanningCase{ItemID: item.ID, Status: planning.StatusCreated, RemoteTemplateID: 5}
	require.NoError(t, store.CreatePlanningCase(ctx, current))
	return store, db, item, current
}

func expectCreate(cases *mocks.CaseService, caseID int) {
	cases.On("CreateCase", mock.Anything, mock.AnythingOfType("*eform.CasePayload"), 1).Return(intPtr(5000), nil).Once()
	cases.On("LookupByExternalID", mock.Anything, 5000).Return(&eform.CaseRecord{ExternalID: intPtr(5000), CaseID: intPtr(caseID)}, nil).Once()
}

func TestSync_DeletesStaleRemoteCase(t *testing.T) {
	store, db, item, pc := staleFixture(t)
	cases := new(mocks.CaseService)
	cases.On("LookupByCaseID", mock.Anything, 900).Return(&eform.CaseRecord{ExternalID: intPtr(4900), CaseID: intPtr(900)}, nil)
	cases.On("DeleteCase", mock.Anything, 4900).Return(nil)
	expectCreate(cases, 901)

	out, err := NewSiteCaseSynchronizer(store, cases, false, fixedClock, nil).Sync(context.Background(), item, pc, 1, testTemplate, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Retracted)
	assert.Equal(t, 1, out.Deleted)
	assert.True(t, out.Created)
	require.NotNil(t, out.RemoteCaseID)
	assert.Equal(t, 901, *out.RemoteCaseID)

	active := siteRows(t, db, item.ID, 1, planning.StateActive)
	require.Len(t, active, 1)
	assert.Equal(t, pc.ID, active[0].PlanningCaseID)
	assert.Len(t, siteRows(t, db, item.ID, 1, planning.StateRetracted), 1)
	cases.AssertExpectations(t)
}

func TestSync_StaleCaseAlreadyGone(t *testing.T) {
	store, _, item, pc := staleFixture(t)
	cases := new(mocks.CaseService)
	cases.On("LookupByCaseID", mock.Anything, 900).Return(nil, nil)
	expectCreate(cases, 901)

	out, err := NewSiteCaseSynchronizer(store, cases, false, fixedClock, nil).Sync(context.Background(), item, pc, 1, testTemplate, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, out.Retracted)
	assert.Equal(t, 0, out.Deleted)
	cases.AssertNotCalled(t, "DeleteCase", mock.Anything, mock.Anything)
}

func TestSync_StaleCaseWithoutExternalHandle(t *testing.T) {
	store, _, item, pc := staleFixture(t)
	cases := new(mocks.CaseService)
	cases.On("LookupByCaseID", mock.Anything, 900).Return(&eform.CaseRecord{CaseID: intPtr(900)}, nil)
	expectCreate(cases, 901)

	out, err := NewSiteCaseSynchronizer(store, cases, false, fixedClock, nil).Sync(context.Background(), item, pc, 1, testTemplate, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Retracted)
	cases.AssertNotCalled(t, "DeleteCase", mock.Anything, mock.Anything)
}

func TestSync_CleanupFailureDegrades(t *testing.T) {
	store, db, item, pc := staleFixture(t)
	cases := new(mocks.CaseService)
	cases.On("LookupByCaseID", mock.Anything, 900).Return(&eform.CaseRecord{ExternalID: intPtr(4900)}, nil)
	cases.On("DeleteCase", mock.Anything, 4900).Return(errors.New("gateway timeout"))
	expectCreate(cases, 901)

	out, err := NewSiteCaseSynchronizer(store, cases, false, fixedClock, nil).Sync(context.Background(), item, pc, 1, testTemplate, 0)
	require.NoError(t, err)

	assert.Equal(t, 1, out.CleanupFailures)
	assert.Equal(t, 1, out.Retracted)
	assert.Equal(t, 0, out.Deleted)
	assert.Len(t, siteRows(t, db, item.ID, 1, planning.StateActive), 1)
}

func TestSync_CleanupFailureStrict(t *testing.T) {
	store, db, item, pc := staleFixture(t)
	cases := new(mocks.CaseService)
	cases.On("LookupByCaseID", mock.Anything, 900).Return(nil, errors.New("gateway timeout"))

	_, err := NewSiteCaseSynchronizer(store, cases, true, fixedClock, nil).Sync(context.Background(), item, pc, 1, testTemplate, 0)
	require.Error(t, err)
	assert.Equal(t, apperr.KindRemote, apperr.KindOf(err))

	// the stale row survives for the next run
	active := siteRows(t, db, item.ID, 1, planning.StateActive)
	require.Len(t, active, 1)
	assert.NotEqual(t, pc.ID, active[0].PlanningCaseID)
	cases.AssertNotCalled(t, "CreateCase", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_NotFoundDuringCleanupIsBenignWhenStrict(t *testing.T) {
	store, _, item, pc := staleFixture(t)
	cases := new(mocks.CaseService)
	cases.On("LookupByCaseID", mock.Anything, 900).Return(&eform.CaseRecord{ExternalID: intPtr(4900)}, nil)
	cases.On("DeleteCase", mock.Anything, 4900).Return(apperr.NotFound("case 4900"))
	expectCreate(cases, 901)

	out, err := NewSiteCaseSynchronizer(store, cases, true, fixedClock, nil).Sync(context.Background(), item, pc, 1, testTemplate, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, out.CleanupFailures)
	assert.Equal(t, 0, out.Deleted)
	assert.Equal(t, 1, out.Retracted)
}

func TestSync_AlreadyFulfilled(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	pc := &planning.PlanningCase{ItemID: item.ID, Status: planning.StatusCreated, RemoteTemplateID: 5}
	require.NoError(t, store.CreatePlanningCase(ctx, pc))
	row := &planning.PlanningCaseSite{PlanningCaseID: pc.ID, ItemID: item.ID, SiteID: 1}
	require.NoError(t, store.CreateCaseSite(ctx, row))
	require.NoError(t, store.SetRemoteCaseID(ctx, row, 77))

	cases := new(mocks.CaseService)
	out, err := NewSiteCaseSynchronizer(store, cases, false, fixedClock, nil).Sync(ctx, item, pc, 1, testTemplate, 0)
	require.NoError(t, err)

	assert.True(t, out.AlreadyFulfilled)
	assert.Equal(t, row.ID, out.PlanningCaseSiteID)
	cases.AssertNotCalled(t, "CreateCase", mock.Anything, mock.Anything, mock.Anything)
}

func TestSync_CreatedCaseWithoutInternalID(t *testing.T) {
	store, db := setupStore(t)
	ctx := context.Background()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	pc := &planning.PlanningCase{ItemID: item.ID, Status: planning.StatusCreated, RemoteTemplateID: 5}
	require.NoError(t, store.CreatePlanningCase(ctx, pc))

	cases := new(mocks.CaseService)
	cases.On("CreateCase", mock.Anything, mock.Anything, 1).Return(intPtr(5000), nil)
	cases.On("LookupByExternalID", mock.Anything, 5000).Return(nil, nil)

	out, err := NewSiteCaseSynchronizer(store, cases, false, fixedClock, nil).Sync(ctx, item, pc, 1, testTemplate, 0)
	require.NoError(t, err)
	assert.True(t, out.Created)
	assert.Nil(t, out.RemoteCaseID)

	rows := siteRows(t, db, item.ID, 1, planning.StateActive)
	require.Len(t, rows, 1)
	assert.Equal(t, planning.StatusCreated, rows[0].Status)
	assert.Equal(t, 5, rows[0].RemoteTemplateID)
	assert.False(t, rows[0].IsFulfilled())
}
