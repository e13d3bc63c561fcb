package reconcile

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"items-planning/core/apperr"
	"items-planning/core/planning"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestOrchestrator(store planning.Store, remote *fakeRemote, sites []int, opts ...Option) *Orchestrator {
	opts = append([]Option{WithClock(fixedClock), WithLogger(zap.NewNop())}, opts...)
	return NewOrchestrator(store, remote, remote, staticSites(sites), Config{}, opts...)
}

func itemEvent(itemID int) ItemChanged {
	return ItemChanged{ItemID: itemID, TemplateID: 5, FolderName: "Cranes"}
}

func TestHandle_FreshItemOneSite(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1", Name: "Forklift", Type: "Heavy"})
	orch := newTestOrchestrator(store, remote, []int{1})

	report, err := orch.Handle(context.Background(), itemEvent(item.ID))
	require.NoError(t, err)

	cases := activeCases(t, db, item.ID)
	require.Len(t, cases, 1)
	assert.Equal(t, planning.StatusCreated, cases[0].Status)
	assert.Equal(t, 5, cases[0].RemoteTemplateID)
	assert.Equal(t, cases[0].ID, report.PlanningCaseID)
	assert.Nil(t, report.RetractedCaseID)

	rows := siteRows(t, db, item.ID, 1, planning.StateActive)
	require.Len(t, rows, 1)
	assert.Equal(t, cases[0].ID, rows[0].PlanningCaseID)
	require.NotNil(t, rows[0].RemoteCaseID)
	assert.Empty(t, siteRows(t, db, item.ID, 1, planning.StateRetracted))

	assert.Equal(t, 1, remote.createCount())
	assert.Equal(t, 0, remote.deleteCount())
	assert.Equal(t, 1, report.Created())
	assert.Equal(t, 0, report.Deleted())
	assert.NotEmpty(t, report.RunID)
}

func TestHandle_PayloadContents(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1", Name: "Forklift", Type: "Heavy"})
	orch := newTestOrchestrator(store, remote, []int{1, 2})

	report, err := orch.Handle(context.Background(), itemEvent(item.ID))
	require.NoError(t, err)

	require.Len(t, remote.creates, 2)
	for _, call := range remote.creates {
		p := call.payload
		assert.Equal(t, "A1 - Forklift - Heavy", p.Label)
		assert.Equal(t, "A1 - Forklift - Heavy", p.Elements[0].Label)
		assert.Equal(t, report.FolderID, p.FolderID)
		assert.Equal(t, fixedNow, p.StartDate)
		assert.Equal(t, fixedNow.AddDate(10, 0, 0), p.EndDate)
	}
	// each site gets its own payload
	assert.NotSame(t, remote.creates[0].payload, remote.creates[1].payload)
	// folder resolved once for the whole run
	assert.Equal(t, 1, remote.folderCalls)
	assert.Equal(t, 100, report.FolderID)
	// the template is not mutated by the run
	assert.Equal(t, "Main", remote.template.Elements[0].Label)
}

func TestHandle_ExistingCaseTwoSites(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	ctx := context.Background()
	item := seedItem(t, db, planning.Item{ID: 7, ItemNumber: "B2", Name: "Crane"})

	// A previous reconciliation left an active case with two fulfilled sites.
	old := &planning.PlanningCase{ItemID: item.ID, Status: planning.StatusCreated, RemoteTemplateID: 5}
	require.NoError(t, store.CreatePlanningCase(ctx, old))
	for _, siteID := range []int{1, 2} {
		row := &planning.PlanningCaseSite{PlanningCaseID: old.ID, ItemID: item.ID, SiteID: siteID, RemoteTemplateID: 5, Status: planning.StatusCreated}
		require.NoError(t, store.CreateCaseSite(ctx, row))
		require.NoError(t, store.SetRemoteCaseID(ctx, row, remote.addCase()))
	}

	orch := newTestOrchestrator(store, remote, []int{1, 2})
	report, err := orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)

	cases := activeCases(t, db, item.ID)
	require.Len(t, cases, 1)
	assert.NotEqual(t, old.ID, cases[0].ID)
	require.NotNil(t, report.RetractedCaseID)
	assert.Equal(t, old.ID, *report.RetractedCaseID)

	var reloaded planning.PlanningCase
	require.NoError(t, db.First(&reloaded, old.ID).Error)
	assert.Equal(t, planning.StateRetracted, reloaded.WorkflowState)

	for _, siteID := range []int{1, 2} {
		retracted := siteRows(t, db, item.ID, siteID, planning.StateRetracted)
		require.Len(t, retracted, 1)
		assert.Equal(t, old.ID, retracted[0].PlanningCaseID)

		active := siteRows(t, db, item.ID, siteID, planning.StateActive)
		require.Len(t, active, 1)
		assert.Equal(t, cases[0].ID, active[0].PlanningCaseID)
		assert.True(t, active[0].IsFulfilled())
	}

	assert.Equal(t, 2, remote.deleteCount())
	assert.Equal(t, 2, remote.createCount())
	assert.Equal(t, 2, remote.liveCases())
	assert.Equal(t, 2, report.Deleted())
	assert.Equal(t, 2, report.Created())
}

func TestHandle_ConvergesOnUnchangedItem(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 3, ItemNumber: "C3"})
	orch := newTestOrchestrator(store, remote, []int{1, 2})
	ctx := context.Background()

	first, err := orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)
	require.Equal(t, 2, remote.createCount())

	second, err := orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)

	assert.True(t, second.Reused)
	assert.Equal(t, first.PlanningCaseID, second.PlanningCaseID)
	assert.Equal(t, 2, remote.createCount())
	assert.Equal(t, 0, remote.deleteCount())
	for _, s := range second.Sites {
		assert.True(t, s.AlreadyFulfilled)
		assert.False(t, s.Created)
	}
	assert.Len(t, activeCases(t, db, item.ID), 1)
}

func TestHandle_ChangedItemReplacesCases(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 3, ItemNumber: "C3"})
	orch := newTestOrchestrator(store, remote, []int{1})
	ctx := context.Background()

	_, err := orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)

	require.NoError(t, db.Model(&planning.Item{}).Where("id = ?", item.ID).Update("name", "Renamed").Error)

	report, err := orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)

	assert.False(t, report.Reused)
	assert.NotNil(t, report.RetractedCaseID)
	assert.Equal(t, 1, remote.deleteCount())
	assert.Equal(t, 2, remote.createCount())
	assert.Equal(t, "C3 - Renamed", remote.creates[1].payload.Label)
	assert.Len(t, activeCases(t, db, item.ID), 1)
	assert.Len(t, siteRows(t, db, item.ID, 1, planning.StateActive), 1)
}

func TestHandle_ForceRecreates(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 3, ItemNumber: "C3"})
	orch := newTestOrchestrator(store, remote, []int{1})
	ctx := context.Background()

	_, err := orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)

	ev := itemEvent(item.ID)
	ev.Force = true
	report, err := orch.Handle(ctx, ev)
	require.NoError(t, err)

	assert.False(t, report.Reused)
	assert.Equal(t, 1, remote.deleteCount())
	assert.Equal(t, 2, remote.createCount())
	assert.Equal(t, 1, remote.liveCases())
}

func TestHandle_MissingItemIsNoop(t *testing.T) {
	store, _ := setupStore(t)
	remote := newFakeRemote()
	orch := newTestOrchestrator(store, remote, []int{1})

	report, err := orch.Handle(context.Background(), itemEvent(404))
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Equal(t, 0, remote.createCount())
	assert.Equal(t, 0, remote.folderCalls)
}

func TestHandle_InvalidEvent(t *testing.T) {
	store, _ := setupStore(t)
	orch := newTestOrchestrator(store, newFakeRemote(), []int{1})

	tests := []struct {
		name string
		ev   ItemChanged
	}{
		{"MissingItem", ItemChanged{TemplateID: 5, FolderName: "x"}},
		{"MissingTemplate", ItemChanged{ItemID: 1, FolderName: "x"}},
		{"MissingFolder", ItemChanged{ItemID: 1, TemplateID: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := orch.Handle(context.Background(), tt.ev)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestHandle_UnknownTemplate(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	orch := newTestOrchestrator(store, remote, []int{1})

	ev := itemEvent(item.ID)
	ev.TemplateID = 99
	_, err := orch.Handle(context.Background(), ev)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Empty(t, activeCases(t, db, item.ID))
}

func TestHandle_RemoteFailureConvergesOnRetry(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	remote.failCreate[2] = errUnavailable
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	orch := newTestOrchestrator(store, remote, []int{1, 2})
	ctx := context.Background()

	report, err := orch.Handle(ctx, itemEvent(item.ID))
	require.Error(t, err)
	assert.True(t, apperr.IsRetryable(err))
	assert.ErrorIs(t, err, errUnavailable)
	assert.Len(t, report.Sites, 2)
	assert.NotEmpty(t, report.Error)

	// site 2 has an unfulfilled row
	rows := siteRows(t, db, item.ID, 2, planning.StateActive)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].IsFulfilled())

	report, err = orch.Handle(ctx, itemEvent(item.ID))
	require.NoError(t, err)
	assert.True(t, report.Reused)
	assert.Equal(t, 2, remote.createCount())
	assert.True(t, report.Sites[0].AlreadyFulfilled)
	assert.True(t, report.Sites[1].Created)
}

func TestHandle_NoHandleLeavesRowUnfulfilled(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	remote.noHandle = true
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	orch := newTestOrchestrator(store, remote, []int{1})

	report, err := orch.Handle(context.Background(), itemEvent(item.ID))
	require.NoError(t, err)
	assert.False(t, report.Sites[0].Created)

	rows := siteRows(t, db, item.ID, 1, planning.StateActive)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].RemoteCaseID)
}

func TestHandle_MultipleActiveCasesIsConsistencyError(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})

	// Rows written without the active key bypass the unique index, as legacy data could.
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&planning.PlanningCase{ItemID: item.ID, WorkflowState: planning.StateActive, RemoteTemplateID: 5}).Error)
	}

	orch := newTestOrchestrator(store, remote, []int{1})
	_, err := orch.Handle(context.Background(), itemEvent(item.ID))

	require.Error(t, err)
	assert.Equal(t, apperr.KindConsistency, apperr.KindOf(err))
	assert.False(t, apperr.IsRetryable(err))
	assert.Equal(t, 0, remote.createCount())
	assert.Len(t, activeCases(t, db, item.ID), 2)
}

func TestHandle_ConcurrentEventsForOneItem(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	orch := newTestOrchestrator(store, remote, []int{1, 2})

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ev := itemEvent(item.ID)
			ev.Force = true
			_, err := orch.Handle(context.Background(), ev)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Len(t, activeCases(t, db, item.ID), 1)
	for _, siteID := range []int{1, 2} {
		assert.Len(t, siteRows(t, db, item.ID, siteID, planning.StateActive), 1)
	}
	// every superseded remote case was deleted
	assert.Equal(t, 2, remote.liveCases())
}

func TestHandle_ArchivesReport(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})

	t.Run("Saved", func(t *testing.T) {
		sink := &recordingSink{}
		orch := newTestOrchestrator(store, remote, []int{1}, WithReportSink(sink))

		report, err := orch.Handle(context.Background(), itemEvent(item.ID))
		require.NoError(t, err)
		require.Len(t, sink.reports, 1)
		assert.Same(t, report, sink.reports[0])
		assert.Equal(t, fixedNow, report.FinishedAt)
	})

	t.Run("SinkFailureIsNotFatal", func(t *testing.T) {
		sink := &recordingSink{err: fmt.Errorf("bucket gone")}
		orch := newTestOrchestrator(store, remote, []int{1}, WithReportSink(sink))

		_, err := orch.Handle(context.Background(), itemEvent(item.ID))
		assert.NoError(t, err)
		assert.Len(t, sink.reports, 1)
	})
}

type refusingLocker struct{}

func (refusingLocker) Lock(context.Context, string) (func(), error) {
	return nil, apperr.Conflict("held elsewhere")
}

func TestHandle_LockNotObtained(t *testing.T) {
	store, db := setupStore(t)
	remote := newFakeRemote()
	item := seedItem(t, db, planning.Item{ID: 1, ItemNumber: "A1"})
	orch := newTestOrchestrator(store, remote, []int{1}, WithLocker(refusingLocker{}))

	_, err := orch.Handle(context.Background(), itemEvent(item.ID))
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	assert.True(t, apperr.IsRetryable(err))
	assert.Empty(t, activeCases(t, db, item.ID))
}
