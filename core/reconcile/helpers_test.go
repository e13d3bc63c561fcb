package reconcile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"items-planning/core/database"
	"items-planning/core/eform"
	"items-planning/core/planning"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var fixedNow = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

// setupStore creates an in-memory SQLite planning store and returns the raw handle
// for seeding and assertions.
func setupStore(t *testing.T) (*planning.GormStore, *gorm.DB) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	store := planning.NewStore(db)
	require.NoError(t, store.Migrate(context.Background()))
	return store, db
}

func seedItem(t *testing.T, db *gorm.DB, item planning.Item) *planning.Item {
	require.NoError(t, db.Create(&item).Error)
	return &item
}

func activeCases(t *testing.T, db *gorm.DB, itemID int) []planning.PlanningCase {
	var cases []planning.PlanningCase
	require.NoError(t, db.Where("item_id = ? AND workflow_state = ?", itemID, planning.StateActive).Find(&cases).Error)
	return cases
}

func siteRows(t *testing.T, db *gorm.DB, itemID, siteID int, state planning.WorkflowState) []planning.PlanningCaseSite {
	var rows []planning.PlanningCaseSite
	require.NoError(t, db.Where("item_id = ? AND site_id = ? AND workflow_state = ?", itemID, siteID, state).Order("id").Find(&rows).Error)
	return rows
}

type staticSites []int

func (s staticSites) SiteIDs(context.Context) ([]int, error) { return s, nil }

type createCall struct {
	siteID  int
	payload *eform.CasePayload
}

// fakeRemote is an in-memory remote case and folder service.
type fakeRemote struct {
	mu sync.Mutex

	template *eform.Template
	folders  []eform.Folder

	nextCase    int
	caseToExt   map[int]int
	extToCase   map[int]int
	creates     []createCall
	deletes     []int
	folderCalls int

	// failCreate makes CreateCase fail once per listed site.
	failCreate map[int]error
	// noHandle makes CreateCase succeed without returning a handle.
	noHandle bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{
		template:   &eform.Template{ID: 5, Label: "Inspection", Elements: []eform.Element{{ID: 1, Label: "Main"}}},
		caseToExt:  make(map[int]int),
		extToCase:  make(map[int]int),
		failCreate: make(map[int]error),
	}
}

// addCase registers a live remote case and returns its internal id.
func (f *fakeRemote) addCase() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextCase++
	caseID := f.nextCase
	ext := 1000 + caseID
	f.caseToExt[caseID] = ext
	f.extToCase[ext] = caseID
	return caseID
}

func (f *fakeRemote) createCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates)
}

func (f *fakeRemote) deleteCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.deletes)
}

func (f *fakeRemote) liveCases() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.caseToExt)
}

func (f *fakeRemote) ReadTemplate(_ context.Context, templateID int) (*eform.Template, error) {
	if f.template == nil || f.template.ID != templateID {
		return nil, nil
	}
	tpl := *f.template
	return &tpl, nil
}

func (f *fakeRemote) CreateCase(_ context.Context, payload *eform.CasePayload, siteID int) (*int, error) {
	f.mu.Lock()
	if err, ok := f.failCreate[siteID]; ok {
		delete(f.failCreate, siteID)
		f.mu.Unlock()
		return nil, err
	}
	f.creates = append(f.creates, createCall{siteID: siteID, payload: payload})
	noHandle := f.noHandle
	f.mu.Unlock()

	if noHandle {
		return nil, nil
	}
	ext := 1000 + f.addCase()
	return &ext, nil
}

func (f *fakeRemote) LookupByExternalID(_ context.Context, externalID int) (*eform.CaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	caseID, ok := f.extToCase[externalID]
	if !ok {
		return nil, nil
	}
	return &eform.CaseRecord{ExternalID: &externalID, CaseID: &caseID}, nil
}

func (f *fakeRemote) LookupByCaseID(_ context.Context, caseID int) (*eform.CaseRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ext, ok := f.caseToExt[caseID]
	if !ok {
		return nil, nil
	}
	return &eform.CaseRecord{ExternalID: &ext, CaseID: &caseID}, nil
}

func (f *fakeRemote) DeleteCase(_ context.Context, externalID int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, externalID)
	if caseID, ok := f.extToCase[externalID]; ok {
		delete(f.extToCase, externalID)
		delete(f.caseToExt, caseID)
	}
	return nil
}

func (f *fakeRemote) ListFolders(context.Context, bool) ([]eform.Folder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]eform.Folder, len(f.folders))
	copy(out, f.folders)
	return out, nil
}

func (f *fakeRemote) CreateFolder(_ context.Context, name, _ string, _ *int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folderCalls++
	id := 100 + len(f.folders)
	f.folders = append(f.folders, eform.Folder{Name: name, RemoteID: &id})
	return nil
}

var errUnavailable = errors.New("service unavailable")

type recordingSink struct {
	mu      sync.Mutex
	reports []*Report
	err     error
}

func (s *recordingSink) Save(_ context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append(s.reports, r)
	return s.err
}
