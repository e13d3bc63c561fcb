package planning

import (
	"context"
	"errors"
	"fmt"

	"items-planning/core/apperr"
	"items-planning/core/database"

	"gorm.io/gorm"
)

// Store is the persistence boundary of the reconciliation engine.
// All lookups of "current" rows filter on the Active workflow state.
type Store interface {
	// GetItem returns the item, or nil if it does not exist.
	GetItem(ctx context.Context, id int) (*Item, error)

	// ActivePlanningCases returns every Active planning case for the item.
	// More than one result means the single-active invariant is broken.
	ActivePlanningCases(ctx context.Context, itemID int) ([]PlanningCase, error)
	// CreatePlanningCase inserts pc as the Active case for its item.
	CreatePlanningCase(ctx context.Context, pc *PlanningCase) error
	// RetractPlanningCase moves pc from Active to Retracted.
	RetractPlanningCase(ctx context.Context, pc *PlanningCase) error
	// ListPlanningCases returns all cases of an item, newest first, with their site rows.
	ListPlanningCases(ctx context.Context, itemID int) ([]PlanningCase, error)

	// ActiveCaseSites returns every Active site row for (item, site), whatever case it is bound to.
	ActiveCaseSites(ctx context.Context, itemID, siteID int) ([]PlanningCaseSite, error)
	// CaseSitesFor returns the Active site rows bound to (planning case, site).
	CaseSitesFor(ctx context.Context, planningCaseID, siteID int) ([]PlanningCaseSite, error)
	// CreateCaseSite inserts s as the Active row for its (item, site).
	CreateCaseSite(ctx context.Context, s *PlanningCaseSite) error
	// RetractCaseSite moves s from Active to Retracted.
	RetractCaseSite(ctx context.Context, s *PlanningCaseSite) error
	// SetRemoteCaseID records the fulfilled remote case on s.
	SetRemoteCaseID(ctx context.Context, s *PlanningCaseSite, caseID int) error

	// ConfigurationValue returns a named setting and whether it exists.
	ConfigurationValue(ctx context.Context, name string) (string, bool, error)
	// SetConfigurationValue creates or replaces a named setting.
	SetConfigurationValue(ctx context.Context, name, value string) error

	// Transaction runs fn against a store bound to a single database transaction.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// GormStore implements Store on top of GORM.
type GormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM backed store.
func NewStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the planning tables.
func (s *GormStore) Migrate(ctx context.Context) error {
	return database.Migrate(s.db.WithContext(ctx), Models()...)
}

func (s *GormStore) GetItem(ctx context.Context, id int) (*Item, error) {
	var item Item
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load item %d: %w", id, err)
	}
	return &item, nil
}

func (s *GormStore) ActivePlanningCases(ctx context.Context, itemID int) ([]PlanningCase, error) {
	var cases []PlanningCase
	err := s.db.WithContext(ctx).
		Where("item_id = ? AND workflow_state = ?", itemID, StateActive).
		Order("id").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active planning cases for item %d: %w", itemID, err)
	}
	return cases, nil
}

func (s *GormStore) CreatePlanningCase(ctx context.Context, pc *PlanningCase) error {
	itemID := pc.ItemID
	pc.WorkflowState = StateActive
	pc.ActiveItemID = &itemID

	if err := s.db.WithContext(ctx).Omit("Sites").Create(pc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Consistency(fmt.Sprintf("item %d already has an active planning case", pc.ItemID)).
				WithOp("planning.create_case")
		}
		return fmt.Errorf("failed to create planning case: %w", err)
	}
	return nil
}

func (s *GormStore) RetractPlanningCase(ctx context.Context, pc *PlanningCase) error {
	if !pc.WorkflowState.CanTransitionTo(StateRetracted) {
		return apperr.Consistency(fmt.Sprintf("planning case %d is %s, cannot retract", pc.ID, pc.WorkflowState)).
			WithOp("planning.retract_case")
	}

	result := s.db.WithContext(ctx).
		Model(&PlanningCase{}).
		Where("id = ? AND workflow_state = ?", pc.ID, StateActive).
		Updates(map[string]any{
			"workflow_state": StateRetracted,
			"active_item_id": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to retract planning case %d: %w", pc.ID, result.Error)
	}
	if result.RowsAffected != 1 {
		return apperr.Consistency(fmt.Sprintf("planning case %d was not active", pc.ID)).
			WithOp("planning.retract_case")
	}

	pc.WorkflowState = StateRetracted
	pc.ActiveItemID = nil
	return nil
}

func (s *GormStore) ListPlanningCases(ctx context.Context, itemID int) ([]PlanningCase, error) {
	var cases []PlanningCase
	err := s.db.WithContext(ctx).
		Preload("Sites", func(db *gorm.DB) *gorm.DB { return db.Order("site_id, id") }).
		Where("item_id = ?", itemID).
		Order("id DESC").
		Find(&cases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list planning cases for item %d: %w", itemID, err)
	}
	return cases, nil
}

func (s *GormStore) ActiveCaseSites(ctx context.Context, itemID, siteID int) ([]PlanningCaseSite, error) {
	var sites []PlanningCaseSite
	err := s.db.WithContext(ctx).
		Where("item_id = ? AND site_id = ? AND workflow_state = ?", itemID, siteID, StateActive).
		Order("id").
		Find(&sites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load active case sites for item %d site %d: %w", itemID, siteID, err)
	}
	return sites, nil
}

func (s *GormStore) CaseSitesFor(ctx context.Context, planningCaseID, siteID int) ([]PlanningCaseSite, error) {
	var sites []PlanningCaseSite
	err := s.db.WithContext(ctx).
		Where("planning_case_id = ? AND site_id = ? AND workflow_state = ?", planningCaseID, siteID, StateActive).
		Order("id").
		Find(&sites).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load case sites for planning case %d site %d: %w", planningCaseID, siteID, err)
	}
	return sites, nil
}

func (s *GormStore) CreateCaseSite(ctx context.Context, site *PlanningCaseSite) error {
	key := SiteKey(site.ItemID, site.SiteID)
	site.WorkflowState = StateActive
	site.ActiveKey = &key

	if err := s.db.WithContext(ctx).Create(site).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.Consistency(fmt.Sprintf("item %d already has an active case at site %d", site.ItemID, site.SiteID)).
				WithOp("planning.create_site")
		}
		return fmt.Errorf("failed to create case site: %w", err)
	}
	return nil
}

func (s *GormStore) RetractCaseSite(ctx context.Context, site *PlanningCaseSite) error {
	if !site.WorkflowState.CanTransitionTo(StateRetracted) {
		return apperr.Consistency(fmt.Sprintf("case site %d is %s, cannot retract", site.ID, site.WorkflowState)).
			WithOp("planning.retract_site")
	}

	result := s.db.WithContext(ctx).
		Model(&PlanningCaseSite{}).
		Where("id = ? AND workflow_state = ?", site.ID, StateActive).
		Updates(map[string]any{
			"workflow_state": StateRetracted,
			"active_key":     nil,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to retract case site %d: %w", site.ID, result.Error)
	}
	if result.RowsAffected != 1 {
		return apperr.Consistency(fmt.Sprintf("case site %d was not active", site.ID)).
			WithOp("planning.retract_site")
	}

	site.WorkflowState = StateRetracted
	site.ActiveKey = nil
	return nil
}

func (s *GormStore) SetRemoteCaseID(ctx context.Context, site *PlanningCaseSite, caseID int) error {
	err := s.db.WithContext(ctx).
		Model(&PlanningCaseSite{}).
		Where("id = ?", site.ID).
		Update("remote_case_id", caseID).Error
	if err != nil {
		return fmt.Errorf("failed to store remote case %d on case site %d: %w", caseID, site.ID, err)
	}
	site.RemoteCaseID = &caseID
	return nil
}

func (s *GormStore) ConfigurationValue(ctx context.Context, name string) (string, bool, error) {
	var value ConfigurationValue
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&value).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to load configuration value %s: %w", name, err)
	}
	return value.Value, true, nil
}

func (s *GormStore) SetConfigurationValue(ctx context.Context, name, value string) error {
	return s.Transaction(ctx, func(tx Store) error {
		gs := tx.(*GormStore)
		var existing ConfigurationValue
		err := gs.db.WithContext(ctx).Where("name = ?", name).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return gs.db.WithContext(ctx).Create(&ConfigurationValue{Name: name, Value: value}).Error
		}
		if err != nil {
			return fmt.Errorf("failed to load configuration value %s: %w", name, err)
		}
		return gs.db.WithContext(ctx).Model(&existing).Update("value", value).Error
	})
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}
