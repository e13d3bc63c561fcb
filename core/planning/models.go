package planning

import (
	"fmt"
	"time"
)

// WorkflowState is the lifecycle flag of planning rows.
type WorkflowState string

const (
	// StateActive marks the current row for its key.
	StateActive WorkflowState = "active"
	// StateRetracted marks a superseded row. It is terminal.
	StateRetracted WorkflowState = "retracted"
)

// CanTransitionTo reports whether s may move to next. Active -> Retracted is the only legal transition.
func (s WorkflowState) CanTransitionTo(next WorkflowState) bool {
	return s == StateActive && next == StateRetracted
}

// StatusCreated is the status code stamped on newly created planning rows.
const StatusCreated = 66

// SiteIDsSetting is the configuration value holding the comma-separated target site ids.
const SiteIDsSetting = "ItemsPlanningBaseSettings:SiteIds"

// Item is the inventory record being planned. It is owned by the inventory store
// and only read by the reconciliation engine.
type Item struct {
	ID            int           `gorm:"column:id;primaryKey" json:"id"`
	ItemNumber    string        `gorm:"column:item_number;type:varchar(255)" json:"item_number"`
	Name          string        `gorm:"column:name;type:varchar(255)" json:"name"`
	BuildYear     string        `gorm:"column:build_year;type:varchar(255)" json:"build_year"`
	Type          string        `gorm:"column:type;type:varchar(255)" json:"type"`
	WorkflowState WorkflowState `gorm:"column:workflow_state;type:varchar(32);default:active" json:"workflow_state"`
	CreatedAt     time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt     time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for Item.
func (Item) TableName() string {
	return "items"
}

// PlanningCase is one reconciliation epoch for an item.
//
// ActiveItemID mirrors ItemID while the case is Active and is NULL once retracted.
// Its unique index lets the database reject a second Active case for the same item.
type PlanningCase struct {
	ID               int                `gorm:"column:id;primaryKey" json:"id"`
	ItemID           int                `gorm:"column:item_id;index;not null" json:"item_id"`
	WorkflowState    WorkflowState      `gorm:"column:workflow_state;type:varchar(32);not null" json:"workflow_state"`
	RemoteTemplateID int                `gorm:"column:remote_template_id" json:"remote_template_id"`
	Status           int                `gorm:"column:status" json:"status"`
	Fingerprint      string             `gorm:"column:fingerprint;type:varchar(64)" json:"fingerprint"`
	ActiveItemID     *int               `gorm:"column:active_item_id;uniqueIndex" json:"-"`
	CreatedAt        time.Time          `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time          `gorm:"column:updated_at" json:"updated_at"`
	Sites            []PlanningCaseSite `gorm:"foreignKey:PlanningCaseID" json:"sites,omitempty"`
}

// TableName overrides the table name for PlanningCase.
func (PlanningCase) TableName() string {
	return "planning_cases"
}

// IsActive reports whether the case is the current epoch.
func (p PlanningCase) IsActive() bool {
	return p.WorkflowState == StateActive
}

// PlanningCaseSite binds a planning case to one target site and, once fulfilled,
// to one remote case.
//
// ActiveKey is "<item_id>:<site_id>" while Active and NULL once retracted, giving at most
// one Active row per (item, site) at the database level.
type PlanningCaseSite struct {
	ID               int           `gorm:"column:id;primaryKey" json:"id"`
	PlanningCaseID   int           `gorm:"column:planning_case_id;index;not null" json:"planning_case_id"`
	ItemID           int           `gorm:"column:item_id;index:idx_case_sites_item_site;not null" json:"item_id"`
	SiteID           int           `gorm:"column:site_id;index:idx_case_sites_item_site;not null" json:"site_id"`
	RemoteTemplateID int           `gorm:"column:remote_template_id" json:"remote_template_id"`
	Status           int           `gorm:"column:status" json:"status"`
	RemoteCaseID     *int          `gorm:"column:remote_case_id" json:"remote_case_id"`
	WorkflowState    WorkflowState `gorm:"column:workflow_state;type:varchar(32);not null" json:"workflow_state"`
	ActiveKey        *string       `gorm:"column:active_key;type:varchar(64);uniqueIndex" json:"-"`
	CreatedAt        time.Time     `gorm:"column:created_at" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"column:updated_at" json:"updated_at"`
}

// TableName overrides the table name for PlanningCaseSite.
func (PlanningCaseSite) TableName() string {
	return "planning_case_sites"
}

// IsActive reports whether the row is the current binding for its (item, site).
func (s PlanningCaseSite) IsActive() bool {
	return s.WorkflowState == StateActive
}

// IsFulfilled reports whether a remote case has been recorded for the row.
func (s PlanningCaseSite) IsFulfilled() bool {
	return s.RemoteCaseID != nil && *s.RemoteCaseID >= 1
}

// SiteKey builds the ActiveKey value for an (item, site) pair.
func SiteKey(itemID, siteID int) string {
	return fmt.Sprintf("%d:%d", itemID, siteID)
}

// ConfigurationValue is a named plugin setting, e.g. the configured site ids.
type ConfigurationValue struct {
	ID        int       `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name;type:varchar(255);uniqueIndex;not null"`
	Value     string    `gorm:"column:value;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

// TableName overrides the table name for ConfigurationValue.
func (ConfigurationValue) TableName() string {
	return "plugin_configuration_values"
}

// Models lists every table owned by this package, in migration order.
func Models() []any {
	return []any{&Item{}, &PlanningCase{}, &PlanningCaseSite{}, &ConfigurationValue{}}
}
