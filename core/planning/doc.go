// Package planning holds the persisted planning model and its GORM store.
//
// # Model
//
//   - Item: the inventory record being planned (read-only here).
//   - PlanningCase: one reconciliation epoch per item.
//   - PlanningCaseSite: the binding of a planning case to one target site and,
//     once fulfilled, to one remote case.
//   - ConfigurationValue: plugin settings such as the target site ids.
//
// # Invariants
//
// Rows move through a two-state workflow, Active -> Retracted, and never back.
// At most one Active PlanningCase exists per item and at most one Active
// PlanningCaseSite per (item, site). Both are enforced by the database through
// nullable unique columns (active_item_id, active_key) that are cleared on
// retraction, and by conditional updates that only retract Active rows.
package planning
