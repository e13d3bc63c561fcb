// Package reconcile brings the per-site case assignments of an inventory item into
// agreement with the item's current state and the configured target sites.
//
// An ItemChanged event is handled by the Orchestrator:
//
//  1. load the item (a missing item is a no-op),
//  2. load the configured site ids and read the template once,
//  3. resolve the folder by name (FolderResolver, get-or-create),
//  4. retract the active planning case and create its successor
//     (PlanningCaseReconciler), unless the item is unchanged,
//  5. per site, retract stale site rows and their remote cases and make sure the
//     current row has one remote case (SiteCaseSynchronizer).
//
// Runs for one item are serialized through a Locker: KeyedMutex in process, or the
// Redis lock in core/queue across replicas. The database additionally rejects a
// second active planning case per item and a second active site row per
// (item, site).
//
// Nothing is rolled back on failure. Every step is convergent, so the next run for
// the item completes what an aborted run left behind.
//
//	orch := reconcile.NewOrchestrator(store, client, client, sites, cfg.Reconcile,
//		reconcile.WithLogger(log))
//	report, err := orch.Handle(ctx, reconcile.ItemChanged{ItemID: 1, TemplateID: 5, FolderName: "Cranes"})
package reconcile
