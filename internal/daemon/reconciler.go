package daemon

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/taskflow/internal/model"
	"git.home.luguber.info/inful/taskflow/internal/persist"
	"git.home.luguber.info/inful/taskflow/internal/store"
)

// Reconciler converges the durable record set toward the in-memory list.
// Individual persistence effects can fail (broker of truth is the store, the
// gateway is a mirror), so a periodic sweep repairs any drift: missing rows
// are created, stale rows updated, and rows for items no longer in the list
// deleted.
type Reconciler struct {
	store   *store.Store
	gateway persist.Gateway
}

// ReconcileStats summarizes one reconciliation sweep.
type ReconcileStats struct {
	Created int
	Updated int
	Deleted int
	Skipped int
}

func NewReconciler(st *store.Store, gw persist.Gateway) *Reconciler {
	return &Reconciler{store: st, gateway: gw}
}

// Reconcile performs one sweep. Items with empty descriptions cannot be
// created (the gateway rejects them) and are counted as skipped; they get a
// row once their description is filled in.
func (r *Reconciler) Reconcile(ctx context.Context) (ReconcileStats, error) {
	var stats ReconcileStats

	snap := r.store.State()
	rows, err := r.gateway.FindAll(ctx)
	if err != nil {
		return stats, err
	}

	persisted := make(map[string]model.Item, len(rows))
	for _, row := range rows {
		persisted[row.ID] = row
	}

	wanted := make(map[string]bool, len(snap.Items))
	for _, it := range snap.Items {
		wanted[it.ID] = true

		row, exists := persisted[it.ID]
		switch {
		case !exists:
			if it.Description == "" {
				stats.Skipped++
				continue
			}
			if err := r.gateway.Create(ctx, it); err != nil {
				slog.Warn("Reconcile create failed", "id", it.ID, "error", err)
				stats.Skipped++
				continue
			}
			stats.Created++
		case row.Description != it.Description || row.Complete != it.Complete:
			if err := r.gateway.Update(ctx, it.ID, it); err != nil {
				slog.Warn("Reconcile update failed", "id", it.ID, "error", err)
				stats.Skipped++
				continue
			}
			stats.Updated++
		}
	}

	for id := range persisted {
		if wanted[id] {
			continue
		}
		if err := r.gateway.Delete(ctx, id); err != nil {
			slog.Warn("Reconcile delete failed", "id", id, "error", err)
			stats.Skipped++
			continue
		}
		stats.Deleted++
	}

	return stats, nil
}
