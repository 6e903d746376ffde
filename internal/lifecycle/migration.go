package lifecycle

import (
	"context"
	"log/slog"

	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/config"
	"github.com/ehlowr0ld/scratch-notebook-mcp/internal/store"
)

// RunFirstEnableMigration implements the "first-enable" tenant
// migration: the first time auth is turned on against a dataset that was
// previously written under the implicit tenant, every pad owned by the
// implicit tenant is moved, once, to the first configured principal. It is
// idempotent — PadExistsForTenant guards against re-running it on every
// startup once the implicit tenant has nothing left to migrate.
func RunFirstEnableMigration(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger) error {
	if !cfg.Auth.EnableAuth {
		return nil
	}
	target, ok := cfg.FirstConfiguredTenant()
	if !ok {
		return nil
	}
	exists, err := st.PadExistsForTenant(ctx, config.ImplicitTenant)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	rec, err := st.MigrateImplicitDefault(ctx, config.ImplicitTenant, target)
	if err != nil {
		return err
	}
	logger.Info("migrated implicit-tenant pads on first auth enable",
		"from", rec.From, "to", rec.To, "pad_count", rec.PadCount, "migrated_at", rec.MigratedAt)
	return nil
}
