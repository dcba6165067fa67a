// Package pgstore is a PostgreSQL implementation of notifications.Storage.
//
// The schema ships as embedded goose migrations; apply them with pg.Migrate
// before constructing the store:
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg, log); err != nil {
//	    return err
//	}
//	store := pgstore.New(pool)
//	manager := notifications.NewManager(store, deliverer)
package pgstore
