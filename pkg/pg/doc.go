// Package pg bootstraps PostgreSQL access with pgx/v5.
//
// Connect opens a *pgxpool.Pool from Config, retrying with exponential
// backoff (sethvargo/go-retry) until the server answers a ping. Migrate runs
// goose migrations from any fs.FS, usually an embed.FS owned by the package
// that defines the schema. Healthcheck returns a probe suitable for /healthz.
//
//	var cfg pg.Config
//	if err := config.Load(&cfg); err != nil {
//	    return err
//	}
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, pgstore.MigrationsDir, cfg, log); err != nil {
//	    return err
//	}
//
// Configuration comes from PG_* environment variables; see Config.
package pg
