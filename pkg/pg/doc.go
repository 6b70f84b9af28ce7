// Package pg wires PostgreSQL into the service using pgx/v5.
//
// Connect opens a pgxpool.Pool with bounded retries, Migrate applies goose
// migrations from an fs.FS (usually an embed.FS owned by the store package),
// WithTx runs a function inside a transaction, and the Is* helpers classify
// driver errors without leaking pgconn into callers.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, pgstore.Migrations, "migrations", cfg, log); err != nil {
//	    return err
//	}
package pg
