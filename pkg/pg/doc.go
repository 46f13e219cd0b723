// Package pg opens the PostgreSQL pool used by the notification store.
//
// Connect builds a pgxpool.Pool with retry, Migrate applies goose migrations
// from any fs.FS (the store embeds its own), and OpenDB exposes the pool as a
// *sqlx.DB for query code written against database/sql.
//
//	pool, err := pg.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer pool.Close()
//
//	if err := pg.Migrate(ctx, pool, cfg, notifications.Migrations, log); err != nil {
//		return err
//	}
//	db := pg.OpenDB(pool)
package pg
