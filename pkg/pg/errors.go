package pg

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrFailedToOpenDBConnection = errors.New("pg: notifications database not reachable after retries")
	ErrFailedToParseDBConfig    = errors.New("pg: invalid DATABASE_URL")
	ErrNotificationStoreDown    = errors.New("pg: notifications database ping failed")
	ErrFailedToApplyMigrations  = errors.New("pg: notifications schema migration failed")
	ErrMigrationsNotProvided    = errors.New("pg: no embedded migrations given")
)

// IsDuplicateKeyError reports a unique constraint violation (SQLSTATE 23505).
func IsDuplicateKeyError(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
