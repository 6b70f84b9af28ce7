// Package pgstore implements twofactor.Storage on PostgreSQL.
//
// Each write runs in a serializable transaction, so enabling two-factor,
// replacing recovery codes and disabling are all-or-nothing. Serialization
// failures surface as twofactor.ErrPersistenceConflict.
package pgstore

import (
	"context"
	"embed"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/twofactor/pkg/pg"
	"github.com/dmitrymomot/twofactor/svc/twofactor"
)

// Migrations holds the goose migrations for the two-factor tables.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// Migrate applies pending two-factor migrations.
func Migrate(ctx context.Context, pool *pgxpool.Pool, cfg pg.Config, log *slog.Logger) error {
	return pg.Migrate(ctx, pool, Migrations, "migrations", cfg, log)
}

// DB is satisfied by *pgxpool.Pool and *pgx.Conn.
type DB interface {
	pg.TxBeginner
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store is a twofactor.Storage backed by PostgreSQL.
type Store struct {
	db  DB
	now func() time.Time
}

var _ twofactor.Storage = (*Store)(nil)

func New(db DB) *Store {
	return &Store{db: db, now: time.Now}
}

const getAccountQuery = `
SELECT a.secret, a.enabled, a.version, a.enabled_at,
       (SELECT count(*) FROM two_factor_recovery_codes c
         WHERE c.account_id = a.account_id AND c.used_at IS NULL)
  FROM two_factor_accounts a
 WHERE a.account_id = $1`

func (s *Store) GetAccount(ctx context.Context, accountID string) (*twofactor.Account, error) {
	acct := &twofactor.Account{AccountID: accountID}
	var enabledAt *time.Time
	var remaining int64
	err := s.db.QueryRow(ctx, getAccountQuery, accountID).
		Scan(&acct.SealedSecret, &acct.Enabled, &acct.Version, &enabledAt, &remaining)
	if pg.IsNotFoundError(err) {
		return nil, twofactor.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	if enabledAt != nil {
		acct.EnabledAt = *enabledAt
	}
	acct.RecoveryCodesRemaining = int(remaining)
	return acct, nil
}

func (s *Store) Activate(ctx context.Context, a twofactor.Activation) error {
	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		var enabled bool
		var version int64
		err := tx.QueryRow(ctx,
			`SELECT enabled, version FROM two_factor_accounts WHERE account_id = $1 FOR UPDATE`,
			a.AccountID,
		).Scan(&enabled, &version)

		switch {
		case pg.IsNotFoundError(err):
			if a.ExpectedVersion != 0 {
				return twofactor.ErrPersistenceConflict
			}
			_, err = tx.Exec(ctx, `
				INSERT INTO two_factor_accounts (account_id, secret, enabled, version, enabled_at, updated_at)
				VALUES ($1, $2, TRUE, 1, $3, $3)`,
				a.AccountID, a.SealedSecret, a.At,
			)
			if err != nil {
				return err
			}
		case err != nil:
			return err
		case enabled || version != a.ExpectedVersion:
			return twofactor.ErrPersistenceConflict
		default:
			_, err = tx.Exec(ctx, `
				UPDATE two_factor_accounts
				   SET secret = $2, enabled = TRUE, version = version + 1, enabled_at = $3, updated_at = $3
				 WHERE account_id = $1`,
				a.AccountID, a.SealedSecret, a.At,
			)
			if err != nil {
				return err
			}
		}

		return replaceCodes(ctx, tx, a.AccountID, a.RecoveryCodeHashes, a.At)
	})
	return conflict(err)
}

func (s *Store) ReplaceRecoveryCodes(ctx context.Context, accountID string, hashes []string) error {
	now := s.now()
	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE two_factor_accounts SET version = version + 1, updated_at = $2
			 WHERE account_id = $1 AND enabled`,
			accountID, now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return twofactor.ErrNotEnabled
		}
		return replaceCodes(ctx, tx, accountID, hashes, now)
	})
	return conflict(err)
}

func (s *Store) ConsumeRecoveryCode(ctx context.Context, accountID, hash string) (bool, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE two_factor_recovery_codes c
		   SET used_at = $3
		  FROM two_factor_accounts a
		 WHERE c.account_id = $1 AND c.code_hash = $2 AND c.used_at IS NULL
		   AND a.account_id = c.account_id AND a.enabled`,
		accountID, hash, s.now(),
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) Disable(ctx context.Context, accountID string) error {
	now := s.now()
	err := pg.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE two_factor_accounts
			   SET enabled = FALSE, secret = NULL, enabled_at = NULL, version = version + 1, updated_at = $2
			 WHERE account_id = $1 AND enabled`,
			accountID, now,
		)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return twofactor.ErrNotEnabled
		}
		_, err = tx.Exec(ctx, `DELETE FROM two_factor_recovery_codes WHERE account_id = $1`, accountID)
		return err
	})
	return conflict(err)
}

func replaceCodes(ctx context.Context, tx pgx.Tx, accountID string, hashes []string, at time.Time) error {
	if _, err := tx.Exec(ctx, `DELETE FROM two_factor_recovery_codes WHERE account_id = $1`, accountID); err != nil {
		return err
	}
	rows := make([][]any, len(hashes))
	for i, h := range hashes {
		rows[i] = []any{accountID, h, at}
	}
	_, err := tx.CopyFrom(ctx,
		pgx.Identifier{"two_factor_recovery_codes"},
		[]string{"account_id", "code_hash", "created_at"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// conflict maps lost races to ErrPersistenceConflict.
func conflict(err error) error {
	if err == nil {
		return nil
	}
	if pg.IsSerializationFailure(err) || pg.IsDuplicateKeyError(err) {
		return errors.Join(twofactor.ErrPersistenceConflict, err)
	}
	return err
}
