// File: revocation.sql.imp.go

package vouch

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/zeromicro/go-zero/core/logx"
)

// SQLRevocationStore persists revocations in Postgres via sqlx, providing
// an authoritative, durable local backend as an alternative to
// MemoryRevocationStore.
type SQLRevocationStore struct {
	db *sqlx.DB
}

// revocationRow mirrors the vouch_revocations table.
type revocationRow struct {
	Identifier    string         `db:"identifier"`
	RevokedAt     int64          `db:"revoked_at"`
	Reason        string         `db:"reason"`
	RevokedBy     sql.NullString `db:"revoked_by"`
	EffectiveFrom sql.NullInt64  `db:"effective_from"`
}

// NewSQLRevocationStore wraps an already-connected *sqlx.DB. The caller is
// expected to have run the schema migration creating vouch_revocations
// (identifier text primary key, revoked_at bigint, reason text,
// revoked_by text, effective_from bigint).
func NewSQLRevocationStore(db *sqlx.DB) *SQLRevocationStore {
	return &SQLRevocationStore{db: db}
}

func (s *SQLRevocationStore) Revoke(ctx context.Context, record RevocationRecord) error {
	const q = `
		INSERT INTO vouch_revocations (identifier, revoked_at, reason, revoked_by, effective_from)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (identifier) DO UPDATE SET
			revoked_at = EXCLUDED.revoked_at,
			reason = EXCLUDED.reason,
			revoked_by = EXCLUDED.revoked_by,
			effective_from = EXCLUDED.effective_from`

	var revokedBy, effectiveFrom any
	if record.RevokedBy != "" {
		revokedBy = string(record.RevokedBy)
	}
	if record.EffectiveFrom != 0 {
		effectiveFrom = record.EffectiveFrom
	}

	if _, err := s.db.ExecContext(ctx, q, string(record.Identifier), record.RevokedAt, record.Reason, revokedBy, effectiveFrom); err != nil {
		logx.Errorf("vouch: sql revoke error for %s: %v", record.Identifier, err)
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	logx.Infof("vouch: revoked %s (sql): %s", record.Identifier, record.Reason)
	return nil
}

func (s *SQLRevocationStore) Get(ctx context.Context, identifier Identifier) (*RevocationRecord, error) {
	var row revocationRow
	err := s.db.GetContext(ctx, &row, `SELECT identifier, revoked_at, reason, revoked_by, effective_from FROM vouch_revocations WHERE identifier = $1`, string(identifier))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		logx.Errorf("vouch: sql get revocation error for %s: %v", identifier, err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	record := rowToRecord(row)
	return &record, nil
}

func (s *SQLRevocationStore) IsRevoked(ctx context.Context, identifier Identifier) (bool, error) {
	record, err := s.Get(ctx, identifier)
	if err != nil {
		return false, err
	}
	if record == nil {
		return false, nil
	}
	return isEffective(*record, unixNow()), nil
}

func (s *SQLRevocationStore) List(ctx context.Context) ([]RevocationRecord, error) {
	var rows []revocationRow
	if err := s.db.SelectContext(ctx, &rows, `SELECT identifier, revoked_at, reason, revoked_by, effective_from FROM vouch_revocations`); err != nil {
		logx.Errorf("vouch: sql list revocations error: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	out := make([]RevocationRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, rowToRecord(row))
	}
	return out, nil
}

func (s *SQLRevocationStore) Reinstate(ctx context.Context, identifier Identifier) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM vouch_revocations WHERE identifier = $1`, string(identifier))
	if err != nil {
		logx.Errorf("vouch: sql reinstate error for %s: %v", identifier, err)
		return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func rowToRecord(row revocationRow) RevocationRecord {
	record := RevocationRecord{
		Identifier: Identifier(row.Identifier),
		RevokedAt:  row.RevokedAt,
		Reason:     row.Reason,
	}
	if row.RevokedBy.Valid {
		record.RevokedBy = Identifier(row.RevokedBy.String)
	}
	if row.EffectiveFrom.Valid {
		record.EffectiveFrom = row.EffectiveFrom.Int64
	}
	return record
}
