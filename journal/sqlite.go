package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/meenmo/credlib/utils"
)

// SQLite is a Journal backed by a single SQLite file.
type SQLite struct {
	db *sql.DB
}

var _ Journal = (*SQLite)(nil)

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func (j *SQLite) RecordRun(ctx context.Context, r Run) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(id, name, issuer, valuation_date, priced_at, specification, pv_protection_leg, pv_premium_leg, price)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Name, r.Issuer, utils.FormatDate(r.ValuationDate), r.PricedAt.UTC().Format(time.RFC3339Nano),
		r.Specification, r.PVProtectionLeg, r.PVPremiumLeg, r.Price,
	)
	if err != nil {
		return fmt.Errorf("RecordRun %s: %w", r.ID, err)
	}
	return nil
}

const selectRuns = `SELECT id, name, issuer, valuation_date, priced_at, specification,
	pv_protection_leg, pv_premium_leg, price FROM runs`

func (j *SQLite) GetRun(ctx context.Context, id string) (Run, error) {
	row := j.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	if err != nil {
		return Run{}, fmt.Errorf("GetRun %s: %w", id, err)
	}
	return r, nil
}

func (j *SQLite) ListRuns(ctx context.Context, issuer string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := j.db.QueryContext(ctx,
		selectRuns+` WHERE (? = '' OR issuer = ?) ORDER BY id DESC LIMIT ?`,
		issuer, issuer, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("ListRuns: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (Run, error) {
	var (
		r                 Run
		valDate, pricedAt string
	)
	err := s.Scan(&r.ID, &r.Name, &r.Issuer, &valDate, &pricedAt, &r.Specification,
		&r.PVProtectionLeg, &r.PVPremiumLeg, &r.Price)
	if err != nil {
		return Run{}, err
	}
	if r.ValuationDate, err = utils.ParseDate(valDate); err != nil {
		return Run{}, err
	}
	if r.PricedAt, err = time.Parse(time.RFC3339Nano, pricedAt); err != nil {
		return Run{}, err
	}
	return r, nil
}
