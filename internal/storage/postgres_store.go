package storage

import (
	"context"
	"database/sql"

	_ "github.com/lib/pq"

	"github.com/NikamRenuka/cabadmin/internal/models"
)

// PostgresStore reads the payment listing from Postgres when PG_DSN is set.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	// quick ping
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &PostgresStore{db: db}, nil
}

func (p *PostgresStore) Payments(ctx context.Context) ([]models.Payment, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT id, customer, amount, paid_on FROM payments ORDER BY paid_on DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []models.Payment
	for rows.Next() {
		var pay models.Payment
		if err := rows.Scan(&pay.ID, &pay.Customer, &pay.Amount, &pay.Date); err != nil {
			return nil, err
		}
		out = append(out, pay)
	}
	return out, rows.Err()
}

func (p *PostgresStore) Close() error { return p.db.Close() }
