package store

import (
	"context"
	"database/sql"
	"fmt"
)

// AccountRepo tracks the per-account credit ledger shared by all of an
// account's bots.
type AccountRepo struct{}

// Create inserts an account with an opening balance.
func (r *AccountRepo) Create(ctx context.Context, db *sql.DB, id string, credits int) error {
	const q = `INSERT INTO accounts (id, credits) VALUES (?, ?)`
	if _, err := db.ExecContext(ctx, q, id, credits); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

// Credits returns the current balance.
func (r *AccountRepo) Credits(ctx context.Context, db *sql.DB, id string) (int, error) {
	const q = `SELECT credits FROM accounts WHERE id = ?`
	var n int
	err := db.QueryRowContext(ctx, q, id).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get credits: %w", err)
	}
	return n, nil
}

// DebitTx atomically subtracts amount from the balance. The conditional
// update is the check: two concurrent debits cannot both pass an insufficient
// balance.
func (r *AccountRepo) DebitTx(ctx context.Context, tx *sql.Tx, id string, amount int) error {
	const q = `UPDATE accounts SET credits = credits - ? WHERE id = ? AND credits >= ?`
	res, err := tx.ExecContext(ctx, q, amount, id, amount)
	if err != nil {
		return fmt.Errorf("debit credits: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrInsufficientCredits
	}
	return nil
}
