package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agenthands/hive/internal/bot"
)

// AllianceRepo persists the denormalized alliance edges. Every alliance is
// two rows, one per side, and both sides are always written in the same
// transaction.
type AllianceRepo struct{}

// CreateMutualTx inserts both sides of an alliance with identical timestamps.
func (r *AllianceRepo) CreateMutualTx(ctx context.Context, tx *sql.Tx, botA, botB string, status bot.AllianceStatus, at time.Time) error {
	const q = `INSERT INTO alliances (bot_id, partner_bot_id, status, created_at, last_interaction, shared_xp)
VALUES (?, ?, ?, ?, ?, 0)`
	ts := at.Unix()
	if _, err := tx.ExecContext(ctx, q, botA, botB, string(status), ts, ts); err != nil {
		return fmt.Errorf("create alliance %s->%s: %w", botA, botB, err)
	}
	if _, err := tx.ExecContext(ctx, q, botB, botA, string(status), ts, ts); err != nil {
		return fmt.Errorf("create alliance %s->%s: %w", botB, botA, err)
	}
	return nil
}

// ListForBot returns a bot's alliance records ordered by creation.
func (r *AllianceRepo) ListForBot(ctx context.Context, db *sql.DB, botID string) ([]bot.Alliance, error) {
	const q = `SELECT partner_bot_id, status, created_at, last_interaction, shared_xp
FROM alliances WHERE bot_id = ? ORDER BY created_at, id`

	rows, err := db.QueryContext(ctx, q, botID)
	if err != nil {
		return nil, fmt.Errorf("list alliances: %w", err)
	}
	defer rows.Close()

	var out []bot.Alliance
	for rows.Next() {
		var a bot.Alliance
		var status string
		var created, interacted int64
		if err := rows.Scan(&a.PartnerBotID, &status, &created, &interacted, &a.SharedXP); err != nil {
			return nil, fmt.Errorf("scan alliance: %w", err)
		}
		a.Status = bot.AllianceStatus(status)
		a.CreatedAt = timeOrZero(created)
		a.LastInteraction = timeOrZero(interacted)
		out = append(out, a)
	}
	return out, rows.Err()
}

// HasActive reports whether the bot holds any active alliance.
func (r *AllianceRepo) HasActive(ctx context.Context, db *sql.DB, botID string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM alliances WHERE bot_id = ? AND status = 'active')`
	var exists int
	if err := db.QueryRowContext(ctx, q, botID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check active alliance: %w", err)
	}
	return exists != 0, nil
}

// Exists reports whether any alliance record links botA to botB.
func (r *AllianceRepo) Exists(ctx context.Context, db *sql.DB, botA, botB string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM alliances WHERE bot_id = ? AND partner_bot_id = ?)`
	var exists int
	if err := db.QueryRowContext(ctx, q, botA, botB).Scan(&exists); err != nil {
		return false, fmt.Errorf("check alliance: %w", err)
	}
	return exists != 0, nil
}
