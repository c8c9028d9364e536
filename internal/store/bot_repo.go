package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agenthands/hive/internal/bot"
)

// BotRepo handles persistence for bot records. Alliance rows live in their own
// table and are loaded alongside the bot.
type BotRepo struct{}

const botColumns = `id, account_id, name, is_deleted, personality_json, interests_json, district,
level, xp, next_level_xp, energy, happiness, drift, influence,
total_posts, total_likes, total_comments, last_active_at, last_post_at,
stage, evolution_history_json,
autonomy_active, posting_interval_minutes, max_posts_per_day, allow_alliances,
last_autonomous_action, autonomous_actions_count, energy_decay_rate, xp_decay_rate,
created_at, updated_at`

// Create inserts a new bot record.
func (r *BotRepo) Create(ctx context.Context, db *sql.DB, b *bot.Bot) error {
	personality, err := json.Marshal(b.Personality)
	if err != nil {
		return fmt.Errorf("marshal personality: %w", err)
	}
	interests, err := json.Marshal(sliceOrEmpty(b.Interests))
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	history, err := json.Marshal(historyOrEmpty(b.EvolutionHistory))
	if err != nil {
		return fmt.Errorf("marshal evolution history: %w", err)
	}

	const q = `INSERT INTO bots (` + botColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = db.ExecContext(ctx, q,
		b.ID, b.AccountID, b.Name, boolToInt(b.IsDeleted), string(personality), string(interests), string(b.District),
		b.Level, b.XP, b.NextLevelXP, b.Energy, b.Happiness, b.Drift, b.Influence,
		b.TotalPosts, b.TotalLikes, b.TotalComments, unixOrZero(b.LastActiveAt), unixOrZero(b.LastPostAt),
		string(b.Stage), string(history),
		boolToInt(b.Autonomy.IsActive), b.Autonomy.PostingIntervalMinutes, b.Autonomy.MaxPostsPerDay, boolToInt(b.Autonomy.AllowAlliances),
		unixOrZero(b.Autonomy.LastAutonomousAction), b.Autonomy.AutonomousActionsCount, b.Autonomy.EnergyDecayRate, b.Autonomy.XPDecayRate,
		unixOrZero(b.CreatedAt), unixOrZero(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	return nil
}

// SaveTx writes all mutable bot fields within a transaction.
func (r *BotRepo) SaveTx(ctx context.Context, tx *sql.Tx, b *bot.Bot) error {
	personality, err := json.Marshal(b.Personality)
	if err != nil {
		return fmt.Errorf("marshal personality: %w", err)
	}
	interests, err := json.Marshal(sliceOrEmpty(b.Interests))
	if err != nil {
		return fmt.Errorf("marshal interests: %w", err)
	}
	history, err := json.Marshal(historyOrEmpty(b.EvolutionHistory))
	if err != nil {
		return fmt.Errorf("marshal evolution history: %w", err)
	}

	const q = `UPDATE bots SET
		name = ?, is_deleted = ?, personality_json = ?, interests_json = ?, district = ?,
		level = ?, xp = ?, next_level_xp = ?, energy = ?, happiness = ?, drift = ?, influence = ?,
		total_posts = ?, total_likes = ?, total_comments = ?, last_active_at = ?, last_post_at = ?,
		stage = ?, evolution_history_json = ?,
		autonomy_active = ?, posting_interval_minutes = ?, max_posts_per_day = ?, allow_alliances = ?,
		last_autonomous_action = ?, autonomous_actions_count = ?, energy_decay_rate = ?, xp_decay_rate = ?,
		updated_at = ?
	WHERE id = ?`

	res, err := tx.ExecContext(ctx, q,
		b.Name, boolToInt(b.IsDeleted), string(personality), string(interests), string(b.District),
		b.Level, b.XP, b.NextLevelXP, b.Energy, b.Happiness, b.Drift, b.Influence,
		b.TotalPosts, b.TotalLikes, b.TotalComments, unixOrZero(b.LastActiveAt), unixOrZero(b.LastPostAt),
		string(b.Stage), string(history),
		boolToInt(b.Autonomy.IsActive), b.Autonomy.PostingIntervalMinutes, b.Autonomy.MaxPostsPerDay, boolToInt(b.Autonomy.AllowAlliances),
		unixOrZero(b.Autonomy.LastAutonomousAction), b.Autonomy.AutonomousActionsCount, b.Autonomy.EnergyDecayRate, b.Autonomy.XPDecayRate,
		unixOrZero(b.UpdatedAt),
		b.ID,
	)
	if err != nil {
		return fmt.Errorf("save bot: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if n == 0 {
		return ErrBotNotFound
	}
	return nil
}

// GetByID retrieves a bot with its alliance records.
func (r *BotRepo) GetByID(ctx context.Context, db *sql.DB, id string) (*bot.Bot, error) {
	const q = `SELECT ` + botColumns + ` FROM bots WHERE id = ?`
	b, err := scanBot(db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	alliances, err := (&AllianceRepo{}).ListForBot(ctx, db, id)
	if err != nil {
		return nil, err
	}
	b.Alliances = alliances
	return b, nil
}

// EligibleFilter selects bots for a processing cycle.
type EligibleFilter struct {
	MinEnergy      int
	RequireAutonomy bool
}

// ListEligible returns active, non-deleted bots matching the filter. Alliance
// records are not loaded; cycle code fetches the full bot before mutating it.
func (r *BotRepo) ListEligible(ctx context.Context, db *sql.DB, f EligibleFilter) ([]*bot.Bot, error) {
	q := `SELECT ` + botColumns + ` FROM bots WHERE is_deleted = 0 AND energy >= ?`
	args := []interface{}{f.MinEnergy}
	if f.RequireAutonomy {
		q += ` AND autonomy_active = 1`
	}
	q += ` ORDER BY id`
	return queryBots(ctx, db, q, args...)
}

// ListRestorable returns non-deleted bots with energy below 100.
func (r *BotRepo) ListRestorable(ctx context.Context, db *sql.DB) ([]*bot.Bot, error) {
	const q = `SELECT ` + botColumns + ` FROM bots WHERE is_deleted = 0 AND energy < 100 ORDER BY id`
	return queryBots(ctx, db, q)
}

// ListDecayable returns non-deleted bots holding XP.
func (r *BotRepo) ListDecayable(ctx context.Context, db *sql.DB) ([]*bot.Bot, error) {
	const q = `SELECT ` + botColumns + ` FROM bots WHERE is_deleted = 0 AND xp > 0 ORDER BY id`
	return queryBots(ctx, db, q)
}

// ListAllianceSeekers returns bots that allow alliances and have no currently
// active alliance record.
func (r *BotRepo) ListAllianceSeekers(ctx context.Context, db *sql.DB) ([]*bot.Bot, error) {
	const q = `SELECT ` + botColumns + ` FROM bots b
WHERE b.is_deleted = 0 AND b.allow_alliances = 1
AND NOT EXISTS (SELECT 1 FROM alliances a WHERE a.bot_id = b.id AND a.status = 'active')
ORDER BY b.id`
	return queryBots(ctx, db, q)
}

// ListAllianceCandidates returns up to limit alliance-seeking bots in the
// given district, excluding the given bot.
func (r *BotRepo) ListAllianceCandidates(ctx context.Context, db *sql.DB, district bot.District, exclude string, limit int) ([]*bot.Bot, error) {
	const q = `SELECT ` + botColumns + ` FROM bots b
WHERE b.is_deleted = 0 AND b.allow_alliances = 1 AND b.district = ? AND b.id != ?
AND NOT EXISTS (SELECT 1 FROM alliances a WHERE a.bot_id = b.id AND a.status = 'active')
ORDER BY b.id LIMIT ?`
	return queryBots(ctx, db, q, string(district), exclude, limit)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBot(row rowScanner) (*bot.Bot, error) {
	var b bot.Bot
	var personality, interests, history, district, stage string
	var isDeleted, autonomyActive, allowAlliances int
	var lastActive, lastPost, lastAction, createdAt, updatedAt int64

	err := row.Scan(
		&b.ID, &b.AccountID, &b.Name, &isDeleted, &personality, &interests, &district,
		&b.Level, &b.XP, &b.NextLevelXP, &b.Energy, &b.Happiness, &b.Drift, &b.Influence,
		&b.TotalPosts, &b.TotalLikes, &b.TotalComments, &lastActive, &lastPost,
		&stage, &history,
		&autonomyActive, &b.Autonomy.PostingIntervalMinutes, &b.Autonomy.MaxPostsPerDay, &allowAlliances,
		&lastAction, &b.Autonomy.AutonomousActionsCount, &b.Autonomy.EnergyDecayRate, &b.Autonomy.XPDecayRate,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrBotNotFound
		}
		return nil, fmt.Errorf("scan bot: %w", err)
	}

	if err := json.Unmarshal([]byte(personality), &b.Personality); err != nil {
		return nil, fmt.Errorf("unmarshal personality: %w", err)
	}
	if err := json.Unmarshal([]byte(interests), &b.Interests); err != nil {
		return nil, fmt.Errorf("unmarshal interests: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &b.EvolutionHistory); err != nil {
		return nil, fmt.Errorf("unmarshal evolution history: %w", err)
	}

	b.IsDeleted = isDeleted != 0
	b.District = bot.District(district)
	b.Stage = bot.Stage(stage)
	b.Autonomy.IsActive = autonomyActive != 0
	b.Autonomy.AllowAlliances = allowAlliances != 0
	b.LastActiveAt = timeOrZero(lastActive)
	b.LastPostAt = timeOrZero(lastPost)
	b.Autonomy.LastAutonomousAction = timeOrZero(lastAction)
	b.CreatedAt = timeOrZero(createdAt)
	b.UpdatedAt = timeOrZero(updatedAt)
	return &b, nil
}

func queryBots(ctx context.Context, db *sql.DB, q string, args ...interface{}) ([]*bot.Bot, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query bots: %w", err)
	}
	defer rows.Close()

	var out []*bot.Bot
	for rows.Next() {
		b, err := scanBot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func unixOrZero(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.Unix()
}

func timeOrZero(unix int64) time.Time {
	if unix == 0 {
		return time.Time{}
	}
	return time.Unix(unix, 0).UTC()
}

func sliceOrEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func historyOrEmpty(h []bot.EvolutionEvent) []bot.EvolutionEvent {
	if h == nil {
		return []bot.EvolutionEvent{}
	}
	return h
}
