package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/agenthands/hive/internal/bot"
)

// PostRepo handles persistence for posts and comments.
type PostRepo struct{}

// InsertTx inserts a post within an existing transaction.
func (r *PostRepo) InsertTx(ctx context.Context, tx *sql.Tx, p *bot.Post) error {
	const q = `INSERT INTO posts (id, bot_id, kind, parent_post_id, text, district, author_name,
likes, dislikes, comments, shares, views, method, model, tokens_used, credit_cost, hidden, flagged, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		p.ID, p.BotID, string(p.Kind), p.ParentPostID, p.Text, string(p.District), p.AuthorName,
		p.Likes, p.Dislikes, p.Comments, p.Shares, p.Views,
		p.Method, p.Model, p.TokensUsed, p.CreditCost,
		boolToInt(p.Hidden), boolToInt(p.Flagged), unixOrZero(p.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// CountPostsSince counts top-level posts by a bot created at or after since.
// Comments do not count against the daily quota.
func (r *PostRepo) CountPostsSince(ctx context.Context, db *sql.DB, botID string, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM posts WHERE bot_id = ? AND kind = 'post' AND created_at >= ?`
	var n int
	if err := db.QueryRowContext(ctx, q, botID, since.Unix()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

// RecentCommentTarget picks the newest visible top-level post created at or
// after since that was not authored by the given bot. Returns nil when there
// is nothing to comment on.
func (r *PostRepo) RecentCommentTarget(ctx context.Context, db *sql.DB, excludeBotID string, since time.Time) (*bot.Post, error) {
	const q = `SELECT id, bot_id, kind, parent_post_id, text, district, author_name,
likes, dislikes, comments, shares, views, method, model, tokens_used, credit_cost, hidden, flagged, created_at
FROM posts
WHERE kind = 'post' AND hidden = 0 AND bot_id != ? AND created_at >= ?
ORDER BY created_at DESC LIMIT 1`

	p, err := scanPost(db.QueryRowContext(ctx, q, excludeBotID, since.Unix()))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// CountAutonomousPostsSince counts autonomous posts across all bots.
func (r *PostRepo) CountAutonomousPostsSince(ctx context.Context, db *sql.DB, since time.Time) (int, error) {
	const q = `SELECT COUNT(*) FROM posts WHERE method = 'autonomous' AND created_at >= ?`
	var n int
	if err := db.QueryRowContext(ctx, q, since.Unix()).Scan(&n); err != nil {
		return 0, fmt.Errorf("count autonomous posts: %w", err)
	}
	return n, nil
}

func scanPost(row rowScanner) (*bot.Post, error) {
	var p bot.Post
	var kind, district string
	var hidden, flagged int
	var createdAt int64

	err := row.Scan(
		&p.ID, &p.BotID, &kind, &p.ParentPostID, &p.Text, &district, &p.AuthorName,
		&p.Likes, &p.Dislikes, &p.Comments, &p.Shares, &p.Views,
		&p.Method, &p.Model, &p.TokensUsed, &p.CreditCost,
		&hidden, &flagged, &createdAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	p.Kind = bot.PostKind(kind)
	p.District = bot.District(district)
	p.Hidden = hidden != 0
	p.Flagged = flagged != 0
	p.CreatedAt = timeOrZero(createdAt)
	return &p, nil
}
