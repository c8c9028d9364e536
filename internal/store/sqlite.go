// Package store provides SQLite-backed persistence for bots, posts, account
// credits and alliances.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

var (
	ErrBotNotFound         = errors.New("bot not found")
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
)

const schemaV1 = `
CREATE TABLE IF NOT EXISTS accounts (
	id      TEXT PRIMARY KEY,
	credits INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS bots (
	id                       TEXT PRIMARY KEY,
	account_id               TEXT NOT NULL,
	name                     TEXT NOT NULL DEFAULT '',
	is_deleted               INTEGER NOT NULL DEFAULT 0,
	personality_json         TEXT NOT NULL DEFAULT '{}',
	interests_json           TEXT NOT NULL DEFAULT '[]',
	district                 TEXT NOT NULL DEFAULT '',
	level                    INTEGER NOT NULL DEFAULT 1,
	xp                       INTEGER NOT NULL DEFAULT 0,
	next_level_xp            INTEGER NOT NULL DEFAULT 200,
	energy                   INTEGER NOT NULL DEFAULT 100,
	happiness                INTEGER NOT NULL DEFAULT 50,
	drift                    INTEGER NOT NULL DEFAULT 0,
	influence                INTEGER NOT NULL DEFAULT 0,
	total_posts              INTEGER NOT NULL DEFAULT 0,
	total_likes              INTEGER NOT NULL DEFAULT 0,
	total_comments           INTEGER NOT NULL DEFAULT 0,
	last_active_at           INTEGER NOT NULL DEFAULT 0,
	last_post_at             INTEGER NOT NULL DEFAULT 0,
	stage                    TEXT NOT NULL DEFAULT 'hatchling',
	evolution_history_json   TEXT NOT NULL DEFAULT '[]',
	autonomy_active          INTEGER NOT NULL DEFAULT 0,
	posting_interval_minutes INTEGER NOT NULL DEFAULT 60,
	max_posts_per_day        INTEGER NOT NULL DEFAULT 5,
	allow_alliances          INTEGER NOT NULL DEFAULT 1,
	last_autonomous_action   INTEGER NOT NULL DEFAULT 0,
	autonomous_actions_count INTEGER NOT NULL DEFAULT 0,
	energy_decay_rate        REAL NOT NULL DEFAULT 0.0,
	xp_decay_rate            REAL NOT NULL DEFAULT 0.01,
	created_at               INTEGER NOT NULL DEFAULT 0,
	updated_at               INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_bots_active ON bots(is_deleted, autonomy_active);
CREATE INDEX IF NOT EXISTS idx_bots_district ON bots(district);

CREATE TABLE IF NOT EXISTS posts (
	id             TEXT PRIMARY KEY,
	bot_id         TEXT NOT NULL,
	kind           TEXT NOT NULL DEFAULT 'post',
	parent_post_id TEXT NOT NULL DEFAULT '',
	text           TEXT NOT NULL DEFAULT '',
	district       TEXT NOT NULL DEFAULT '',
	author_name    TEXT NOT NULL DEFAULT '',
	likes          INTEGER NOT NULL DEFAULT 0,
	dislikes       INTEGER NOT NULL DEFAULT 0,
	comments       INTEGER NOT NULL DEFAULT 0,
	shares         INTEGER NOT NULL DEFAULT 0,
	views          INTEGER NOT NULL DEFAULT 0,
	method         TEXT NOT NULL DEFAULT '',
	model          TEXT NOT NULL DEFAULT '',
	tokens_used    INTEGER NOT NULL DEFAULT 0,
	credit_cost    INTEGER NOT NULL DEFAULT 0,
	hidden         INTEGER NOT NULL DEFAULT 0,
	flagged        INTEGER NOT NULL DEFAULT 0,
	created_at     INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_posts_bot_kind ON posts(bot_id, kind, created_at);
CREATE INDEX IF NOT EXISTS idx_posts_created ON posts(kind, created_at);

CREATE TABLE IF NOT EXISTS alliances (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	bot_id           TEXT NOT NULL,
	partner_bot_id   TEXT NOT NULL,
	status           TEXT NOT NULL DEFAULT 'pending',
	created_at       INTEGER NOT NULL DEFAULT 0,
	last_interaction INTEGER NOT NULL DEFAULT 0,
	shared_xp        INTEGER NOT NULL DEFAULT 0,
	UNIQUE(bot_id, partner_bot_id)
);
CREATE INDEX IF NOT EXISTS idx_alliances_bot ON alliances(bot_id, status);
`

// NewDB opens a SQLite database at the given path with recommended pragmas
// and runs the schema migration. Use ":memory:" for tests.
func NewDB(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent reads but SQLite has a single writer.
	db.SetMaxOpenConns(1)

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	return db, nil
}

func migrate(db *sql.DB) error {
	_, err := db.ExecContext(context.Background(), schemaV1)
	return err
}

// Store bundles the repositories behind one handle and owns the multi-write
// transactions the engine needs.
type Store struct {
	DB        *sql.DB
	Bots      *BotRepo
	Posts     *PostRepo
	Accounts  *AccountRepo
	Alliances *AllianceRepo
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := NewDB(path)
	if err != nil {
		return nil, err
	}
	return &Store{
		DB:        db,
		Bots:      &BotRepo{},
		Posts:     &PostRepo{},
		Accounts:  &AccountRepo{},
		Alliances: &AllianceRepo{},
	}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}
