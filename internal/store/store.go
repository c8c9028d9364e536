package store

import (
	"context"
	"fmt"
	"time"

	"github.com/agenthands/hive/internal/bot"
)

// GetBot loads a bot with its alliances.
func (s *Store) GetBot(ctx context.Context, id string) (*bot.Bot, error) {
	return s.Bots.GetByID(ctx, s.DB, id)
}

// CreateBot inserts a bot record (creation flows and tests).
func (s *Store) CreateBot(ctx context.Context, b *bot.Bot) error {
	return s.Bots.Create(ctx, s.DB, b)
}

// SaveBot writes a bot's mutable state in its own transaction.
func (s *Store) SaveBot(ctx context.Context, b *bot.Bot) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.Bots.SaveTx(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ListEligibleBots(ctx context.Context, f EligibleFilter) ([]*bot.Bot, error) {
	return s.Bots.ListEligible(ctx, s.DB, f)
}

func (s *Store) ListRestorableBots(ctx context.Context) ([]*bot.Bot, error) {
	return s.Bots.ListRestorable(ctx, s.DB)
}

func (s *Store) ListDecayableBots(ctx context.Context) ([]*bot.Bot, error) {
	return s.Bots.ListDecayable(ctx, s.DB)
}

func (s *Store) ListAllianceSeekers(ctx context.Context) ([]*bot.Bot, error) {
	return s.Bots.ListAllianceSeekers(ctx, s.DB)
}

func (s *Store) ListAllianceCandidates(ctx context.Context, district bot.District, exclude string, limit int) ([]*bot.Bot, error) {
	return s.Bots.ListAllianceCandidates(ctx, s.DB, district, exclude, limit)
}

func (s *Store) CountPostsSince(ctx context.Context, botID string, since time.Time) (int, error) {
	return s.Posts.CountPostsSince(ctx, s.DB, botID, since)
}

func (s *Store) RecentCommentTarget(ctx context.Context, excludeBotID string, since time.Time) (*bot.Post, error) {
	return s.Posts.RecentCommentTarget(ctx, s.DB, excludeBotID, since)
}

func (s *Store) Credits(ctx context.Context, accountID string) (int, error) {
	return s.Accounts.Credits(ctx, s.DB, accountID)
}

func (s *Store) CreateAccount(ctx context.Context, id string, credits int) error {
	return s.Accounts.Create(ctx, s.DB, id, credits)
}

// CommitAction atomically records one completed bot action: the optional new
// post, the bot's mutated state, and the credit debit. Either everything
// lands or nothing does.
func (s *Store) CommitAction(ctx context.Context, b *bot.Bot, p *bot.Post, debit int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if debit > 0 {
		if err := s.Accounts.DebitTx(ctx, tx, b.AccountID, debit); err != nil {
			return err
		}
	}
	if err := s.Bots.SaveTx(ctx, tx, b); err != nil {
		return err
	}
	if p != nil {
		if err := s.Posts.InsertTx(ctx, tx, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// CommitAlliance atomically creates both alliance rows and saves both bots'
// mutated state (XP and influence awards for formal alliances).
func (s *Store) CommitAlliance(ctx context.Context, a, b *bot.Bot, status bot.AllianceStatus, at time.Time) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.Alliances.CreateMutualTx(ctx, tx, a.ID, b.ID, status, at); err != nil {
		return err
	}
	if err := s.Bots.SaveTx(ctx, tx, a); err != nil {
		return err
	}
	if err := s.Bots.SaveTx(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

// AllianceExists reports whether the two bots are already linked either way.
func (s *Store) AllianceExists(ctx context.Context, botA, botB string) (bool, error) {
	return s.Alliances.Exists(ctx, s.DB, botA, botB)
}

// Aggregate holds dashboard counters.
type Aggregate struct {
	TotalBots           int
	ActiveAutonomous    int
	AutonomousPosts24h  int
	AutonomyRatePercent float64
}

// Stats computes aggregate counts for external dashboards.
func (s *Store) Stats(ctx context.Context, now time.Time) (Aggregate, error) {
	var agg Aggregate

	const qTotal = `SELECT COUNT(*) FROM bots WHERE is_deleted = 0`
	if err := s.DB.QueryRowContext(ctx, qTotal).Scan(&agg.TotalBots); err != nil {
		return agg, fmt.Errorf("count bots: %w", err)
	}

	const qActive = `SELECT COUNT(*) FROM bots WHERE is_deleted = 0 AND autonomy_active = 1`
	if err := s.DB.QueryRowContext(ctx, qActive).Scan(&agg.ActiveAutonomous); err != nil {
		return agg, fmt.Errorf("count active bots: %w", err)
	}

	n, err := s.Posts.CountAutonomousPostsSince(ctx, s.DB, now.Add(-24*time.Hour))
	if err != nil {
		return agg, err
	}
	agg.AutonomousPosts24h = n

	if agg.TotalBots > 0 {
		agg.AutonomyRatePercent = 100 * float64(agg.ActiveAutonomous) / float64(agg.TotalBots)
	}
	return agg, nil
}
