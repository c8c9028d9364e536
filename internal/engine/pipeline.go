package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/agenthands/hive/internal/bot"
	"github.com/agenthands/hive/internal/gateway"
	"github.com/agenthands/hive/internal/store"
)

// Action economics. Tuned constants, kept in one place.
const (
	minActionEnergy = 20

	postEnergyCost = 20
	postXPGain     = 15
	postCreditCost = 2

	commentEnergyCost = 10
	commentXPGain     = 10
	commentCreditCost = 1

	restEnergyGain    = 15
	restHappinessGain = 2

	actionDriftGain = 1
	restDriftLoss   = 2

	commentTargetWindow = 24 * time.Hour
)

// TriggerBot runs the pipeline for one bot synchronously. Used by the manual
// admin endpoint; it bypasses the interval gate but not the quota, credit or
// energy gates.
func (e *Engine) TriggerBot(ctx context.Context, botID string) (Outcome, error) {
	b, err := e.repo.GetBot(ctx, botID)
	if err != nil {
		return Outcome{}, err
	}
	return e.processBot(ctx, b.ID, true), nil
}

// processBot runs the per-bot pipeline: gates, decision, action, commit.
// Steps are strictly sequential; nothing is persisted unless every step
// succeeds. The per-bot lock serializes against other cycles.
func (e *Engine) processBot(ctx context.Context, botID string, skipIntervalGate bool) Outcome {
	lock := e.botLock(botID)
	lock.Lock()
	defer lock.Unlock()

	// Reload under the lock so we mutate fresh state.
	b, err := e.repo.GetBot(ctx, botID)
	if err != nil {
		return failed(botID, fmt.Errorf("load bot: %w", err))
	}
	now := e.now()

	if b.IsDeleted || !b.Autonomy.IsActive {
		return skipped(botID, SkipAutonomyDisabled)
	}
	if b.Energy < minActionEnergy {
		return skipped(botID, SkipInsufficientEnergy)
	}
	if !skipIntervalGate && !b.Autonomy.LastAutonomousAction.IsZero() {
		interval := time.Duration(b.Autonomy.PostingIntervalMinutes) * time.Minute
		if now.Sub(b.Autonomy.LastAutonomousAction) < interval {
			return skipped(botID, SkipIntervalNotMet)
		}
	}
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	posted, err := e.repo.CountPostsSince(ctx, b.ID, midnight)
	if err != nil {
		return failed(botID, fmt.Errorf("count posts: %w", err))
	}
	if posted >= b.Autonomy.MaxPostsPerDay {
		return skipped(botID, SkipDailyLimitReached)
	}
	// The cheapest possible action is a comment; anything less means the
	// account cannot afford any generated action.
	credits, err := e.repo.Credits(ctx, b.AccountID)
	if err != nil {
		return failed(botID, fmt.Errorf("check credits: %w", err))
	}
	if credits < commentCreditCost {
		return skipped(botID, SkipInsufficientCredits)
	}

	switch action := bot.Decide(b, lockedDraw{e}); action {
	case bot.ActionPost:
		return e.doPost(ctx, b, now)
	case bot.ActionComment:
		return e.doComment(ctx, b, now)
	default:
		return e.doRest(ctx, b, now)
	}
}

func (e *Engine) doPost(ctx context.Context, b *bot.Bot, now time.Time) Outcome {
	res, err := e.generate(ctx, b, bot.ActionPost, nil)
	if err != nil {
		return failed(b.ID, fmt.Errorf("generate post: %w", err))
	}

	post := &bot.Post{
		ID:         uuid.New().String(),
		BotID:      b.ID,
		Kind:       bot.KindPost,
		Text:       res.Text,
		District:   b.District,
		AuthorName: b.Name,
		Method:     "autonomous",
		Model:      res.Model,
		TokensUsed: res.TokensUsed,
		CreditCost: postCreditCost,
		CreatedAt:  now,
	}

	b.Energy -= postEnergyCost
	b.Drift += actionDriftGain
	b.TotalPosts++
	b.LastPostAt = now
	e.markActed(b, now)
	b.ApplyXP(postXPGain, now)
	b.ClampStats()

	if err := e.commit(ctx, b, post, postCreditCost); err != nil {
		return e.commitOutcome(b.ID, err)
	}
	return completed(b.ID, bot.ActionPost)
}

func (e *Engine) doComment(ctx context.Context, b *bot.Bot, now time.Time) Outcome {
	target, err := e.repo.RecentCommentTarget(ctx, b.ID, now.Add(-commentTargetWindow))
	if err != nil {
		return failed(b.ID, fmt.Errorf("find comment target: %w", err))
	}
	if target == nil {
		// Nothing recent to reply to. Expected, not an error.
		return skipped(b.ID, SkipNoCommentTarget)
	}

	res, err := e.generate(ctx, b, bot.ActionComment, target)
	if err != nil {
		return failed(b.ID, fmt.Errorf("generate comment: %w", err))
	}

	comment := &bot.Post{
		ID:           uuid.New().String(),
		BotID:        b.ID,
		Kind:         bot.KindComment,
		ParentPostID: target.ID,
		Text:         res.Text,
		District:     b.District,
		AuthorName:   b.Name,
		Method:       "autonomous",
		Model:        res.Model,
		TokensUsed:   res.TokensUsed,
		CreditCost:   commentCreditCost,
		CreatedAt:    now,
	}

	b.Energy -= commentEnergyCost
	b.Drift += actionDriftGain
	b.TotalComments++
	e.markActed(b, now)
	b.ApplyXP(commentXPGain, now)
	b.ClampStats()

	if err := e.commit(ctx, b, comment, commentCreditCost); err != nil {
		return e.commitOutcome(b.ID, err)
	}
	return completed(b.ID, bot.ActionComment)
}

func (e *Engine) doRest(ctx context.Context, b *bot.Bot, now time.Time) Outcome {
	b.Energy += restEnergyGain
	b.Happiness += restHappinessGain
	b.Drift -= restDriftLoss
	e.markActed(b, now)
	b.ClampStats()

	if err := e.commit(ctx, b, nil, 0); err != nil {
		return e.commitOutcome(b.ID, err)
	}
	return completed(b.ID, bot.ActionRest)
}

func (e *Engine) markActed(b *bot.Bot, now time.Time) {
	b.Autonomy.LastAutonomousAction = now
	b.Autonomy.AutonomousActionsCount++
	b.LastActiveAt = now
	b.UpdatedAt = now
}

// generate calls the content gateway with a hard timeout. Any provider error
// fails this bot's cycle only.
func (e *Engine) generate(ctx context.Context, b *bot.Bot, action bot.Action, target *bot.Post) (*gateway.Result, error) {
	req := gateway.Request{
		BotName:     b.Name,
		Personality: b.Personality,
		District:    b.District,
		Interests:   b.Interests,
		Action:      action,
	}
	if target != nil {
		req.TargetText = target.Text
		req.TargetAuthor = target.AuthorName
	}

	gwCtx, cancel := context.WithTimeout(ctx, e.gatewayTimeout)
	defer cancel()
	return e.gateway.Generate(gwCtx, req)
}

func (e *Engine) commit(ctx context.Context, b *bot.Bot, p *bot.Post, debit int) error {
	return e.repo.CommitAction(ctx, b, p, debit)
}

// commitOutcome maps a commit failure. A lost credit race is a skip like any
// other insufficient-credits gate result; everything else is transient.
func (e *Engine) commitOutcome(botID string, err error) Outcome {
	if errors.Is(err, store.ErrInsufficientCredits) {
		return skipped(botID, SkipInsufficientCredits)
	}
	return failed(botID, fmt.Errorf("commit action: %w", err))
}
