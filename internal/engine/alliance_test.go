package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hive/internal/bot"
)

func TestRunAllianceCycle_MutualPending(t *testing.T) {
	env := newTestEnv(t, 0.1)
	a := env.seedBot(t, nil)
	b := env.seedBot(t, nil) // same default personality, same district
	ctx := context.Background()

	report := env.engine.RunAllianceCycle(ctx)

	assert.Equal(t, 1, report.Completed)

	gotA, err := env.store.GetBot(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := env.store.GetBot(ctx, b.ID)
	require.NoError(t, err)

	require.Len(t, gotA.Alliances, 1)
	require.Len(t, gotB.Alliances, 1)
	assert.Equal(t, b.ID, gotA.Alliances[0].PartnerBotID)
	assert.Equal(t, a.ID, gotB.Alliances[0].PartnerBotID)
	assert.Equal(t, bot.AlliancePending, gotA.Alliances[0].Status)
	assert.Equal(t, bot.AlliancePending, gotB.Alliances[0].Status)
	// Both rows share the transaction timestamp.
	assert.Equal(t, gotA.Alliances[0].CreatedAt, gotB.Alliances[0].CreatedAt)

	// A pending alliance carries no formal award.
	assert.Equal(t, 0, gotA.XP)
	assert.Equal(t, 0, gotA.Influence)
}

func TestRunAllianceCycle_NoCandidates(t *testing.T) {
	env := newTestEnv(t, 0.1)
	env.seedBot(t, nil) // alone in its district

	report := env.engine.RunAllianceCycle(context.Background())

	assert.Equal(t, 0, report.Completed)
	assert.Equal(t, 1, report.Skipped[SkipNoAllianceCandidate])
}

func TestRunAllianceCycle_ExistingPairNotDuplicated(t *testing.T) {
	env := newTestEnv(t, 0.1)
	a := env.seedBot(t, nil)
	b := env.seedBot(t, nil)
	ctx := context.Background()

	env.engine.RunAllianceCycle(ctx)
	report := env.engine.RunAllianceCycle(ctx)

	// Second pass finds the pair already allied and matches nobody.
	assert.Equal(t, 0, report.Completed)

	gotA, err := env.store.GetBot(ctx, a.ID)
	require.NoError(t, err)
	gotB, err := env.store.GetBot(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, gotA.Alliances, 1)
	assert.Len(t, gotB.Alliances, 1)
}

func TestRunAllianceCycle_RespectsOptOut(t *testing.T) {
	env := newTestEnv(t, 0.1)
	env.seedBot(t, nil)
	loner := env.seedBot(t, func(b *bot.Bot) { b.Autonomy.AllowAlliances = false })
	ctx := context.Background()

	env.engine.RunAllianceCycle(ctx)

	got, err := env.store.GetBot(ctx, loner.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Alliances)
}

func TestFormAlliances_ActiveWithAwards(t *testing.T) {
	env := newTestEnv(t, 0.1)
	// Identical personality, shared interests, same level and district:
	// 0.4*1 + 0.3*1 + 0.2*1 + 0.1*0.2 = 0.92.
	a := env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave", "chess"} })
	b := env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"chess", "synthwave"} })
	ctx := context.Background()

	formed, err := env.engine.FormAlliances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, formed)

	for _, id := range []string{a.ID, b.ID} {
		got, err := env.store.GetBot(ctx, id)
		require.NoError(t, err)
		require.Len(t, got.Alliances, 1)
		assert.Equal(t, bot.AllianceActive, got.Alliances[0].Status)
		assert.Equal(t, 50, got.XP)
		assert.Equal(t, 10, got.Influence)
		assert.True(t, got.HasActiveAlliance())
	}

	require.Len(t, env.mirror.Calls, 1)
	call := env.mirror.Calls[0]
	assert.Equal(t, bot.AllianceActive, call.Status)
	assert.InDelta(t, 0.92, call.Score, 0.001)
}

func TestFormAlliances_BelowThreshold(t *testing.T) {
	env := newTestEnv(t, 0.1)
	// No shared interests and a wide level gap keep the score under 0.7.
	env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"chess"}; b.Level = 1 })
	env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"opera"}; b.Level = 15 })
	ctx := context.Background()

	formed, err := env.engine.FormAlliances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, formed)
	assert.Empty(t, env.mirror.Calls)
}

func TestFormAlliances_BatchCap(t *testing.T) {
	env := newTestEnv(t, 0.1)
	for i := 0; i < 12; i++ {
		env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave"} })
	}

	formed, err := env.engine.FormAlliances(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, formed)
}

func TestFormAlliances_EachBotUsedOnce(t *testing.T) {
	env := newTestEnv(t, 0.1)
	a := env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave"} })
	env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave"} })
	env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave"} })
	ctx := context.Background()

	formed, err := env.engine.FormAlliances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, formed)

	got, err := env.store.GetBot(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, got.Alliances, 1)
}

func TestFormAlliances_MirrorFailureDoesNotUndo(t *testing.T) {
	env := newTestEnv(t, 0.1)
	env.mirror.Err = context.DeadlineExceeded
	a := env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave"} })
	env.seedBot(t, func(b *bot.Bot) { b.Interests = []string{"synthwave"} })
	ctx := context.Background()

	formed, err := env.engine.FormAlliances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, formed)

	got, err := env.store.GetBot(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.HasActiveAlliance())
}
