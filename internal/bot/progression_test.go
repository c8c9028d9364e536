package bot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestXPRequired_Tiers(t *testing.T) {
	assert.Equal(t, 0, XPRequired(1))
	assert.Equal(t, 200, XPRequired(2))
	assert.Equal(t, 800, XPRequired(5))
	assert.Equal(t, 1100, XPRequired(6))
	assert.Equal(t, 3800, XPRequired(15))
	assert.Equal(t, 4300, XPRequired(16))
	assert.Equal(t, 4800, XPRequired(17))
}

func TestApplyXP_LevelUpLoop(t *testing.T) {
	b := &Bot{Level: 1, Stage: StageHatchling}
	b.ApplyXP(850, time.Now())

	// 850 total XP: level 5 costs 800, level 6 costs 1100.
	assert.Equal(t, 5, b.Level)
	assert.Equal(t, StageHatchling, b.Stage)
	assert.Equal(t, 1100, b.NextLevelXP)
	assert.Empty(t, b.EvolutionHistory)
}

func TestApplyXP_StageTransitionAppendsHistory(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &Bot{Level: 5, XP: 800, Stage: StageHatchling}
	b.ApplyXP(300, now) // 1100 total -> level 6 -> agent

	assert.Equal(t, 6, b.Level)
	assert.Equal(t, StageAgent, b.Stage)
	if assert.Len(t, b.EvolutionHistory, 1) {
		ev := b.EvolutionHistory[0]
		assert.Equal(t, StageHatchling, ev.FromStage)
		assert.Equal(t, StageAgent, ev.ToStage)
		assert.Equal(t, 6, ev.Level)
		assert.Equal(t, 1100, ev.XP)
		assert.Equal(t, now, ev.At)
	}
}

func TestApplyXP_IdempotentWhenXPUnchanged(t *testing.T) {
	b := &Bot{Level: 1, Stage: StageHatchling}
	b.ApplyXP(450, time.Now())
	level, stage := b.Level, b.Stage

	for i := 0; i < 5; i++ {
		b.ApplyXP(0, time.Now())
	}
	assert.Equal(t, level, b.Level)
	assert.Equal(t, stage, b.Stage)
}

func TestStageForLevel_Boundaries(t *testing.T) {
	assert.Equal(t, StageHatchling, StageForLevel(1))
	assert.Equal(t, StageHatchling, StageForLevel(5))
	assert.Equal(t, StageAgent, StageForLevel(6))
	assert.Equal(t, StageAgent, StageForLevel(15))
	assert.Equal(t, StageOverlord, StageForLevel(16))
}

func TestDecayXP(t *testing.T) {
	b := &Bot{Level: 6, XP: 1000, Stage: StageAgent}
	loss := b.DecayXP(0.05)

	assert.Equal(t, 50, loss)
	assert.Equal(t, 950, b.XP)
	// Level and stage stay where they are even though 950 < XPRequired(6).
	assert.Equal(t, 6, b.Level)
	assert.Equal(t, StageAgent, b.Stage)
}

func TestDecayXP_NoXPNoRate(t *testing.T) {
	b := &Bot{XP: 0}
	assert.Equal(t, 0, b.DecayXP(0.1))

	b = &Bot{XP: 500}
	assert.Equal(t, 0, b.DecayXP(0))
	assert.Equal(t, 500, b.XP)
}

func TestClampStats(t *testing.T) {
	b := &Bot{Energy: 130, Happiness: -5, Drift: 101, XP: -3, TotalPosts: -1}
	b.ClampStats()

	assert.Equal(t, 100, b.Energy)
	assert.Equal(t, 0, b.Happiness)
	assert.Equal(t, 100, b.Drift)
	assert.Equal(t, 0, b.XP)
	assert.Equal(t, 0, b.TotalPosts)
}
