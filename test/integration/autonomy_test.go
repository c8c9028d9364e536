//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hive/internal/bot"
	"github.com/agenthands/hive/internal/config"
	"github.com/agenthands/hive/internal/engine"
	"github.com/agenthands/hive/internal/gateway"
	"github.com/agenthands/hive/internal/graph"
	"github.com/agenthands/hive/internal/store"
)

// TestAutonomousPostFlow drives one bot through the real pipeline with a live
// LLM provider: gate checks, content generation, and the transactional commit
// against a file-backed database.
func TestAutonomousPostFlow(t *testing.T) {
	_ = godotenv.Load("../../.env")

	provider := os.Getenv("LLM_PROVIDER")
	if provider == "" {
		t.Skip("Skipping integration test: LLM_PROVIDER not set")
	}

	llmCfg := config.LLMConfig{
		Provider: provider,
		Model:    os.Getenv("LLM_MODEL"),
		BaseURL:  os.Getenv("LLM_BASE_URL"),
		APIKey:   os.Getenv("LLM_API_KEY"),
	}
	if llmCfg.Model == "" {
		llmCfg.Model = "gpt-oss:latest"
	}

	gw, err := gateway.NewClient(context.Background(), llmCfg)
	require.NoError(t, err)

	st, err := store.Open(filepath.Join(t.TempDir(), "hive.db"))
	require.NoError(t, err)
	defer st.Close()

	var mirror engine.AllianceMirror
	if uri := os.Getenv("GRAPH_URI"); uri != "" {
		d, err := graph.NewBoltDriver(uri, os.Getenv("GRAPH_USER"), os.Getenv("GRAPH_PASSWORD"))
		require.NoError(t, err)
		defer d.Close(context.Background())
		mirror = graph.NewMirror(d)
	}

	eng := engine.New(engine.Options{
		Repo:           st,
		Gateway:        gw,
		Mirror:         mirror,
		GatewayTimeout: 2 * time.Minute,
	})

	ctx := context.Background()
	accountID := "acct-" + uuid.New().String()
	require.NoError(t, st.CreateAccount(ctx, accountID, 100))

	p := bot.DefaultPersonality()
	p.Humor = 90
	p.Curiosity = 85
	b := &bot.Bot{
		ID:          uuid.New().String(),
		AccountID:   accountID,
		Name:        "integration-bot",
		Personality: p,
		Interests:   []string{"synthwave", "urban exploration"},
		District:    bot.DistrictFor(p),
		Level:       1,
		Energy:      100,
		Happiness:   100,
		Stage:       bot.StageHatchling,
		NextLevelXP: bot.XPRequired(2),
		Autonomy: bot.AutonomySettings{
			IsActive:               true,
			PostingIntervalMinutes: 5,
			MaxPostsPerDay:         10,
		},
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	require.NoError(t, st.CreateBot(ctx, b))

	outcome, err := eng.TriggerBot(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, engine.StatusCompleted, outcome.Status, "outcome: %+v", outcome)

	got, err := st.GetBot(ctx, b.ID)
	require.NoError(t, err)
	assert.Less(t, got.Energy, 100)
	assert.Greater(t, got.XP+got.TotalPosts+got.TotalComments, 0)

	if outcome.Action == bot.ActionPost {
		n, err := st.CountPostsSince(ctx, b.ID, time.Now().Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		credits, err := st.Credits(ctx, accountID)
		require.NoError(t, err)
		assert.Equal(t, 98, credits)
	}
}

// TestAllianceFormationFlow forms a formal alliance between two compatible
// bots and, when a graph database is configured, mirrors the edge.
func TestAllianceFormationFlow(t *testing.T) {
	_ = godotenv.Load("../../.env")

	st, err := store.Open(filepath.Join(t.TempDir(), "hive.db"))
	require.NoError(t, err)
	defer st.Close()

	var mirror engine.AllianceMirror
	if uri := os.Getenv("GRAPH_URI"); uri != "" {
		d, err := graph.NewBoltDriver(uri, os.Getenv("GRAPH_USER"), os.Getenv("GRAPH_PASSWORD"))
		require.NoError(t, err)
		defer d.Close(context.Background())
		require.NoError(t, d.BuildIndices(context.Background()))
		mirror = graph.NewMirror(d)
	}

	eng := engine.New(engine.Options{
		Repo:    st,
		Gateway: nil, // alliance matching never generates content
		Mirror:  mirror,
	})

	ctx := context.Background()
	seed := func(name string) *bot.Bot {
		accountID := "acct-" + uuid.New().String()
		require.NoError(t, st.CreateAccount(ctx, accountID, 10))
		p := bot.DefaultPersonality()
		b := &bot.Bot{
			ID:          uuid.New().String(),
			AccountID:   accountID,
			Name:        name,
			Personality: p,
			Interests:   []string{"synthwave", "chess"},
			District:    bot.DistrictFor(p),
			Level:       3,
			Energy:      100,
			Happiness:   100,
			Stage:       bot.StageHatchling,
			Autonomy: bot.AutonomySettings{
				IsActive:       true,
				AllowAlliances: true,
			},
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		require.NoError(t, st.CreateBot(ctx, b))
		return b
	}
	a := seed("ally-a")
	b := seed("ally-b")

	formed, err := eng.FormAlliances(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, formed)

	for _, id := range []string{a.ID, b.ID} {
		got, err := st.GetBot(ctx, id)
		require.NoError(t, err)
		assert.True(t, got.HasActiveAlliance())
		assert.Equal(t, 50, got.XP)
		assert.Equal(t, 10, got.Influence)
	}
}
