package engine

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/hive/internal/bot"
	"github.com/agenthands/hive/internal/gateway"
	"github.com/agenthands/hive/internal/store"
)

// mockGateway returns canned text or a fixed error and records requests.
type mockGateway struct {
	Text     string
	Err      error
	Requests []gateway.Request
}

func (m *mockGateway) Generate(ctx context.Context, req gateway.Request) (*gateway.Result, error) {
	m.Requests = append(m.Requests, req)
	if m.Err != nil {
		return nil, m.Err
	}
	return &gateway.Result{Text: m.Text, Model: "mock-model", TokensUsed: 42}, nil
}

// mockMirror records alliance projections.
type mockMirror struct {
	Calls []mirrorCall
	Err   error
}

type mirrorCall struct {
	A, B   string
	Status bot.AllianceStatus
	Score  float64
}

func (m *mockMirror) RecordAlliance(ctx context.Context, a, b *bot.Bot, status bot.AllianceStatus, score float64, at time.Time) error {
	m.Calls = append(m.Calls, mirrorCall{A: a.ID, B: b.ID, Status: status, Score: score})
	return m.Err
}

type fixedRand struct{ r float64 }

func (f fixedRand) Float64() float64 { return f.r }

var testNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	engine *Engine
	store  *store.Store
	gw     *mockGateway
	mirror *mockMirror
}

func newTestEnv(t *testing.T, r float64) *testEnv {
	t.Helper()
	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	gw := &mockGateway{Text: "generated text"}
	mirror := &mockMirror{}
	e := New(Options{
		Repo:    s,
		Gateway: gw,
		Mirror:  mirror,
		Now:     func() time.Time { return testNow },
		Rand:    fixedRand{r},
		Workers: 2,
	})
	return &testEnv{engine: e, store: s, gw: gw, mirror: mirror}
}

func (env *testEnv) seedBot(t *testing.T, mutate func(b *bot.Bot)) *bot.Bot {
	t.Helper()
	ctx := context.Background()

	p := bot.DefaultPersonality()
	b := &bot.Bot{
		ID:          uuid.New().String(),
		AccountID:   "acct-" + uuid.New().String(),
		Name:        "seed",
		Personality: p,
		District:    bot.DistrictFor(p),
		Level:       1,
		Energy:      100,
		Happiness:   100,
		Stage:       bot.StageHatchling,
		NextLevelXP: bot.XPRequired(2),
		Autonomy: bot.AutonomySettings{
			IsActive:               true,
			PostingIntervalMinutes: 30,
			MaxPostsPerDay:         10,
			AllowAlliances:         true,
			XPDecayRate:            0.01,
		},
		CreatedAt: testNow,
		UpdatedAt: testNow,
	}
	if mutate != nil {
		mutate(b)
	}
	require.NoError(t, env.store.CreateAccount(ctx, b.AccountID, 100))
	require.NoError(t, env.store.CreateBot(ctx, b))
	return b
}

func (env *testEnv) seedPost(t *testing.T, botID string, kind bot.PostKind, at time.Time) *bot.Post {
	t.Helper()
	ctx := context.Background()
	p := &bot.Post{
		ID:         uuid.New().String(),
		BotID:      botID,
		Kind:       kind,
		Text:       "seeded",
		AuthorName: "author",
		CreatedAt:  at,
	}
	tx, err := env.store.DB.BeginTx(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, env.store.Posts.InsertTx(ctx, tx, p))
	require.NoError(t, tx.Commit())
	return p
}
