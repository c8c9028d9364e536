package graph

import (
	"context"
	"time"

	"github.com/agenthands/hive/internal/bot"
)

const upsertAllianceQuery = `
MERGE (a:Bot {id: $bot_a})
SET a.name = $name_a, a.district = $district_a, a.level = $level_a
MERGE (b:Bot {id: $bot_b})
SET b.name = $name_b, b.district = $district_b, b.level = $level_b
MERGE (a)-[r:ALLIED_WITH]->(b)
SET r.status = $status, r.score = $score, r.created_at = $created_at
`

// Mirror projects alliance edges into the graph store.
type Mirror struct {
	Driver Driver
}

func NewMirror(driver Driver) *Mirror {
	return &Mirror{Driver: driver}
}

// RecordAlliance upserts both bot nodes and the alliance edge. One directed
// edge represents the pair; the relational store keeps the two-sided records.
func (m *Mirror) RecordAlliance(ctx context.Context, a, b *bot.Bot, status bot.AllianceStatus, score float64, at time.Time) error {
	params := map[string]interface{}{
		"bot_a":      a.ID,
		"name_a":     a.Name,
		"district_a": string(a.District),
		"level_a":    a.Level,
		"bot_b":      b.ID,
		"name_b":     b.Name,
		"district_b": string(b.District),
		"level_b":    b.Level,
		"status":     string(status),
		"score":      score,
		"created_at": at.Unix(),
	}
	_, err := m.Driver.ExecuteQuery(ctx, upsertAllianceQuery, params)
	return err
}
