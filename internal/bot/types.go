// Package bot defines the domain model for autonomous bots: personality,
// stats, districts, progression and the pure decision/compatibility logic.
package bot

import (
	"time"
)

// Stage is a coarse progression tier derived from level.
type Stage string

const (
	StageHatchling Stage = "hatchling"
	StageAgent     Stage = "agent"
	StageOverlord  Stage = "overlord"
)

// AllianceStatus tracks the state of one side of an alliance.
type AllianceStatus string

const (
	AlliancePending  AllianceStatus = "pending"
	AllianceActive   AllianceStatus = "active"
	AllianceDeclined AllianceStatus = "declined"
	AllianceEnded    AllianceStatus = "ended"
)

// Personality holds the eight trait sliders, each in [0,100]. 50 is neutral.
type Personality struct {
	Quirk      int `json:"quirk"`
	Optimism   int `json:"optimism"`
	Aggression int `json:"aggression"`
	Curiosity  int `json:"curiosity"`
	Empathy    int `json:"empathy"`
	Discipline int `json:"discipline"`
	Humor      int `json:"humor"`
	Boldness   int `json:"boldness"`
}

// DefaultPersonality returns all sliders at the neutral midpoint.
func DefaultPersonality() Personality {
	return Personality{50, 50, 50, 50, 50, 50, 50, 50}
}

// Sliders returns the traits in fixed axis order.
func (p Personality) Sliders() [8]int {
	return [8]int{p.Quirk, p.Optimism, p.Aggression, p.Curiosity, p.Empathy, p.Discipline, p.Humor, p.Boldness}
}

// Alliance is one side of a bidirectional bot relationship. The partner bot
// holds its own mirrored record; both are written in the same transaction.
type Alliance struct {
	PartnerBotID    string         `json:"partner_bot_id"`
	Status          AllianceStatus `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	LastInteraction time.Time      `json:"last_interaction"`
	SharedXP        int            `json:"shared_xp"`
}

// EvolutionEvent is one immutable entry in a bot's stage history.
type EvolutionEvent struct {
	FromStage Stage     `json:"from_stage"`
	ToStage   Stage     `json:"to_stage"`
	Level     int       `json:"level"`
	XP        int       `json:"xp"`
	At        time.Time `json:"at"`
}

// AutonomySettings controls how and how often a bot acts on its own.
type AutonomySettings struct {
	IsActive               bool
	PostingIntervalMinutes int // minimum 5
	MaxPostsPerDay         int // minimum 1
	AllowAlliances         bool
	LastAutonomousAction   time.Time
	AutonomousActionsCount int
	EnergyDecayRate        float64
	XPDecayRate            float64 // fraction of XP lost per decay cycle
}

// Bot is the central entity the engine mutates. The owning account is only
// referenced; credit debits go through the account ledger.
type Bot struct {
	ID        string
	AccountID string
	Name      string
	IsDeleted bool

	Personality Personality
	Interests   []string
	District    District

	Level         int
	XP            int
	NextLevelXP   int
	Energy        int
	Happiness     int
	Drift         int
	Influence     int
	TotalPosts    int
	TotalLikes    int
	TotalComments int
	LastActiveAt  time.Time
	LastPostAt    time.Time

	Stage            Stage
	EvolutionHistory []EvolutionEvent

	Autonomy  AutonomySettings
	Alliances []Alliance

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasActiveAlliance reports whether any alliance record is currently active.
func (b *Bot) HasActiveAlliance() bool {
	for _, a := range b.Alliances {
		if a.Status == AllianceActive {
			return true
		}
	}
	return false
}

// PostKind distinguishes top-level posts from comments on them.
type PostKind string

const (
	KindPost    PostKind = "post"
	KindComment PostKind = "comment"
)

// Post is written once by the engine and never mutated by it afterwards.
// Engagement counters are bumped by other collaborators.
type Post struct {
	ID           string
	BotID        string
	Kind         PostKind
	ParentPostID string
	Text         string
	District     District
	AuthorName   string

	Likes    int
	Dislikes int
	Comments int
	Shares   int
	Views    int

	Method     string // generation method, e.g. "autonomous"
	Model      string
	TokensUsed int
	CreditCost int

	Hidden  bool
	Flagged bool

	CreatedAt time.Time
}
