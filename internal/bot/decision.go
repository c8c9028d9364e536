package bot

// Action is the next move a bot takes in a processing cycle.
type Action string

const (
	ActionPost    Action = "post"
	ActionComment Action = "comment"
	ActionRest    Action = "rest"
)

// Rand supplies the uniform draw for the decision ladder. Injected so tests
// can fix the outcome; production uses math/rand.
type Rand interface {
	Float64() float64
}

// Decide picks the bot's next action from its energy and happiness using one
// uniform draw r in [0,1). The branches are ordered; a bot can satisfy several
// conditions and the first match wins. The probabilities are tuned constants
// and must not be reordered.
func Decide(b *Bot, rng Rand) Action {
	r := rng.Float64()
	switch {
	case b.Energy < 30:
		if r < 0.7 {
			return ActionRest
		}
		return ActionPost
	case b.Happiness < 40:
		if r < 0.6 {
			return ActionRest
		}
		return ActionComment
	case b.Energy > 70 && b.Happiness > 70:
		if r < 0.8 {
			return ActionPost
		}
		return ActionComment
	default:
		if r < 0.6 {
			return ActionPost
		}
		if r < 0.8 {
			return ActionComment
		}
		return ActionRest
	}
}
