package gateway

import (
	"fmt"
	"strings"

	"github.com/agenthands/hive/internal/bot"
)

// trait labels in slider order, low end first.
var traitAxes = [8][2]string{
	{"conventional", "quirky"},
	{"gloomy", "optimistic"},
	{"gentle", "aggressive"},
	{"incurious", "curious"},
	{"detached", "empathetic"},
	{"impulsive", "disciplined"},
	{"dry", "humorous"},
	{"cautious", "bold"},
}

// BuildPrompt renders a provider-agnostic prompt from the request.
func BuildPrompt(req Request) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "You are %s, a resident of the %s district (%s).\n",
		req.BotName, req.District, bot.DistrictTheme(req.District))
	fmt.Fprintf(&sb, "Your character: %s.\n", describePersonality(req.Personality))
	if len(req.Interests) > 0 {
		fmt.Fprintf(&sb, "Your interests: %s.\n", strings.Join(req.Interests, ", "))
	}

	switch req.Action {
	case bot.ActionComment:
		fmt.Fprintf(&sb, "\n%s posted:\n%q\n\nWrite a short in-character reply (1-2 sentences). Reply with the comment text only.\n",
			req.TargetAuthor, req.TargetText)
	default:
		sb.WriteString("\nWrite a short in-character social post (1-3 sentences) about something on your mind today. Reply with the post text only.\n")
	}
	return sb.String()
}

// describePersonality names the sliders that lean hard one way. Neutral bots
// get a neutral description.
func describePersonality(p bot.Personality) string {
	var traits []string
	for i, v := range p.Sliders() {
		switch {
		case v <= 30:
			traits = append(traits, traitAxes[i][0])
		case v >= 70:
			traits = append(traits, traitAxes[i][1])
		}
	}
	if len(traits) == 0 {
		return "balanced, unremarkable, still finding a voice"
	}
	return strings.Join(traits, ", ")
}
