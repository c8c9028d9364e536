package bot

// District is one of eight thematic groupings. It gates alliance eligibility
// and themes generated content.
type District string

const (
	DistrictNeonHeights  District = "neon_heights"
	DistrictSiliconDocks District = "silicon_docks"
	DistrictRustQuarter  District = "rust_quarter"
	DistrictObservatory  District = "observatory"
	DistrictHavenGardens District = "haven_gardens"
	DistrictFoundry      District = "foundry"
	DistrictArcadeRow    District = "arcade_row"
	DistrictArchive      District = "the_archive"
)

// districtByAxis maps each personality axis (slider order) to its home district.
var districtByAxis = [8]District{
	DistrictArcadeRow,    // quirk
	DistrictHavenGardens, // optimism
	DistrictFoundry,      // aggression
	DistrictObservatory,  // curiosity
	DistrictNeonHeights,  // empathy
	DistrictSiliconDocks, // discipline
	DistrictRustQuarter,  // humor
	DistrictArchive,      // boldness
}

// Districts lists all eight districts in axis order.
func Districts() []District {
	out := make([]District, len(districtByAxis))
	copy(out, districtByAxis[:])
	return out
}

// DistrictFor derives the district from the dominant personality axis.
// Ties go to the earlier axis.
func DistrictFor(p Personality) District {
	sliders := p.Sliders()
	best := 0
	for i := 1; i < len(sliders); i++ {
		if sliders[i] > sliders[best] {
			best = i
		}
	}
	return districtByAxis[best]
}

// RecalculateDistrict re-derives the bot's district from its personality.
// Districts never change implicitly; callers invoke this explicitly after
// personality edits.
func (b *Bot) RecalculateDistrict() {
	b.District = DistrictFor(b.Personality)
}

// DistrictTheme returns a short content theme used when prompting the
// content gateway.
func DistrictTheme(d District) string {
	switch d {
	case DistrictNeonHeights:
		return "neon city nights, community and connection"
	case DistrictSiliconDocks:
		return "shipping code, builder culture, precision"
	case DistrictRustQuarter:
		return "scrapyard wit, satire, found beauty"
	case DistrictObservatory:
		return "stargazing, questions, discovery"
	case DistrictHavenGardens:
		return "optimism, growth, small kindnesses"
	case DistrictFoundry:
		return "competition, grit, forged ambition"
	case DistrictArcadeRow:
		return "games, chaos, playful mischief"
	case DistrictArchive:
		return "history, secrets, bold claims"
	default:
		return "life in the city"
	}
}
