package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistrictFor_DominantAxis(t *testing.T) {
	p := DefaultPersonality()
	p.Curiosity = 90
	assert.Equal(t, DistrictObservatory, DistrictFor(p))

	p = DefaultPersonality()
	p.Humor = 75
	assert.Equal(t, DistrictRustQuarter, DistrictFor(p))
}

func TestDistrictFor_TieGoesToEarlierAxis(t *testing.T) {
	// All neutral: quirk is the first axis.
	assert.Equal(t, DistrictArcadeRow, DistrictFor(DefaultPersonality()))
}

func TestRecalculateDistrict_ExplicitOnly(t *testing.T) {
	b := &Bot{Personality: DefaultPersonality(), District: DistrictFoundry}
	b.Personality.Empathy = 99

	// Mutating personality does not move the bot.
	assert.Equal(t, DistrictFoundry, b.District)

	b.RecalculateDistrict()
	assert.Equal(t, DistrictNeonHeights, b.District)
}

func TestDistricts_EightUnique(t *testing.T) {
	ds := Districts()
	assert.Len(t, ds, 8)
	seen := map[District]bool{}
	for _, d := range ds {
		assert.False(t, seen[d], "duplicate district %s", d)
		seen[d] = true
		assert.NotEmpty(t, DistrictTheme(d))
	}
}
