package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageToRegionPriorJapanese(t *testing.T) {
	prior, ok := LanguageToRegionPrior("東京駅はこちらです。新幹線のりば、山手線、中央線。")
	require.True(t, ok)
	assert.Equal(t, "jpn", prior.Language)
	assert.Contains(t, prior.Regions, "JP")
	assert.Greater(t, prior.Confidence, float32(0))
}

func TestLanguageToRegionPriorEmpty(t *testing.T) {
	_, ok := LanguageToRegionPrior("   ")
	assert.False(t, ok)
}

func TestCountryOfAddress(t *testing.T) {
	code, ok := CountryOfAddress("Champ de Mars, 5 Av. Anatole France, 75007 Paris, France")
	require.True(t, ok)
	assert.Equal(t, "FR", code)

	_, ok = CountryOfAddress("Somewhere Unrecognizable 42")
	assert.False(t, ok)
}

func TestCountryOfAddressPrefersSuffixMatch(t *testing.T) {
	// The address contains two country names; the trailing one is the
	// country, and repeated calls must agree.
	for range 10 {
		code, ok := CountryOfAddress("Belfast, Northern Ireland, United Kingdom")
		require.True(t, ok)
		assert.Equal(t, "GB", code)
	}

	code, ok := CountryOfAddress("Dublin, Ireland")
	require.True(t, ok)
	assert.Equal(t, "IE", code)
}

func TestPriorCovers(t *testing.T) {
	prior := RegionPrior{Language: "fra", Regions: []string{"FR", "CA", "BE", "CH"}}
	assert.True(t, prior.PriorCovers("FR"))
	assert.False(t, prior.PriorCovers("JP"))
}
