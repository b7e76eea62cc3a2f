package intel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountryCoordsKnownCode(t *testing.T) {
	lat, lon, ok := CountryCoords("US")
	assert.True(t, ok)
	assert.InDelta(t, 37.0902, lat, 0.001)
	assert.InDelta(t, -95.7129, lon, 0.001)
}

func TestCountryCoordsCaseInsensitive(t *testing.T) {
	lat, lon, ok := CountryCoords("sg")
	assert.True(t, ok)
	assert.InDelta(t, 1.3521, lat, 0.001)
	assert.InDelta(t, 103.8198, lon, 0.001)
}

func TestCountryCoordsUnknownOrEmpty(t *testing.T) {
	_, _, ok := CountryCoords("ZZ")
	assert.False(t, ok)

	_, _, ok = CountryCoords("")
	assert.False(t, ok)
}
