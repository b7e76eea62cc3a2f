package intel

import "strings"

// countryCoords maps ISO country codes to approximate centroid coordinates
// so IP lookups can always be placed on the globe without a geo database.
var countryCoords = map[string][2]float64{
	"IN": {20.5937, 78.9629},
	"US": {37.0902, -95.7129},
	"GB": {55.3781, -3.4360},
	"DE": {51.1657, 10.4515},
	"FR": {46.2276, 2.2137},
	"JP": {36.2048, 138.2529},
	"CN": {35.8617, 104.1954},
	"BR": {-14.2350, -51.9253},
	"RU": {61.5240, 105.3188},
	"AU": {-25.2744, 133.7751},
	"CA": {56.1304, -106.3468},
	"SG": {1.3521, 103.8198},
	"NL": {52.1326, 5.2913},
	"ES": {40.4637, -3.7492},
	"IT": {41.8719, 12.5674},
	"ZA": {-30.5595, 22.9375},
}

// CountryCoords projects a country code onto approximate coordinates.
// Matching is case-insensitive. An unknown or empty code returns ok=false,
// meaning "cannot place on map", never an error.
func CountryCoords(code string) (lat, lon float64, ok bool) {
	if code == "" {
		return 0, 0, false
	}
	coords, found := countryCoords[strings.ToUpper(code)]
	if !found {
		return 0, 0, false
	}
	return coords[0], coords[1], true
}
