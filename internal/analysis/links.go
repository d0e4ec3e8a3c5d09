package analysis

import (
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/uber/h3-go/v4"

	"imgintel/internal/geotag"
)

const mapsBaseURL = "https://www.google.com/maps?q="

// SearchLink is an outbound link to a reverse image search engine.
type SearchLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

var searchLinks = []SearchLink{
	{Name: "Google Lens", URL: "https://lens.google.com/"},
	{Name: "TinEye", URL: "https://tineye.com/"},
	{Name: "Bing Images", URL: "https://www.bing.com/images/trending"},
}

// SearchLinks returns the reverse image search engines offered with every report.
func SearchLinks() []SearchLink {
	out := make([]SearchLink, len(searchLinks))
	copy(out, searchLinks)
	return out
}

// MapURL returns the map link for a fix, or "" when it is absent.
func MapURL(fix geotag.GeoFix) string {
	lat, lon, ok := fix.LatLon()
	if !ok {
		return ""
	}
	return mapsBaseURL + formatCoord(lat) + "," + formatCoord(lon)
}

// H3Cell returns the hex H3 index containing the fix at the given resolution.
func H3Cell(fix geotag.GeoFix, resolution int) (string, error) {
	lat, lon, ok := fix.LatLon()
	if !ok {
		return "", nil
	}
	cell, err := h3.LatLngToCell(h3.NewLatLng(lat, lon), resolution)
	if err != nil {
		return "", err
	}
	return cell.String(), nil
}

// Feature returns the report location as a GeoJSON point, or nil when the
// image has no GPS fix.
func (r *Report) Feature() *geojson.Feature {
	if r.Location == nil {
		return nil
	}

	f := geojson.NewFeature(orb.Point{r.Location.Longitude, r.Location.Latitude})
	f.Properties["file"] = r.File
	f.Properties["map_url"] = r.Location.MapURL
	if r.Location.H3Cell != "" {
		f.Properties["h3_cell"] = r.Location.H3Cell
	}
	return f
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
