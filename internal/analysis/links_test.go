package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imgintel/internal/geotag"
)

func TestMapURL(t *testing.T) {
	fix := geotag.Resolve(geotag.Input{
		Latitude:     geotag.Triple(geotag.DMS(10, 30, 0)),
		LatitudeRef:  geotag.Ref("S"),
		Longitude:    geotag.Triple(geotag.DMS(20, 15, 0)),
		LongitudeRef: geotag.Ref("E"),
	})

	assert.Equal(t, "https://www.google.com/maps?q=-10.5,20.25", MapURL(fix))
	assert.Empty(t, MapURL(geotag.Absent()))
}

func TestH3CellAbsent(t *testing.T) {
	cell, err := H3Cell(geotag.Absent(), 9)
	require.NoError(t, err)
	assert.Empty(t, cell)
}

func TestSearchLinksAreStatic(t *testing.T) {
	links := SearchLinks()
	require.Len(t, links, 3)
	assert.Equal(t, "https://tineye.com/", links[1].URL)

	links[0].URL = "mutated"
	assert.Equal(t, "https://lens.google.com/", SearchLinks()[0].URL)
}
