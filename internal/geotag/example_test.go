package geotag_test

import (
	"fmt"

	"imgintel/internal/geotag"
)

// Example resolves the GPS tags of a photo taken in Pittsburgh.
func Example() {
	fix := geotag.Resolve(geotag.Input{
		Latitude:     geotag.Triple(geotag.DMS(40, 26, 46)),
		LatitudeRef:  geotag.Ref("N"),
		Longitude:    geotag.Triple(geotag.DMS(79, 56, 55)),
		LongitudeRef: geotag.Ref("W"),
	})

	if lat, lon, ok := fix.LatLon(); ok {
		fmt.Printf("%.7f, %.7f\n", lat, lon)
	}
	// Output: 40.4461111, -79.9486111
}

// ExampleResolve_absent shows that a missing reference tag drops the whole fix.
func ExampleResolve_absent() {
	fix := geotag.Resolve(geotag.Input{
		Latitude:  geotag.Triple(geotag.DMS(40, 26, 46)),
		Longitude: geotag.Triple(geotag.DMS(79, 56, 55)),
	})

	fmt.Println(fix.Present(), fix)
	// Output: false absent
}
