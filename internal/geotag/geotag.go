// Package geotag resolves EXIF GPS tag values into a signed decimal-degree fix.
//
// EXIF stores latitude and longitude as three unsigned rationals (degrees,
// minutes, seconds) plus a one-character hemisphere reference. Resolve turns
// those four values into a GeoFix, which is either a complete coordinate pair
// or Absent. Missing tags, zero denominators and any other malformed input
// all degrade to Absent; Resolve never returns an error and never panics.
//
// The resolver works on an already-parsed Input. Reading tags out of an image
// container is the job of the metadata adapter (see internal/exifmeta).
package geotag

import "fmt"

// Rational is an EXIF RATIONAL: two unsigned 32-bit integers.
type Rational struct {
	Num uint32
	Den uint32
}

// R is shorthand for Rational{Num: num, Den: den}.
func R(num, den uint32) Rational {
	return Rational{Num: num, Den: den}
}

// Float64 returns num/den. It reports false when the denominator is zero.
func (r Rational) Float64() (float64, bool) {
	if r.Den == 0 {
		return 0, false
	}
	return float64(r.Num) / float64(r.Den), true
}

func (r Rational) String() string {
	return fmt.Sprintf("%d/%d", r.Num, r.Den)
}

// RationalTriple holds degrees, minutes and seconds, in that order.
type RationalTriple [3]Rational

// DMS builds a triple from whole degrees, minutes and seconds.
func DMS(d, m, s uint32) RationalTriple {
	return RationalTriple{R(d, 1), R(m, 1), R(s, 1)}
}

// Degrees converts the triple to decimal degrees as d + m/60 + s/3600.
// It reports false if any component has a zero denominator.
func (t RationalTriple) Degrees() (float64, bool) {
	d, ok := t[0].Float64()
	if !ok {
		return 0, false
	}
	m, ok := t[1].Float64()
	if !ok {
		return 0, false
	}
	s, ok := t[2].Float64()
	if !ok {
		return 0, false
	}
	return d + m/60.0 + s/3600.0, true
}

// HemisphereRef is the raw reference value of a GPSLatitudeRef or
// GPSLongitudeRef tag. Values other than the four constants are kept as read.
type HemisphereRef string

const (
	North HemisphereRef = "N"
	South HemisphereRef = "S"
	East  HemisphereRef = "E"
	West  HemisphereRef = "W"
)

// Ref returns a pointer to a HemisphereRef, for filling Input literals.
func Ref(v string) *HemisphereRef {
	r := HemisphereRef(v)
	return &r
}

// Triple returns a pointer to t, for filling Input literals.
func Triple(t RationalTriple) *RationalTriple {
	return &t
}

// Input is the set of GPS tags the resolver consumes. A nil field means the
// tag was not present in the source metadata.
type Input struct {
	Latitude     *RationalTriple
	LatitudeRef  *HemisphereRef
	Longitude    *RationalTriple
	LongitudeRef *HemisphereRef
}

// GeoFix is a resolved coordinate pair or the Absent marker.
type GeoFix struct {
	lat, lon float64
	present  bool
}

// Absent returns the fix that carries no coordinates.
func Absent() GeoFix {
	return GeoFix{}
}

// Present reports whether the fix has coordinates.
func (f GeoFix) Present() bool {
	return f.present
}

// LatLon returns the coordinates and whether they are present. Both values
// are zero when the fix is Absent.
func (f GeoFix) LatLon() (lat, lon float64, ok bool) {
	return f.lat, f.lon, f.present
}

func (f GeoFix) String() string {
	if !f.present {
		return "absent"
	}
	return fmt.Sprintf("%v,%v", f.lat, f.lon)
}

// Resolve computes a signed decimal-degree fix from in.
//
// All four inputs must be present and both triples must convert, otherwise the
// result is Absent. Latitude keeps its sign only for an exact "N" reference and
// longitude only for an exact "E"; any other reference value, including empty
// or lowercase, negates the coordinate. Results are not range-checked.
func Resolve(in Input) GeoFix {
	if in.Latitude == nil || in.LatitudeRef == nil || in.Longitude == nil || in.LongitudeRef == nil {
		return Absent()
	}

	lat, ok := in.Latitude.Degrees()
	if !ok {
		return Absent()
	}
	lon, ok := in.Longitude.Degrees()
	if !ok {
		return Absent()
	}

	// Unrecognized references count as the negative hemisphere.
	if *in.LatitudeRef != North {
		lat = -lat
	}
	if *in.LongitudeRef != East {
		lon = -lon
	}

	return GeoFix{lat: lat, lon: lon, present: true}
}
