// Package polyline implements the encoded polyline algorithm used by OSRM and
// Google services: 5-bit chunks, zig-zag signed deltas, bytes shifted by +63,
// continuation flagged by bit 0x20.
package polyline

import (
	"math"

	"github.com/openwander/wayfind/internal/models"
)

// DefaultPrecision is the number of decimal places encoded per coordinate,
// the standard for OSRM's "polyline" geometry format.
const DefaultPrecision = 5

// Decode decodes an encoded polyline at the default precision of 5.
func Decode(encoded string) []models.Coordinate {
	return DecodeWithPrecision(encoded, DefaultPrecision)
}

// DecodeWithPrecision decodes an encoded polyline into coordinates. The wire
// format is latitude-first; the result is reordered into the longitude-first
// convention used everywhere else in this codebase.
//
// An empty input decodes to an empty sequence. A string truncated mid-value
// loses its last partial coordinate; everything decoded up to that point is
// still returned.
func DecodeWithPrecision(encoded string, precision int) []models.Coordinate {
	if encoded == "" {
		return nil
	}

	factor := math.Pow10(precision)
	coords := make([]models.Coordinate, 0, len(encoded)/4)
	index, lat, lon := 0, 0, 0

	for index < len(encoded) {
		latDelta, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		lonDelta, afterLon, ok := decodeValue(encoded, next)
		if !ok {
			break
		}
		index = afterLon
		lat += latDelta
		lon += lonDelta

		coords = append(coords, models.Coordinate{
			Longitude: float64(lon) / factor,
			Latitude:  float64(lat) / factor,
		})
	}

	return coords
}

// decodeValue decodes one zig-zag varint starting at index. ok is false when
// the string ends before the value's continuation sequence terminates.
func decodeValue(encoded string, index int) (value, next int, ok bool) {
	shift, result := 0, 0

	for {
		if index >= len(encoded) {
			return 0, index, false
		}
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}

	if result&1 != 0 {
		return ^(result >> 1), index, true
	}
	return result >> 1, index, true
}

// Encode encodes coordinates at the default precision of 5.
func Encode(coords []models.Coordinate) string {
	return EncodeWithPrecision(coords, DefaultPrecision)
}

// EncodeWithPrecision encodes coordinates into a polyline string. Input is
// longitude-first; the wire format stores latitude deltas first.
func EncodeWithPrecision(coords []models.Coordinate, precision int) string {
	if len(coords) == 0 {
		return ""
	}

	factor := math.Pow10(precision)
	buf := make([]byte, 0, len(coords)*4)
	prevLat, prevLon := 0, 0

	for _, c := range coords {
		lat := int(math.Round(c.Latitude * factor))
		lon := int(math.Round(c.Longitude * factor))

		buf = encodeValue(buf, lat-prevLat)
		buf = encodeValue(buf, lon-prevLon)

		prevLat = lat
		prevLon = lon
	}

	return string(buf)
}

func encodeValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}
