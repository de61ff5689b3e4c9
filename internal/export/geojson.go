// Package export renders planned routes into interchange formats so they can
// be opened in external map tooling.
package export

import (
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/openwander/wayfind/internal/models"
)

const fileMode = 0o644

// GeoJSON renders a saved route as a GeoJSON FeatureCollection: one
// LineString feature carrying the route path and summary properties, plus a
// Point feature per waypoint.
func GeoJSON(saved *models.SavedRoute) ([]byte, error) {
	collection := geojson.NewFeatureCollection()

	line := make(orb.LineString, 0, len(saved.Route.Coordinates))
	for _, coord := range saved.Route.Coordinates {
		line = append(line, orb.Point{coord.Longitude, coord.Latitude})
	}

	routeFeature := geojson.NewFeature(line)
	routeFeature.Properties = geojson.Properties{
		"name":        saved.Name,
		"city":        saved.City,
		"profile":     string(saved.Profile),
		"profileName": saved.Profile.DisplayName(),
		"distance":    saved.Route.Distance,
		"duration":    saved.Route.Duration,
	}
	collection.Append(routeFeature)

	for idx, waypoint := range saved.Waypoints {
		point := geojson.NewFeature(orb.Point{
			waypoint.Coordinate.Longitude,
			waypoint.Coordinate.Latitude,
		})
		point.Properties = geojson.Properties{
			"order":   idx,
			"address": waypoint.Name,
		}
		collection.Append(point)
	}

	data, err := collection.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feature collection: %w", err)
	}

	return data, nil
}

// WriteGeoJSON renders a saved route as GeoJSON and writes it to path.
func WriteGeoJSON(path string, saved *models.SavedRoute) error {
	data, err := GeoJSON(saved)
	if err != nil {
		return err
	}

	if err = os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("failed to write geojson file: %w", err)
	}

	return nil
}
