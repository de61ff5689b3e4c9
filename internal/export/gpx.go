package export

import (
	"encoding/xml"
	"fmt"
	"os"

	"github.com/openwander/wayfind/internal/models"
)

// gpxFile is the root element of a GPX 1.1 document.
type gpxFile struct {
	XMLName   xml.Name      `xml:"gpx"`
	Version   string        `xml:"version,attr"`
	Creator   string        `xml:"creator,attr"`
	Namespace string        `xml:"xmlns,attr"`
	Waypoints []gpxWaypoint `xml:"wpt"`
	Track     gpxTrack      `xml:"trk"`
}

type gpxWaypoint struct {
	Lat  float64 `xml:"lat,attr"`
	Lon  float64 `xml:"lon,attr"`
	Name string  `xml:"name,omitempty"`
}

type gpxTrack struct {
	Name    string     `xml:"name,omitempty"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// GPX renders a saved route as a GPX 1.1 document with one track and a
// waypoint per stop.
func GPX(saved *models.SavedRoute) ([]byte, error) {
	doc := gpxFile{
		Version:   "1.1",
		Creator:   "wayfind",
		Namespace: "http://www.topografix.com/GPX/1/1",
		Track:     gpxTrack{Name: saved.Name},
	}

	for _, waypoint := range saved.Waypoints {
		doc.Waypoints = append(doc.Waypoints, gpxWaypoint{
			Lat:  waypoint.Coordinate.Latitude,
			Lon:  waypoint.Coordinate.Longitude,
			Name: waypoint.Name,
		})
	}

	for _, coord := range saved.Route.Coordinates {
		doc.Track.Segment.Points = append(doc.Track.Segment.Points, gpxPoint{
			Lat: coord.Latitude,
			Lon: coord.Longitude,
		})
	}

	data, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal gpx document: %w", err)
	}

	return append([]byte(xml.Header), data...), nil
}

// WriteGPX renders a saved route as GPX and writes it to path.
func WriteGPX(path string, saved *models.SavedRoute) error {
	data, err := GPX(saved)
	if err != nil {
		return err
	}

	if err = os.WriteFile(path, data, fileMode); err != nil {
		return fmt.Errorf("failed to write gpx file: %w", err)
	}

	return nil
}
