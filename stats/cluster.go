package stats

import (
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"

	"publicpulse/models"
)

type clusterUnit struct {
	cnt      int64
	origCell s2.CellID
}

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

// clusterLevel picks the S2 cell level that yields roughly expectedCells
// clusters over the bounding box of the located records.
func clusterLevel(records []models.Complaint) int {
	latLo, latHi := 90.0, -90.0
	lngLo, lngHi := 180.0, -180.0
	var center s2.LatLng
	located := 0
	for _, c := range records {
		if c.Latitude == 0 && c.Longitude == 0 {
			continue
		}
		if c.Latitude < latLo {
			latLo = c.Latitude
		}
		if c.Latitude > latHi {
			latHi = c.Latitude
		}
		if c.Longitude < lngLo {
			lngLo = c.Longitude
		}
		if c.Longitude > lngHi {
			lngHi = c.Longitude
		}
		center = s2.LatLngFromDegrees(c.Latitude, c.Longitude)
		located++
	}
	if located == 0 {
		return minLevel
	}

	minLL := s2.LatLngFromDegrees(latLo, lngLo)
	maxLL := s2.LatLngFromDegrees(latHi, lngHi)
	rect := s2.Rect{
		Lat: r1.Interval{Lo: minLL.Lat.Radians(), Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{Lo: minLL.Lng.Radians(), Hi: maxLL.Lng.Radians()},
	}
	boxArea := rect.Area()

	centerCell := s2.CellIDFromLatLng(center)
	for lv := maxLevel; lv >= minLevel; lv-- {
		cc := s2.CellFromCellID(centerCell.Parent(lv))
		if boxArea/cc.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

// clusterLocations buckets located complaints into S2 cells for the analytics
// map. A single-record cell reports the record's own position instead of the
// cell center.
func clusterLocations(records []models.Complaint) []models.MapCluster {
	level := clusterLevel(records)
	units := make(map[s2.CellID]*clusterUnit)

	for _, c := range records {
		if c.Latitude == 0 && c.Longitude == 0 {
			continue
		}
		pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(c.Latitude, c.Longitude))
		parent := pc.Parent(level)
		if _, ok := units[parent]; !ok {
			units[parent] = &clusterUnit{}
		}
		units[parent].cnt += 1
		units[parent].origCell = pc
	}

	out := make([]models.MapCluster, 0, len(units))
	for cell, unit := range units {
		ll := cell.LatLng()
		if unit.cnt == 1 {
			ll = unit.origCell.LatLng()
		}
		out = append(out, models.MapCluster{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.cnt,
		})
	}
	return out
}
