package export

import (
	"fmt"

	"github.com/couchcryptid/quake-data-viewer/internal/domain"
	"github.com/paulmach/orb/geojson"
)

// WriteGeoJSON renders the table as a FeatureCollection of points so the
// records can be dropped onto a map.
func WriteGeoJSON(table domain.Table) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, r := range table {
		f := geojson.NewFeature(r.Point())
		f.Properties["mag"] = r.Magnitude
		f.Properties["place"] = r.Location
		f.Properties["time"] = r.Time
		f.Properties["tier"] = r.Tier().String()
		fc.Append(f)
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal geojson: %w", err)
	}
	return data, nil
}
