package mapview

import (
	geojson "github.com/paulmach/go.geojson"
)

// Feature kinds, stored in the "kind" property.
const (
	KindMarker    = "marker"
	KindRoute     = "route"
	KindArrowhead = "arrowhead"
)

// FeatureCollection converts the shapes into GeoJSON. Markers come first,
// then for each route its line followed by its arrowhead.
func (ms *MapShapes) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()

	for _, m := range ms.Markers {
		f := geojson.NewPointFeature([]float64{m.Pos.Long, m.Pos.Lat})
		f.SetProperty("kind", KindMarker)
		f.SetProperty("name", m.Label)
		f.SetProperty("roles", m.Roles)
		f.SetProperty("popup", m.Popup)
		f.SetProperty("radius", MarkerRadius)
		f.SetProperty("fill-opacity", MarkerOpacity)
		fc.AddFeature(f)
	}

	for i, r := range ms.Routes {
		line := geojson.NewLineStringFeature([][]float64{
			{r.From.Long, r.From.Lat},
			{r.To.Long, r.To.Lat},
		})
		line.SetProperty("kind", KindRoute)
		line.SetProperty("route", i)
		line.SetProperty("from", r.FromLabel)
		line.SetProperty("to", r.ToLabel)
		line.SetProperty("commodity", r.Commodity)
		line.SetProperty("intake", r.Intake)
		line.SetProperty("distance_km", r.DistanceKM)
		line.SetProperty("stroke", RouteColor)
		line.SetProperty("stroke-width", RouteWeight)
		fc.AddFeature(line)

		arrow := geojson.NewPointFeature([]float64{r.To.Long, r.To.Lat})
		arrow.SetProperty("kind", KindArrowhead)
		arrow.SetProperty("route", i)
		arrow.SetProperty("bearing", r.Bearing)
		arrow.SetProperty("sides", ArrowSides)
		arrow.SetProperty("radius", ArrowRadius)
		arrow.SetProperty("fill", RouteColor)
		fc.AddFeature(arrow)
	}
	return fc
}

// GeoJSON encodes the shapes as a GeoJSON FeatureCollection document.
func (ms *MapShapes) GeoJSON() ([]byte, error) {
	return ms.FeatureCollection().MarshalJSON()
}
