// Package mapview turns a filtered voyage view into map shapes: one marker
// per distinct port, one directed route per voyage.
package mapview

import (
	"fmt"
	"html"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"cargodash/internal/engine"
	"cargodash/internal/models"

	"github.com/skypies/geo"
)

// Styling of the routes drawn between ports.
const (
	RouteColor    = "darkblue"
	RouteWeight   = 2
	ArrowSides    = 3
	ArrowRadius   = 10
	MarkerRadius  = 10
	MarkerOpacity = 0.7
)

// Marker roles.
const (
	RoleLoad      = "load"
	RoleDischarge = "discharge"
)

type Marker struct {
	Label string
	Pos   geo.Latlong
	Roles []string
	Popup string
}

func (m *Marker) addRole(role string) {
	for _, r := range m.Roles {
		if r == role {
			return
		}
	}
	m.Roles = append(m.Roles, role)
}

// Route is a directed line from a load port to a discharge port.
type Route struct {
	From, To   geo.Latlong
	FromLabel  string
	ToLabel    string
	Commodity  string
	Intake     float64
	DistanceKM float64
	Bearing    float64 // degrees clockwise from north, at the destination
}

// MapShapes is everything to draw on the map.
type MapShapes struct {
	Markers []*Marker
	Routes  []Route
}

type markerKey struct {
	lat, lon float64
	label    string
}

// Build collects markers and routes for every voyage in the view. Markers are
// de-duplicated on (coordinate, label) in first-seen order.
func Build(view engine.View) *MapShapes {
	ms := &MapShapes{
		Markers: []*Marker{},
		Routes:  make([]Route, 0, view.Len()),
	}
	seen := make(map[markerKey]*Marker)

	addMarker := func(p models.Port, role string) {
		key := markerKey{p.Pos.Lat, p.Pos.Long, p.Name}
		m, ok := seen[key]
		if !ok {
			m = &Marker{Label: p.Name, Pos: p.Pos, Popup: Popup(p.Name)}
			seen[key] = m
			ms.Markers = append(ms.Markers, m)
		}
		m.addRole(role)
	}

	for i := 0; i < view.Len(); i++ {
		v := view.Voyage(i)
		addMarker(v.LoadPort, RoleLoad)
		addMarker(v.DischPort, RoleDischarge)

		ms.Routes = append(ms.Routes, Route{
			From:       v.LoadPort.Pos,
			To:         v.DischPort.Pos,
			FromLabel:  v.LoadPort.Name,
			ToLabel:    v.DischPort.Name,
			Commodity:  v.Commodity,
			Intake:     v.Intake,
			DistanceKM: v.LoadPort.Pos.DistKM(v.DischPort.Pos),
			Bearing:    arrivalBearing(v.LoadPort.Pos, v.DischPort.Pos),
		})
	}
	return ms
}

// Popup is the HTML shown when a marker is clicked.
func Popup(name string) string {
	return fmt.Sprintf("<strong>name</strong>: %s<br>", html.EscapeString(Capitalize(name)))
}

// Capitalize upper-cases the first letter and lower-cases the rest.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

// arrivalBearing is the great-circle course at the destination end of the
// route, so an arrowhead drawn there points along the line.
func arrivalBearing(from, to geo.Latlong) float64 {
	if from.ExactlyEqual(to) {
		return 0
	}
	return math.Mod(to.BearingTowards(from)+180, 360)
}
