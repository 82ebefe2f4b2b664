package models

import "github.com/skypies/geo"

// Source column headers, after whitespace trimming.
const (
	ColLoadPort  = "load_port"
	ColLatFrom   = "lat_from"
	ColLonFrom   = "lon_from"
	ColDischPort = "disch_port"
	ColLatTo     = "lat_to"
	ColLonTo     = "lon_to"
	ColCommodity = "commodity_name"
	ColIntake    = "voy_intake, tones"
)

// RequiredColumns must all be present in the source sheet.
var RequiredColumns = []string{
	ColLoadPort, ColLatFrom, ColLonFrom,
	ColDischPort, ColLatTo, ColLonTo,
	ColCommodity, ColIntake,
}

// FilterColumns are the categorical columns users can filter and group by.
var FilterColumns = []string{ColLoadPort, ColDischPort, ColCommodity}

// OtherLabel names the bucket that collects the long tail of an aggregate.
const OtherLabel = "Other"

type Port struct {
	Name string
	Pos  geo.Latlong
}

// Voyage is one shipment: origin, destination, commodity and intake in tonnes.
type Voyage struct {
	LoadPort  Port
	DischPort Port
	Commodity string
	Intake    float64
}

// Category returns the voyage's value for a categorical column.
func (v Voyage) Category(column string) (string, bool) {
	switch column {
	case ColLoadPort:
		return v.LoadPort.Name, true
	case ColDischPort:
		return v.DischPort.Name, true
	case ColCommodity:
		return v.Commodity, true
	}
	return "", false
}

// VoyageRow is the JSON shape of a voyage.
type VoyageRow struct {
	LoadPort  string  `json:"load_port"`
	LatFrom   float64 `json:"lat_from"`
	LonFrom   float64 `json:"lon_from"`
	DischPort string  `json:"disch_port"`
	LatTo     float64 `json:"lat_to"`
	LonTo     float64 `json:"lon_to"`
	Commodity string  `json:"commodity_name"`
	Intake    float64 `json:"voy_intake"`
}

func (v Voyage) Row() VoyageRow {
	return VoyageRow{
		LoadPort:  v.LoadPort.Name,
		LatFrom:   v.LoadPort.Pos.Lat,
		LonFrom:   v.LoadPort.Pos.Long,
		DischPort: v.DischPort.Name,
		LatTo:     v.DischPort.Pos.Lat,
		LonTo:     v.DischPort.Pos.Long,
		Commodity: v.Commodity,
		Intake:    v.Intake,
	}
}

// AggregateItem is one line of an aggregate table.
type AggregateItem struct {
	Label   string  `json:"label"`
	Intake  float64 `json:"intake"`
	Voyages int     `json:"voyages"`
	Other   bool    `json:"other,omitempty"`
}

// SeriesPoint is one point of a bar or line chart.
type SeriesPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type DashboardData struct {
	Voyages     int                        `json:"voyages"`
	TotalIntake float64                    `json:"total_intake"`
	LoadPorts   int                        `json:"load_ports"`
	DischPorts  int                        `json:"disch_ports"`
	Commodities int                        `json:"commodities"`
	Breakdown   map[string][]AggregateItem `json:"breakdown"`
}
