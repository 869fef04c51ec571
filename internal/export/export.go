// Package export renders engine results as JSON, text tables and an ASCII
// world map.
package export

import (
	"encoding/json"
	"io"
	"time"

	"github.com/litescript/ls-astromap/internal/engine"
)

// ResultExport is the JSON-serializable representation of a Result.
type ResultExport struct {
	Time        time.Time      `json:"time"`
	GST         float64        `json:"gst_deg"`
	Apparent    bool           `json:"apparent"`
	Bodies      []BodyExport   `json:"bodies"`
	Lines       []LineExport   `json:"lines"`
	ZenithLines []ZenithExport `json:"zenith_lines"`
	Parans      []ParanExport  `json:"parans"`
	Grid        GridExport     `json:"grid"`
	ElapsedMS   float64        `json:"elapsed_ms"`
}

// BodyExport is a body with its resolved weight.
type BodyExport struct {
	Name   string  `json:"name"`
	RA     float64 `json:"ra_deg"`
	Dec    float64 `json:"dec_deg"`
	Weight float64 `json:"weight"`
}

// PointExport is a geographic point.
type PointExport struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LineExport is one ACG line.
type LineExport struct {
	Body        string        `json:"body"`
	Kind        string        `json:"kind"`
	Circumpolar bool          `json:"circumpolar,omitempty"`
	Points      []PointExport `json:"points"`
}

// ZenithExport is one zenith band.
type ZenithExport struct {
	Body   string      `json:"body"`
	Lat    float64     `json:"lat"`
	Weight float64     `json:"weight"`
	Point  PointExport `json:"sub_point"`
}

// ParanExport is one paran latitude.
type ParanExport struct {
	BodyA      string  `json:"body_a"`
	EventA     string  `json:"event_a"`
	BodyB      string  `json:"body_b"`
	EventB     string  `json:"event_b"`
	Lat        float64 `json:"lat"`
	Strength   float64 `json:"strength"`
	Residual   float64 `json:"residual_deg"`
	LST        float64 `json:"lst_deg"`
	Converged  bool    `json:"converged"`
	Iterations int     `json:"iterations"`
}

// GridExport is the scoring grid, cells ordered by latitude then longitude.
type GridExport struct {
	LatStep  float64      `json:"lat_step"`
	LonStep  float64      `json:"lon_step"`
	LatMin   float64      `json:"lat_min"`
	LatMax   float64      `json:"lat_max"`
	LonMin   float64      `json:"lon_min"`
	LonMax   float64      `json:"lon_max"`
	AcgOrb   float64      `json:"acg_orb"`
	ParanOrb float64      `json:"paran_orb"`
	Sigma    float64      `json:"sigma"`
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Cells    []CellExport `json:"cells"`
}

// CellExport is one scored cell.
type CellExport struct {
	Lat          float64 `json:"lat"`
	Lon          float64 `json:"lon"`
	Score        float64 `json:"score"`
	Zenith       float64 `json:"zenith"`
	Acg          float64 `json:"acg"`
	Paran        float64 `json:"paran"`
	Dominant     string  `json:"dominant"`
	DominantBody string  `json:"dominant_body,omitempty"`
}

// ExportResult converts a Result to an exportable format.
func ExportResult(res *engine.Result) *ResultExport {
	if res == nil {
		return &ResultExport{}
	}

	export := &ResultExport{
		Time:      res.Time,
		GST:       res.GST,
		Apparent:  res.Apparent,
		ElapsedMS: float64(res.Elapsed) / float64(time.Millisecond),
	}

	for _, b := range res.Bodies {
		export.Bodies = append(export.Bodies, BodyExport{
			Name:   b.Name,
			RA:     b.Coord.RAdeg,
			Dec:    b.Coord.DecDeg,
			Weight: res.Weights[b.Name],
		})
	}

	for _, l := range res.Lines {
		le := LineExport{
			Body:        l.Body,
			Kind:        l.Kind.String(),
			Circumpolar: l.IsCircumpolar,
			Points:      make([]PointExport, len(l.Points)),
		}
		for i, p := range l.Points {
			le.Points[i] = PointExport{Lat: p.LatDeg, Lon: p.LonDeg}
		}
		export.Lines = append(export.Lines, le)
	}

	for _, z := range res.ZenithLines {
		export.ZenithLines = append(export.ZenithLines, ZenithExport{
			Body:   z.Body,
			Lat:    z.LatDeg,
			Weight: z.Weight,
			Point:  PointExport{Lat: z.Point.LatDeg, Lon: z.Point.LonDeg},
		})
	}

	for _, p := range res.Parans {
		export.Parans = append(export.Parans, ParanExport{
			BodyA:      p.BodyA,
			EventA:     p.EventA.String(),
			BodyB:      p.BodyB,
			EventB:     p.EventB.String(),
			Lat:        p.LatDeg,
			Strength:   p.Strength,
			Residual:   p.Residual,
			LST:        p.LST,
			Converged:  p.Converged,
			Iterations: p.Iterations,
		})
	}

	o := res.GridOptions
	rows, cols := res.Dims()
	export.Grid = GridExport{
		LatStep:  o.LatStep,
		LonStep:  o.LonStep,
		LatMin:   o.LatMin,
		LatMax:   o.LatMax,
		LonMin:   o.LonMin,
		LonMax:   o.LonMax,
		AcgOrb:   o.AcgOrb,
		ParanOrb: o.ParanOrb,
		Sigma:    o.Sigma,
		Rows:     rows,
		Cols:     cols,
		Cells:    make([]CellExport, len(res.Grid)),
	}
	for i, c := range res.Grid {
		export.Grid.Cells[i] = CellExport{
			Lat:          c.LatDeg,
			Lon:          c.LonDeg,
			Score:        c.Score,
			Zenith:       c.Zenith,
			Acg:          c.Acg,
			Paran:        c.Paran,
			Dominant:     c.Dominant.String(),
			DominantBody: c.DominantBody,
		}
	}

	return export
}

// WriteJSON writes the export as indented JSON to the given writer.
func (e *ResultExport) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}
