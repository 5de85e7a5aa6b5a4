package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	Meta    RunMetadata `json:"meta"`
	Steps   int         `json:"steps"`
	Times   []float64   `json:"times"`
	A1      []float64   `json:"a1"`
	A2      []float64   `json:"a2"`
	Kinetic []float64   `json:"kinetic"`
	Total   []float64   `json:"total"`
	Chaos   []float64   `json:"chaos,omitempty"`
}

// ExportJSON writes a run as column arrays. Chaos is omitted for
// single-pendulum runs since JSON cannot carry NaN.
func ExportJSON(w io.Writer, meta RunMetadata, samples []Sample) error {
	data := ExportData{
		Meta:    meta,
		Steps:   len(samples),
		Times:   make([]float64, len(samples)),
		A1:      make([]float64, len(samples)),
		A2:      make([]float64, len(samples)),
		Kinetic: make([]float64, len(samples)),
		Total:   make([]float64, len(samples)),
	}

	if meta.Size > 1 {
		data.Chaos = make([]float64, len(samples))
	}

	for i, s := range samples {
		data.Times[i] = s.Time
		data.A1[i] = s.A1
		data.A2[i] = s.A2
		data.Kinetic[i] = s.Kinetic
		data.Total[i] = s.Total()
		if data.Chaos != nil {
			data.Chaos[i] = s.Chaos
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
