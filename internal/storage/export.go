package storage

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"

	"github.com/san-kum/lorenz/internal/dynamo"
	"github.com/san-kum/lorenz/internal/experiment"
)

// Series is one trajectory in column form.
type Series struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
	Z []float64 `json:"z"`
}

type ExportData struct {
	RunMetadata
	Times     []float64 `json:"times"`
	Base      Series    `json:"base"`
	Perturbed Series    `json:"perturbed_run"`
}

func seriesOf(tr *dynamo.Trajectory) Series {
	return Series{X: tr.X, Y: tr.Y, Z: tr.Z}
}

// ExportJSON writes the full experiment, metadata and both trajectories, as
// one indented JSON document.
func ExportJSON(w io.Writer, res *experiment.Result) error {
	data := ExportData{
		RunMetadata: metadataOf(res),
		Times:       res.Base.T,
		Base:        seriesOf(res.Base),
		Perturbed:   seriesOf(res.Pert),
	}
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// DecodeExport reads a document written by ExportJSON.
func DecodeExport(r io.Reader) (*ExportData, error) {
	var data ExportData
	if err := sonic.ConfigStd.NewDecoder(r).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Trajectories rebuilds the two runs of a decoded export. Every column must
// have one value per entry of Times.
func (d *ExportData) Trajectories() (*dynamo.Trajectory, *dynamo.Trajectory, error) {
	n := len(d.Times)
	for _, col := range [][]float64{d.Base.X, d.Base.Y, d.Base.Z, d.Perturbed.X, d.Perturbed.Y, d.Perturbed.Z} {
		if len(col) != n {
			return nil, nil, fmt.Errorf("%w: column has %d values for %d times", dynamo.ErrLengthMismatch, len(col), n)
		}
	}
	build := func(s Series) *dynamo.Trajectory {
		tr := dynamo.NewTrajectory(n)
		copy(tr.T, d.Times)
		copy(tr.X, s.X)
		copy(tr.Y, s.Y)
		copy(tr.Z, s.Z)
		return tr
	}
	return build(d.Base), build(d.Perturbed), nil
}
