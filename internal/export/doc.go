// Package export writes static pictures of an experiment: a PNG chart of
// the separation between the two runs (go-chart) and an SVG phase
// projection (gonum/plot with the vgsvg backend).
package export
