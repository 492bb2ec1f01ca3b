package models

import (
	"errors"
	"math"
	"testing"
)

func TestNewDatasetRejects(t *testing.T) {
	tests := []struct {
		name   string
		series []Series
		want   error
	}{
		{"no series", nil, ErrNoSeries},
		{"empty name", []Series{{Name: "A", Values: []float64{1}}, {Name: "", Values: []float64{2}}}, ErrUnnamedSeries},
		{"blank name", []Series{{Name: "  ", Values: []float64{1}}}, ErrUnnamedSeries},
		{"NaN", []Series{{Name: "A", Values: []float64{math.NaN()}}}, ErrNonFiniteValue},
		{"infinite", []Series{{Name: "A", Values: []float64{math.Inf(-1)}}}, ErrNonFiniteValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDataset("Year", []string{"2020"}, tt.series); !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNewDatasetShapeError(t *testing.T) {
	_, err := NewDataset("Year", []string{"2020", "2021"}, []Series{{Name: "Coal", Values: []float64{1}}})
	var shape *DatasetShapeError
	if !errors.As(err, &shape) || shape.Series != "Coal" || shape.Expected != 2 || shape.Actual != 1 {
		t.Errorf("err = %v, want shape error for Coal", err)
	}

	_, err = NewDataset("Year", []string{"2020"}, []Series{{Name: "Coal", Values: []float64{1}}}, WithCategoryColors("red", "blue"))
	if !errors.As(err, &shape) || shape.Series != "category colors" {
		t.Errorf("err = %v, want category colors shape error", err)
	}
}

func TestNewDatasetKeepsNamesVerbatim(t *testing.T) {
	ds, err := NewDataset("", nil, []Series{{Name: " Coal "}})
	if err != nil {
		t.Fatal(err)
	}
	if ds.CategoryLabel() != DefaultCategoryLabel || ds.Len() != 0 {
		t.Errorf("label = %q, len = %d", ds.CategoryLabel(), ds.Len())
	}
	if _, ok := ds.Column(" Coal "); !ok {
		t.Error("padded series name was rewritten")
	}
}
