package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWordOverlapSimilarity(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical", a: "patient reports chest pain", b: "patient reports chest pain", want: 1.0},
		{name: "restatement with extra word", a: "Patient reports severe chest pain today", b: "The patient reports severe chest pain", want: 5.0 / 6.0},
		{name: "disjoint", a: "blood pressure stable", b: "ordered a chest x-ray", want: 0.0},
		{name: "case and punctuation ignored", a: "Chest pain.", b: "chest pain", want: 1.0},
		{name: "empty left", a: "", b: "chest pain", want: 0.0},
		{name: "both empty", a: "", b: "", want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, WordOverlapSimilarity(tt.a, tt.b), 1e-9)
			assert.InDelta(t, tt.want, WordOverlapSimilarity(tt.b, tt.a), 1e-9, "must be symmetric")
		})
	}
}

func TestWordOverlapSimilarity_ShortRestatementOfLonger(t *testing.T) {
	longer := "the patient has been complaining of severe chest pain since morning"
	shorter := "severe chest pain"

	got := WordOverlapSimilarity(longer, shorter)
	assert.GreaterOrEqual(t, got, 0.8, "short restatement must register as a duplicate")
}
