package engine

import (
	"math"
	"math/rand"
	"testing"
)

const eps = 1e-9

func almostEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestFuse_ThreeAgreeingSources(t *testing.T) {
	samples := []Sample{
		{Source: "understat", Weight: 1.0, Values: []float64{1.5, 1.0}},
		{Source: "fbref", Weight: 1.0, Values: []float64{1.6, 0.9}},
		{Source: "sofascore", Weight: 1.0, Values: []float64{1.4, 1.1}},
	}

	fused, ok := Fuse(2, samples)
	if !ok {
		t.Fatal("expected fusion to succeed")
	}
	if !almostEqual(fused.Values[0], 1.5, eps) || !almostEqual(fused.Values[1], 1.0, eps) {
		t.Errorf("fused values = (%v, %v), want (1.5, 1.0)", fused.Values[0], fused.Values[1])
	}
	if fused.SourceCount != 3 {
		t.Errorf("source count = %d, want 3", fused.SourceCount)
	}
	if fused.Confidence <= 0.7 {
		t.Errorf("confidence = %v, want > 0.7 for three agreeing sources", fused.Confidence)
	}
	if fused.Confidence > 1 {
		t.Errorf("confidence = %v exceeds 1", fused.Confidence)
	}
}

func TestFuse_SingleSourceConfidenceCapped(t *testing.T) {
	fused, ok := Fuse(2, []Sample{
		{Source: "understat", Weight: 1.0, Values: []float64{2.0, 0.5}},
	})
	if !ok {
		t.Fatal("expected fusion to succeed")
	}
	if !almostEqual(fused.Values[0], 2.0, eps) || !almostEqual(fused.Values[1], 0.5, eps) {
		t.Errorf("fused values = (%v, %v), want (2.0, 0.5)", fused.Values[0], fused.Values[1])
	}
	want := 0.7 / 3
	if !almostEqual(fused.Confidence, want, 1e-6) {
		t.Errorf("confidence = %v, want %v", fused.Confidence, want)
	}
}

func TestFuse_OrderIndependent(t *testing.T) {
	samples := []Sample{
		{Source: "a", Weight: 1.0, Values: []float64{1.2, 0.8}},
		{Source: "b", Weight: 0.9, Values: []float64{1.7, 1.1}},
		{Source: "c", Weight: 0.7, Values: []float64{1.4, 0.6}},
		{Source: "d", Weight: 0.5, Values: []float64{2.0, 1.3}},
	}

	base, ok := Fuse(2, samples)
	if !ok {
		t.Fatal("expected fusion to succeed")
	}

	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 20; i++ {
		shuffled := make([]Sample, len(samples))
		copy(shuffled, samples)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, ok := Fuse(2, shuffled)
		if !ok {
			t.Fatal("expected fusion to succeed")
		}
		for j := range base.Values {
			if !almostEqual(got.Values[j], base.Values[j], eps) {
				t.Fatalf("permutation changed fused value[%d]: %v != %v", j, got.Values[j], base.Values[j])
			}
		}
		if !almostEqual(got.Confidence, base.Confidence, eps) {
			t.Fatalf("permutation changed confidence: %v != %v", got.Confidence, base.Confidence)
		}
	}
}

func TestFuse_ValueWithinInputBounds(t *testing.T) {
	samples := []Sample{
		{Source: "a", Weight: 0.3, Values: []float64{0.4}},
		{Source: "b", Weight: 1.0, Values: []float64{2.9}},
		{Source: "c", Weight: 0.6, Values: []float64{1.1}},
	}

	fused, ok := Fuse(1, samples)
	if !ok {
		t.Fatal("expected fusion to succeed")
	}
	if fused.Values[0] < 0.4 || fused.Values[0] > 2.9 {
		t.Errorf("fused value %v outside input bounds [0.4, 2.9]", fused.Values[0])
	}
}

func TestFuse_ConfidenceMonotonicInSourceCount(t *testing.T) {
	// Identical values, equal weights: confidence must strictly grow 1 -> 2 -> 3.
	mk := func(n int) []Sample {
		samples := make([]Sample, n)
		for i := range samples {
			samples[i] = Sample{Source: string(rune('a' + i)), Weight: 1.0, Values: []float64{1.5, 1.0}}
		}
		return samples
	}

	var prev float64 = -1
	for n := 1; n <= 3; n++ {
		fused, ok := Fuse(2, mk(n))
		if !ok {
			t.Fatalf("fusion with %d sources failed", n)
		}
		if fused.Confidence <= prev {
			t.Errorf("confidence not increasing: %d sources -> %v, previous %v", n, fused.Confidence, prev)
		}
		prev = fused.Confidence
	}
}

func TestFuse_MismatchedSeriesExcluded(t *testing.T) {
	fused, ok := Fuse(2, []Sample{
		{Source: "good", Weight: 1.0, Values: []float64{1.0, 2.0}},
		{Source: "short", Weight: 1.0, Values: []float64{9.0}},
		{Source: "zero-weight", Weight: 0, Values: []float64{9.0, 9.0}},
	})
	if !ok {
		t.Fatal("expected fusion to succeed")
	}
	if fused.SourceCount != 1 {
		t.Errorf("source count = %d, want 1 (mismatched sources excluded)", fused.SourceCount)
	}
	if !almostEqual(fused.Values[0], 1.0, eps) {
		t.Errorf("excluded source leaked into fused value: %v", fused.Values[0])
	}
}

func TestFuse_NoUsableSource(t *testing.T) {
	if _, ok := Fuse(2, nil); ok {
		t.Error("fusion of nothing must report no data")
	}
	if _, ok := Fuse(2, []Sample{{Source: "short", Weight: 1, Values: []float64{1}}}); ok {
		t.Error("fusion with only unusable samples must report no data")
	}
}
