package engine

import (
	"math"
	"sort"
)

// Sample is one provider's estimate of a numeric series (e.g. the home/away
// expected-goals pair), with the provider's reliability weight attached.
type Sample struct {
	Source string
	Weight float64
	Values []float64
}

// FusedSeries is the combination of every usable sample: the weighted mean
// per series plus a confidence derived from cross-source agreement and the
// number of sources. Confidence lives in [0, 1]; a single source is capped
// well below the multi-source ceiling because agreement cannot be assessed.
type FusedSeries struct {
	Values      []float64
	Sources     []string
	SourceCount int
	Confidence  float64
}

// Confidence formula constants: agreement dominates, source count tops out at
// three providers.
const (
	consistencyShare  = 0.7
	sourceCountShare  = 0.3
	fullCoverageCount = 3.0
)

// Fuse combines samples of length seriesLen into one FusedSeries. Samples
// whose series length differs or whose weight is not positive are excluded
// rather than failing the fusion. The result is independent of sample order.
// Returns ok=false when no usable sample remains; callers must treat that as
// "no data", never as a zero estimate.
func Fuse(seriesLen int, samples []Sample) (FusedSeries, bool) {
	var usable []Sample
	for _, s := range samples {
		if len(s.Values) == seriesLen && s.Weight > 0 {
			usable = append(usable, s)
		}
	}
	if len(usable) == 0 || seriesLen == 0 {
		return FusedSeries{}, false
	}

	totalWeight := 0.0
	for _, s := range usable {
		totalWeight += s.Weight
	}

	means := make([]float64, seriesLen)
	for j := 0; j < seriesLen; j++ {
		sum := 0.0
		for _, s := range usable {
			sum += s.Values[j] * s.Weight
		}
		means[j] = sum / totalWeight
	}

	sources := make([]string, len(usable))
	for i, s := range usable {
		sources[i] = s.Source
	}
	sort.Strings(sources)

	return FusedSeries{
		Values:      means,
		Sources:     sources,
		SourceCount: len(usable),
		Confidence:  confidence(usable, means, totalWeight),
	}, true
}

func confidence(usable []Sample, means []float64, totalWeight float64) float64 {
	k := len(usable)
	if k == 1 {
		// Agreement cannot be assessed from one source.
		return consistencyShare * math.Min(1.0/fullCoverageCount, 1)
	}

	// Average coefficient of variation across the series.
	sumCV := 0.0
	for j, mean := range means {
		variance := 0.0
		for _, s := range usable {
			d := s.Values[j] - mean
			variance += s.Weight * d * d
		}
		variance /= totalWeight

		cv := 0.0
		if mean > 0 {
			cv = math.Sqrt(variance) / mean
		}
		sumCV += cv
	}
	avgCV := sumCV / float64(len(means))

	consistency := 1 - math.Min(avgCV, 1)
	sourceFactor := math.Min(float64(k)/fullCoverageCount, 1)

	return consistencyShare*consistency + sourceCountShare*sourceFactor
}
