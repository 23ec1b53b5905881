package aggregate

import "sort"

// Stats are the descriptive statistics computed over one numeric column.
type Stats struct {
	Mean   float64
	Min    float64
	Max    float64
	Median float64
	Mode   float64
}

// Describe computes mean, min, max, median, and mode over values. An empty
// input yields all zeros.
//
// Median averages the two middle values when the count is even. Mode ties
// break on the first value encountered at the maximum frequency, in input
// order; an explicit order slice carries that because map iteration order is
// randomized.
func Describe(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}

	var (
		sum  float64
		minV = values[0]
		maxV = values[0]
		freq = make(map[float64]int, len(values))
		seen = make([]float64, 0, len(values))
	)
	for _, v := range values {
		sum += v
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
		if _, ok := freq[v]; !ok {
			seen = append(seen, v)
		}
		freq[v]++
	}

	mode := seen[0]
	best := freq[mode]
	for _, v := range seen[1:] {
		if freq[v] > best {
			mode = v
			best = freq[v]
		}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	var median float64
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		median = (sorted[mid-1] + sorted[mid]) / 2
	} else {
		median = sorted[mid]
	}

	return Stats{
		Mean:   sum / float64(len(values)),
		Min:    minV,
		Max:    maxV,
		Median: median,
		Mode:   mode,
	}
}
