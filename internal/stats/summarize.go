package stats

import (
	"math"
	"math/rand/v2"
	"slices"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/nao1215/codebook/internal/model"
)

// Summarize computes the summary of one column.
func Summarize(values []model.Value, spec model.ColumnSpec, opts Options) Summary {
	s := Summary{Type: spec.Type, NTotal: len(values)}

	present := make([]model.Value, 0, len(values))
	for _, v := range values {
		if spec.IsMissing(v) {
			s.NMissing++
			continue
		}
		present = append(present, v)
	}

	switch spec.Type {
	case model.TypeCategorical:
		s.Frequencies = frequencies(present)
		s.NValid = len(present)
	case model.TypeContinuous:
		nums := make([]float64, 0, len(present))
		for _, v := range present {
			if x, ok := model.ParseNumber(v); ok {
				nums = append(nums, x)
			}
		}
		s.NValid = len(nums)
		s.Numeric = numericSummary(nums, opts.percentiles())
	case model.TypeDate:
		dates := make([]time.Time, 0, len(present))
		for _, v := range present {
			if t, ok := model.ParseDate(v, opts.DateLayouts); ok {
				dates = append(dates, t)
			}
		}
		s.NValid = len(dates)
		s.Date = dateSummary(dates)
	default:
		s.Text = textSummary(present, opts)
		s.NValid = len(present)
	}
	s.NInvalid = s.NTotal - s.NMissing - s.NValid
	return s
}

func (o Options) percentiles() []int {
	if o.Percentiles == nil {
		return DefaultPercentiles
	}
	return o.Percentiles
}

// frequencies counts values and orders them by count descending, then by
// value ascending.
func frequencies(values []model.Value) []Frequency {
	counts := make(map[string]int)
	for _, v := range values {
		counts[v.Text()]++
	}
	out := make([]Frequency, 0, len(counts))
	for value, count := range counts {
		out = append(out, Frequency{Value: value, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

func numericSummary(x []float64, percentiles []int) *NumericSummary {
	if len(x) == 0 {
		return &NumericSummary{}
	}
	sorted := slices.Clone(x)
	sort.Float64s(sorted)

	ns := &NumericSummary{
		Defined: true,
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
		Median:  quantile(sorted, 0.5),
		StdDev:  sampleStdDev(sorted),
	}
	// Rounding can push the mean of identical values one ulp outside the
	// observed range.
	ns.Mean = math.Min(math.Max(mean(sorted), ns.Min), ns.Max)

	for _, p := range percentiles {
		ns.Percentiles = append(ns.Percentiles, Percentile{
			P:     p,
			Value: quantile(sorted, float64(p)/100),
		})
	}
	return ns
}

func mean(x []float64) float64 {
	sum := 0.0
	for _, v := range x {
		sum += v
	}
	return sum / float64(len(x))
}

// sampleStdDev uses the n-1 denominator and is 0 for fewer than two values.
func sampleStdDev(x []float64) float64 {
	if len(x) < 2 {
		return 0
	}
	m := mean(x)
	ss := 0.0
	for _, v := range x {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(x)-1))
}

// quantile interpolates linearly between closest ranks of a sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func dateSummary(dates []time.Time) *DateSummary {
	if len(dates) == 0 {
		return &DateSummary{}
	}
	ds := &DateSummary{Defined: true, Min: dates[0], Max: dates[0]}
	for _, t := range dates[1:] {
		if t.Before(ds.Min) {
			ds.Min = t
		}
		if t.After(ds.Max) {
			ds.Max = t
		}
	}
	return ds
}

func textSummary(values []model.Value, opts Options) *TextSummary {
	ts := &TextSummary{}
	if len(values) == 0 {
		return ts
	}

	seen := make(map[string]struct{}, len(values))
	distinct := make([]string, 0, len(values))
	for _, v := range values {
		s := v.Text()
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		distinct = append(distinct, s)
	}
	slices.Sort(distinct)

	ts.NUnique = len(distinct)
	ts.MinLength = utf8.RuneCountInString(distinct[0])
	for _, s := range distinct {
		n := utf8.RuneCountInString(s)
		ts.MinLength = min(ts.MinLength, n)
		ts.MaxLength = max(ts.MaxLength, n)
	}
	ts.Examples = examples(distinct, opts.Seed, opts.ExampleCount)
	return ts
}

// examples draws n distinct values with a seeded generator. When fewer
// than n distinct values exist they are repeated in order.
func examples(distinct []string, seed uint64, n int) []string {
	if n <= 0 || len(distinct) == 0 {
		return nil
	}
	out := make([]string, 0, n)
	if len(distinct) < n {
		for i := 0; i < n; i++ {
			out = append(out, distinct[i%len(distinct)])
		}
		return out
	}
	rng := rand.New(rand.NewPCG(seed, seed))
	for _, i := range rng.Perm(len(distinct))[:n] {
		out = append(out, distinct[i])
	}
	return out
}
