package transform

import (
	"math"
	"slices"
	"strconv"

	"go.trai.ch/protanno/internal/core/domain"
)

const unknownLength = "unknown"

type fixedBin struct {
	upper int
	label string
}

// fixedBins are checked in order; a length belongs to the first bin whose upper
// bound exceeds it.
var fixedBins = []fixedBin{
	{50, "<50"},
	{100, "50-100"},
	{200, "100-200"},
	{400, "200-400"},
	{600, "400-600"},
	{800, "600-800"},
	{1000, "800-1000"},
	{1200, "1000-1200"},
	{1400, "1200-1400"},
	{1600, "1400-1600"},
	{1800, "1600-1800"},
	{2000, "1800-2000"},
}

func parseLength(v string) (int, bool) {
	if v == "" {
		return 0, false
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

// FixedBin returns the fixed-width bin label of a sequence length.
func FixedBin(length string) string {
	n, ok := parseLength(length)
	if !ok {
		return unknownLength
	}
	for _, b := range fixedBins {
		if n < b.upper {
			return b.label
		}
	}
	return "2000+"
}

// QuantileBins labels every length with its decile bin computed over all valid
// lengths of the batch. The result is index-aligned with lengths.
func QuantileBins(lengths []string) []string {
	out := make([]string, len(lengths))
	valid := make([]float64, 0, len(lengths))
	parsed := make([]int, len(lengths))
	for i, l := range lengths {
		n, ok := parseLength(l)
		if !ok {
			parsed[i] = -1
			continue
		}
		parsed[i] = n
		valid = append(valid, float64(n))
	}

	if len(valid) == 0 {
		for i := range out {
			out[i] = unknownLength
		}
		return out
	}

	boundaries := deciles(valid)
	labels := binLabels(boundaries)
	for i, n := range parsed {
		switch {
		case n < 0:
			out[i] = unknownLength
		case len(boundaries) < 2:
			out[i] = strconv.Itoa(n)
		default:
			out[i] = labels[binIndex(boundaries, float64(n))]
		}
	}
	return out
}

// deciles returns the 0..100 step 10 percentiles with linear interpolation,
// dropping consecutive duplicates.
func deciles(values []float64) []float64 {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	bounds := make([]float64, 0, 11)
	last := len(sorted) - 1
	for p := 0; p <= 100; p += 10 {
		pos := float64(p) / 100 * float64(last)
		lo := int(math.Floor(pos))
		hi := int(math.Ceil(pos))
		v := sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
		if len(bounds) > 0 && bounds[len(bounds)-1] == v {
			continue
		}
		bounds = append(bounds, v)
	}
	return bounds
}

func binLabels(bounds []float64) []string {
	if len(bounds) < 2 {
		return nil
	}
	labels := make([]string, len(bounds)-1)
	for i := range labels {
		start := int(bounds[i])
		end := int(bounds[i+1])
		if i == len(labels)-1 {
			labels[i] = strconv.Itoa(start) + "-" + strconv.Itoa(end)
			continue
		}
		labels[i] = strconv.Itoa(start) + "-" + strconv.Itoa(end-1)
	}
	return labels
}

// binIndex counts the inner boundaries at or below v, clamped to the last bin.
func binIndex(bounds []float64, v float64) int {
	idx := 0
	for _, b := range bounds[1:] {
		if b <= v {
			idx++
		}
	}
	return min(idx, len(bounds)-2)
}

// Derive computes the requested derived fields for ids from the internal length
// values in table. Derived values are never stored.
func Derive(ids []domain.Identifier, table domain.Table, fields []string) domain.Table {
	out := make(domain.Table, len(ids))
	if len(fields) == 0 {
		return out
	}

	lengths := make([]string, len(ids))
	for i, id := range ids {
		lengths[i] = table.Value(id, domain.FieldLength)
	}

	for _, field := range fields {
		switch field {
		case domain.FieldLengthFixed:
			for i, id := range ids {
				out.Set(id, field, FixedBin(lengths[i]))
			}
		case domain.FieldLengthQuantile:
			bins := QuantileBins(lengths)
			for i, id := range ids {
				out.Set(id, field, bins[i])
			}
		}
	}
	return out
}
