package analysis

import (
	"math"
	"sort"

	"cryptobook/internal/domain"

	"gonum.org/v1/gonum/stat"
)

// Correlations computes the Pearson coefficient of target against each of
// columns over the rows where both cells are present. Columns with fewer than
// two such rows or without variance are left out. The result is sorted by
// coefficient, highest first.
func Correlations(rows []domain.JoinedRow, target string, columns []string) []domain.Correlation {
	out := make([]domain.Correlation, 0, len(columns))
	for _, column := range columns {
		if column == target {
			continue
		}
		xs := make([]float64, 0, len(rows))
		ys := make([]float64, 0, len(rows))
		for _, row := range rows {
			x, ok := Value(row, target)
			if !ok {
				continue
			}
			y, ok := Value(row, column)
			if !ok {
				continue
			}
			xs = append(xs, x)
			ys = append(ys, y)
		}
		if len(xs) < 2 {
			continue
		}
		r := stat.Correlation(xs, ys, nil)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		out = append(out, domain.Correlation{Column: column, Coefficient: r, Samples: len(xs)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Coefficient > out[j].Coefficient
	})
	return out
}
