package dataset

import "gonum.org/v1/gonum/floats"

// Stats are the headline figures of a set of movies. Money is in million $.
// Cells that are not numeric count as 0, so they lower averages rather
// than being skipped.
type Stats struct {
	Movies                int     `json:"movies"`
	TotalBudget           float64 `json:"total_budget"`
	TotalDomesticGross    float64 `json:"total_domestic_gross"`
	TotalForeignGross     float64 `json:"total_foreign_gross"`
	TotalWorldwideGross   float64 `json:"total_worldwide_gross"`
	AverageProfitability  float64 `json:"average_profitability"`
	AverageRottenTomatoes float64 `json:"average_rotten_tomatoes"`
}

// Statistics totals and averages the money and rating columns of movies.
// Averages are 0 for an empty set.
func Statistics(movies []Movie) Stats {
	column := func(feature string) []float64 {
		out := make([]float64, len(movies))
		for i, m := range movies {
			if v, _ := m.Measure(feature); v.Valid {
				out[i] = v.Value
			}
		}
		return out
	}

	st := Stats{
		Movies:              len(movies),
		TotalBudget:         floats.Sum(column(FeatureBudget)),
		TotalDomesticGross:  floats.Sum(column(FeatureDomesticGross)),
		TotalForeignGross:   floats.Sum(column(FeatureForeignGross)),
		TotalWorldwideGross: floats.Sum(column(FeatureWorldwideGross)),
	}
	if n := float64(len(movies)); n > 0 {
		st.AverageProfitability = floats.Sum(column(FeatureProfitability)) / n
		st.AverageRottenTomatoes = floats.Sum(column(FeatureRottenTomatoes)) / n
	}
	return st
}
