package dataset

import (
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/objones25/marquee/internal/analysis"
)

// Feature names understood by Movie.Record
const (
	FeatureBudget         = "budget"
	FeatureDomesticGross  = "domestic_gross"
	FeatureForeignGross   = "foreign_gross"
	FeatureWorldwideGross = "worldwide_gross"
	FeatureProfitability  = "profitability"
	FeatureRottenTomatoes = "rotten_tomatoes"
	FeatureAudienceScore  = "audience_score"
)

// Features lists every numeric column of a Movie
var Features = []string{
	FeatureBudget,
	FeatureDomesticGross,
	FeatureForeignGross,
	FeatureWorldwideGross,
	FeatureProfitability,
	FeatureRottenTomatoes,
	FeatureAudienceScore,
}

// DefaultFeatures are the columns projected when none are requested:
// money in and out, plus how the film paid off and how critics rated it
var DefaultFeatures = []string{
	FeatureBudget,
	FeatureDomesticGross,
	FeatureForeignGross,
	FeatureProfitability,
	FeatureRottenTomatoes,
}

// Measure is a numeric cell that keeps its raw text when it could not be parsed
type Measure struct {
	Value float64
	Raw   string
	Valid bool
}

// Number returns a valid measure
func Number(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

// ParseMeasure parses a spreadsheet cell. Currency symbols, thousands
// separators and percent signs are ignored.
func ParseMeasure(cell string) Measure {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '$', ',', '%', ' ', '\t':
			return -1
		}
		return r
	}, cell)

	f, ok := analysis.Float(cleaned)
	if !ok {
		return Measure{Raw: strings.TrimSpace(cell)}
	}
	return Measure{Value: f, Valid: true}
}

// value is what the analysis sees for this cell
func (m Measure) value() any {
	if m.Valid {
		return m.Value
	}
	return m.Raw
}

// MarshalJSON encodes valid measures as numbers and the rest as their raw text
func (m Measure) MarshalJSON() ([]byte, error) {
	if m.Valid {
		return []byte(strconv.FormatFloat(m.Value, 'g', -1, 64)), nil
	}
	return json.Marshal(m.Raw)
}

// UnmarshalJSON accepts a number, a string or null
func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Measure{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*m = ParseMeasure(raw)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*m = Number(f)
	return nil
}

// Movie is one row of the dataset
type Movie struct {
	Title          string  `json:"title"`
	Genre          string  `json:"genre"`
	Studio         string  `json:"studio"`
	Year           int     `json:"year"`
	Budget         Measure `json:"budget"` // million $
	DomesticGross  Measure `json:"domestic_gross"`
	ForeignGross   Measure `json:"foreign_gross"`
	WorldwideGross Measure `json:"worldwide_gross"`
	Profitability  Measure `json:"profitability"`
	RottenTomatoes Measure `json:"rotten_tomatoes"` // percent
	AudienceScore  Measure `json:"audience_score"`  // percent
}

// Measure returns the named numeric feature
func (m Movie) Measure(feature string) (Measure, bool) {
	switch feature {
	case FeatureBudget:
		return m.Budget, true
	case FeatureDomesticGross:
		return m.DomesticGross, true
	case FeatureForeignGross:
		return m.ForeignGross, true
	case FeatureAudienceScore:
		return m.AudienceScore, true
	case FeatureProfitability:
		return m.Profitability, true
	case FeatureRottenTomatoes:
		return m.RottenTomatoes, true
	case FeatureWorldwideGross:
		return m.WorldwideGross, true
	}
	return Measure{}, false
}

// Record converts the movie to an analysis record over every known feature
func (m Movie) Record() analysis.Record {
	rec := make(analysis.Record, len(Features))
	for _, f := range Features {
		v, _ := m.Measure(f)
		rec[f] = v.value()
	}
	return rec
}

// Records converts movies to analysis records, preserving order
func Records(movies []Movie) []analysis.Record {
	out := make([]analysis.Record, len(movies))
	for i, m := range movies {
		out[i] = m.Record()
	}
	return out
}

// KnownFeature reports whether a feature name can be read from a Movie
func KnownFeature(name string) bool {
	_, ok := Movie{}.Measure(name)
	return ok
}
