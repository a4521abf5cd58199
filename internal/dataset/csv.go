package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"

	"github.com/rs/zerolog/log"
)

// column identifiers
const (
	colTitle = iota
	colGenre
	colStudio
	colYear
	colBudget
	colDomesticGross
	colForeignGross
	colAudienceScore
	colProfitability
	colRottenTomatoes
	colWorldwideGross
	numColumns
)

// headerAliases maps normalized header text to a column
var headerAliases = map[string]int{
	"film":           colTitle,
	"title":          colTitle,
	"movie":          colTitle,
	"genre":          colGenre,
	"leadstudio":     colStudio,
	"studio":         colStudio,
	"year":           colYear,
	"budget":         colBudget,
	"budgetmillion":  colBudget,
	"domesticgross":  colDomesticGross,
	"foreigngross":   colForeignGross,
	"audiencescore":  colAudienceScore,
	"profitability":  colProfitability,
	"rottentomatoes": colRottenTomatoes,
	"worldwidegross": colWorldwideGross,

	// "(million $)" suffixed headers of the yearly workbooks
	"domesticgrossmillion":  colDomesticGross,
	"foreigngrossmillion":   colForeignGross,
	"worldwidegrossmillion": colWorldwideGross,
}

// normalizeHeader lowercases and keeps only letters and digits
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// LoadCSV reads movies from CSV with a header row. Columns are matched by
// name, so their order does not matter and unknown columns are ignored.
// Numeric cells that fail to parse are kept as raw text.
func LoadCSV(r io.Reader) ([]Movie, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	positions := make([]int, numColumns)
	for i := range positions {
		positions[i] = -1
	}
	for i, h := range header {
		if col, ok := headerAliases[normalizeHeader(h)]; ok && positions[col] < 0 {
			positions[col] = i
		}
	}
	if positions[colTitle] < 0 {
		return nil, fmt.Errorf("%w: title", ErrMissingColumn)
	}

	var movies []Movie
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, &RowError{Line: line, Err: fmt.Errorf("%w: %v", ErrMalformedRow, err)}
		}
		if blank(row) {
			continue
		}

		cell := func(col int) string {
			p := positions[col]
			if p < 0 || p >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[p])
		}

		m := Movie{
			Title:          cell(colTitle),
			Genre:          cell(colGenre),
			Studio:         cell(colStudio),
			Budget:         ParseMeasure(cell(colBudget)),
			DomesticGross:  ParseMeasure(cell(colDomesticGross)),
			ForeignGross:   ParseMeasure(cell(colForeignGross)),
			AudienceScore:  ParseMeasure(cell(colAudienceScore)),
			Profitability:  ParseMeasure(cell(colProfitability)),
			RottenTomatoes: ParseMeasure(cell(colRottenTomatoes)),
			WorldwideGross: ParseMeasure(cell(colWorldwideGross)),
		}
		if y := cell(colYear); y != "" {
			year, err := strconv.Atoi(y)
			if err != nil {
				log.Warn().Int("line", line).Str("year", y).Msg("Ignoring unparsable year")
			}
			m.Year = year
		}
		movies = append(movies, m)
	}

	log.Debug().Int("movies", len(movies)).Msg("Loaded movies from CSV")
	return movies, nil
}

// LoadCSVFile reads movies from a CSV file on disk
func LoadCSVFile(path string) ([]Movie, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	movies, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return movies, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
