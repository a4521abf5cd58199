package dataset

import (
	"sort"
	"strconv"
	"strings"
)

// Filter narrows a movie list by year, genre and studio.
// An empty list places no constraint on that attribute.
type Filter struct {
	Years   []int    `json:"years,omitempty" koanf:"years"`
	Genres  []string `json:"genres,omitempty" koanf:"genres"`
	Studios []string `json:"studios,omitempty" koanf:"studios"`
}

// Match reports whether a movie passes the filter.
// Genre and studio comparisons ignore case and surrounding space.
func (f Filter) Match(m Movie) bool {
	if len(f.Years) > 0 && !containsInt(f.Years, m.Year) {
		return false
	}
	if len(f.Genres) > 0 && !containsFold(f.Genres, m.Genre) {
		return false
	}
	if len(f.Studios) > 0 && !containsFold(f.Studios, m.Studio) {
		return false
	}
	return true
}

// Apply returns the movies passing the filter in their original order
func (f Filter) Apply(movies []Movie) []Movie {
	out := make([]Movie, 0, len(movies))
	for _, m := range movies {
		if f.Match(m) {
			out = append(out, m)
		}
	}
	return out
}

// Key returns a canonical string for the filter, independent of value order
func (f Filter) Key() string {
	years := make([]string, len(f.Years))
	for i, y := range f.Years {
		years[i] = strconv.Itoa(y)
	}
	return "y=" + canonical(years) + ";g=" + canonical(f.Genres) + ";s=" + canonical(f.Studios)
}

// Facets lists the distinct attribute values present in a dataset
type Facets struct {
	Years   []int    `json:"years"`
	Genres  []string `json:"genres"`
	Studios []string `json:"studios"`
}

// FacetsOf collects the sorted distinct years, genres and studios of movies
func FacetsOf(movies []Movie) Facets {
	years := map[int]struct{}{}
	genres := map[string]struct{}{}
	studios := map[string]struct{}{}
	for _, m := range movies {
		if m.Year != 0 {
			years[m.Year] = struct{}{}
		}
		if m.Genre != "" {
			genres[m.Genre] = struct{}{}
		}
		if m.Studio != "" {
			studios[m.Studio] = struct{}{}
		}
	}

	f := Facets{
		Years:   make([]int, 0, len(years)),
		Genres:  make([]string, 0, len(genres)),
		Studios: make([]string, 0, len(studios)),
	}
	for y := range years {
		f.Years = append(f.Years, y)
	}
	for g := range genres {
		f.Genres = append(f.Genres, g)
	}
	for s := range studios {
		f.Studios = append(f.Studios, s)
	}
	sort.Ints(f.Years)
	sort.Strings(f.Genres)
	sort.Strings(f.Studios)
	return f
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	v = strings.TrimSpace(v)
	for _, x := range list {
		if strings.EqualFold(strings.TrimSpace(x), v) {
			return true
		}
	}
	return false
}

func canonical(values []string) string {
	norm := make([]string, len(values))
	for i, v := range values {
		norm[i] = strings.ToLower(strings.TrimSpace(v))
	}
	sort.Strings(norm)
	return strings.Join(norm, ",")
}
