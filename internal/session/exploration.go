package session

import (
	"github.com/objones25/marquee/internal/analysis"
	"github.com/objones25/marquee/internal/dataset"
)

// Unclustered is the ChartPoint.Cluster of an exploration run with K == 0
const Unclustered = -1

// ChartPoint is one movie placed on the projection plane
type ChartPoint struct {
	Title   string  `json:"title"`
	Genre   string  `json:"genre"`
	Studio  string  `json:"studio"`
	Year    int     `json:"year"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Cluster int     `json:"cluster"`
}

// Exploration is the result of one Explore call, ready for rendering.
// Clusters is nil when the request asked for no clustering.
//
// PCA and Clusters may be shared with other callers through the session
// cache and must not be modified.
type Exploration struct {
	Request    Request
	Movies     []dataset.Movie
	Statistics dataset.Stats
	PCA        *analysis.PCAResult
	Clusters   *analysis.Clustering
	Points     []ChartPoint
}

// ClusterSummary describes one cluster of an exploration
type ClusterSummary struct {
	Index    int            `json:"index"`
	Size     int            `json:"size"`
	Centroid analysis.Point `json:"centroid"`
	Titles   []string       `json:"titles"`
}

func newExploration(req Request, movies []dataset.Movie, pca *analysis.PCAResult, clusters *analysis.Clustering) *Exploration {
	points := make([]ChartPoint, len(movies))
	for i, m := range movies {
		points[i] = ChartPoint{
			Title:   m.Title,
			Genre:   m.Genre,
			Studio:  m.Studio,
			Year:    m.Year,
			X:       pca.Scores[i].X(),
			Y:       pca.Scores[i].Y(),
			Cluster: Unclustered,
		}
		if clusters != nil {
			points[i].Cluster = clusters.Labels[i]
		}
	}

	return &Exploration{
		Request:    req,
		Movies:     movies,
		Statistics: dataset.Statistics(movies),
		PCA:        pca,
		Clusters:   clusters,
		Points:     points,
	}
}

// Clustered reports whether k-means ran
func (e *Exploration) Clustered() bool {
	return e.Clusters != nil
}

// clone copies the parts of an exploration a caller is likely to edit
func (e *Exploration) clone() *Exploration {
	c := *e
	c.Request.Filter.Years = append([]int(nil), e.Request.Filter.Years...)
	c.Request.Filter.Genres = append([]string(nil), e.Request.Filter.Genres...)
	c.Request.Filter.Studios = append([]string(nil), e.Request.Filter.Studios...)
	c.Request.Features = append([]string(nil), e.Request.Features...)
	c.Movies = append([]dataset.Movie(nil), e.Movies...)
	c.Points = append([]ChartPoint(nil), e.Points...)
	return &c
}

// ClusterSummaries groups the exploration's movies by cluster.
// It returns nil for an unclustered exploration.
func (e *Exploration) ClusterSummaries() []ClusterSummary {
	if !e.Clustered() {
		return nil
	}
	out := make([]ClusterSummary, len(e.Clusters.Centroids))
	for i, c := range e.Clusters.Centroids {
		out[i] = ClusterSummary{Index: i, Centroid: c, Titles: []string{}}
	}
	for _, p := range e.Points {
		s := &out[p.Cluster]
		s.Size++
		s.Titles = append(s.Titles, p.Title)
	}
	return out
}

// Series splits the chart points by cluster, one slice per cluster index.
// An unclustered exploration is a single series.
func (e *Exploration) Series() [][]ChartPoint {
	if !e.Clustered() {
		return [][]ChartPoint{e.Points}
	}
	series := make([][]ChartPoint, len(e.Clusters.Centroids))
	for _, p := range e.Points {
		series[p.Cluster] = append(series[p.Cluster], p)
	}
	return series
}
