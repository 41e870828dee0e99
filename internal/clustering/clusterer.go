package clustering

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/selivandex/news-impact/internal/vectorspace"
	"github.com/selivandex/news-impact/pkg/logger"
	"github.com/selivandex/news-impact/pkg/models"
)

var (
	// ErrInvalidThreshold is returned for thresholds outside [-1, 1]
	ErrInvalidThreshold = errors.New("similarity threshold must be within [-1, 1]")
	// ErrDuplicateItem is returned when a batch carries the same item id twice
	ErrDuplicateItem = errors.New("duplicate news item id")
)

// DefaultThreshold merges near-duplicate headlines while keeping unrelated ones apart
const DefaultThreshold = 0.65

// clusterNamespace seeds deterministic cluster ids
var clusterNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("news-impact/cluster"))

// Strategy selects how items are grouped
type Strategy string

const (
	// StrategyCentroid compares each item with running cluster centroids in one pass
	StrategyCentroid Strategy = "centroid"
	// StrategyLinkage joins items transitively whenever any pair reaches the threshold
	StrategyLinkage Strategy = "linkage"
)

// Clusterer partitions a batch of news items into theme clusters
type Clusterer struct {
	threshold float64
	strategy  Strategy
}

// Option configures Clusterer
type Option func(*Clusterer)

// WithStrategy overrides grouping strategy
func WithStrategy(s Strategy) Option {
	return func(c *Clusterer) {
		c.strategy = s
	}
}

// New creates clusterer for the given similarity threshold
func New(threshold float64, opts ...Option) (*Clusterer, error) {
	if math.IsNaN(threshold) || threshold < -1 || threshold > 1 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}

	c := &Clusterer{
		threshold: threshold,
		strategy:  StrategyCentroid,
	}
	for _, opt := range opts {
		opt(c)
	}

	switch c.strategy {
	case StrategyCentroid, StrategyLinkage:
	default:
		return nil, fmt.Errorf("unknown clustering strategy %q", c.strategy)
	}

	return c, nil
}

// Threshold returns configured similarity threshold
func (c *Clusterer) Threshold() float64 {
	return c.threshold
}

// Cluster groups items into a hard partition.
// Empty input yields no clusters and no error.
func (c *Clusterer) Cluster(items []models.NewsItem) ([]models.Cluster, error) {
	if len(items) == 0 {
		return []models.Cluster{}, nil
	}

	if err := validateBatch(items); err != nil {
		return nil, err
	}

	ordered := sortedItems(items)

	var (
		clusters []models.Cluster
		err      error
	)
	switch c.strategy {
	case StrategyLinkage:
		clusters, err = c.linkage(ordered)
	default:
		clusters, err = c.centroid(ordered)
	}
	if err != nil {
		return nil, err
	}

	for i := range clusters {
		clusters[i].ID = clusterID(clusters[i].Members)
	}

	logger.Debug("batch clustered",
		zap.String("strategy", string(c.strategy)),
		zap.Float64("threshold", c.threshold),
		zap.Int("items", len(items)),
		zap.Int("clusters", len(clusters)),
	)

	return clusters, nil
}

// centroid runs greedy single-pass assignment against running centroids
func (c *Clusterer) centroid(items []models.NewsItem) ([]models.Cluster, error) {
	clusters := make([]models.Cluster, 0)

	for _, item := range items {
		best := -1
		bestSim := math.Inf(-1)

		for i := range clusters {
			sim, err := vectorspace.Similarity(item.Embedding, clusters[i].Centroid)
			if err != nil {
				return nil, fmt.Errorf("failed to compare item %s: %w", item.ID, err)
			}
			// strict comparison keeps the earliest cluster on ties
			if sim > bestSim {
				best = i
				bestSim = sim
			}
		}

		if best >= 0 && bestSim >= c.threshold {
			clusters[best].Members = append(clusters[best].Members, item)
			clusters[best].Centroid = mustCentroid(clusters[best].Members)
			continue
		}

		clusters = append(clusters, models.Cluster{
			Ordinal:  len(clusters),
			Members:  []models.NewsItem{item},
			Centroid: cloneVector(item.Embedding),
		})
	}

	return clusters, nil
}

// linkage builds connected components of the "similarity >= threshold" graph
func (c *Clusterer) linkage(items []models.NewsItem) ([]models.Cluster, error) {
	n := len(items)
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}

	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim, err := vectorspace.Similarity(items[i].Embedding, items[j].Embedding)
			if err != nil {
				return nil, fmt.Errorf("failed to compare items %s and %s: %w", items[i].ID, items[j].ID, err)
			}
			if sim < c.threshold {
				continue
			}
			ri, rj := find(i), find(j)
			if ri == rj {
				continue
			}
			// lower index stays root
			if ri < rj {
				parent[rj] = ri
			} else {
				parent[ri] = rj
			}
		}
	}

	index := make(map[int]int)
	clusters := make([]models.Cluster, 0)
	for i, item := range items {
		root := find(i)
		ci, ok := index[root]
		if !ok {
			ci = len(clusters)
			index[root] = ci
			clusters = append(clusters, models.Cluster{Ordinal: ci})
		}
		clusters[ci].Members = append(clusters[ci].Members, item)
	}

	for i := range clusters {
		clusters[i].Centroid = mustCentroid(clusters[i].Members)
	}

	return clusters, nil
}

// validateBatch rejects mixed embedding spaces and repeated ids
func validateBatch(items []models.NewsItem) error {
	dim := len(items[0].Embedding)
	seen := make(map[string]struct{}, len(items))

	for _, item := range items {
		if len(item.Embedding) != dim {
			return fmt.Errorf("%w: item %s has %d values, batch uses %d",
				vectorspace.ErrDimensionMismatch, item.ID, len(item.Embedding), dim)
		}
		if _, ok := seen[item.ID]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateItem, item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return nil
}

// sortedItems orders a copy of the batch by publish time then id
func sortedItems(items []models.NewsItem) []models.NewsItem {
	ordered := make([]models.NewsItem, len(items))
	copy(ordered, items)

	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].PublishedAt.Equal(ordered[j].PublishedAt) {
			return ordered[i].PublishedAt.Before(ordered[j].PublishedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	return ordered
}

// mustCentroid recomputes centroid of a non-empty cluster
func mustCentroid(members []models.NewsItem) []float32 {
	vectors := make([][]float32, len(members))
	for i, m := range members {
		vectors[i] = m.Embedding
	}

	centroid, err := vectorspace.Centroid(vectors)
	if err != nil {
		// members were validated and a cluster is never empty
		panic(fmt.Sprintf("clustering invariant violated: %v", err))
	}

	return centroid
}

// clusterID derives stable id from sorted member ids
func clusterID(members []models.NewsItem) string {
	ids := make([]string, len(members))
	for i, m := range members {
		ids[i] = m.ID
	}
	sort.Strings(ids)

	return uuid.NewSHA1(clusterNamespace, []byte(strings.Join(ids, "\x00"))).String()
}

func cloneVector(v []float32) []float32 {
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
