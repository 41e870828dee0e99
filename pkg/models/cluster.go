package models

import "time"

// Cluster groups news items that describe the same theme.
// Members are kept in assignment order and the first member is the seed.
type Cluster struct {
	ID       string     `json:"id"`
	Centroid []float32  `json:"-"`
	Members  []NewsItem `json:"-"`
	Ordinal  int        `json:"ordinal"`
}

// Size returns number of cluster members
func (c *Cluster) Size() int {
	return len(c.Members)
}

// Seed returns the item that opened the cluster
func (c *Cluster) Seed() NewsItem {
	return c.Members[0]
}

// MemberIDs returns member identifiers in assignment order
func (c *Cluster) MemberIDs() []string {
	ids := make([]string, len(c.Members))
	for i, m := range c.Members {
		ids[i] = m.ID
	}
	return ids
}

// Titles returns member titles in assignment order
func (c *Cluster) Titles() []string {
	titles := make([]string, len(c.Members))
	for i, m := range c.Members {
		titles[i] = m.Title
	}
	return titles
}

// EarliestPublished returns the oldest member timestamp
func (c *Cluster) EarliestPublished() time.Time {
	var earliest time.Time
	for i, m := range c.Members {
		if i == 0 || m.PublishedAt.Before(earliest) {
			earliest = m.PublishedAt
		}
	}
	return earliest
}
