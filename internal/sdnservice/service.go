// Package sdnservice implements the search and health operations over the
// cached SDN snapshot.
package sdnservice

import (
	"context"
	"fmt"
	"strings"

	"github.com/starford/algiz/internal/apperr"
	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/sdncache"
)

// MinFragmentLen is the minimum trimmed length of a search fragment.
const MinFragmentLen = 2

// QueryResult is the outcome of one search: Count is the total number of
// matches, Results holds at most the configured limit of them in row order.
type QueryResult struct {
	Count   int             `json:"count"`
	Results []models.Record `json:"results"`
}

// HealthStatus is the /healthz payload. Degraded is a valid terminal state,
// not an error.
type HealthStatus struct {
	Status   string `json:"status"`
	Rows     int    `json:"rows,omitempty"`
	Snapshot string `json:"snapshot,omitempty"`
	Source   string `json:"source"`
	Detail   string `json:"detail,omitempty"`
}

// Service answers queries against the cache.
type Service struct {
	cache *sdncache.Cache
	limit int
}

// NewService creates a Service serving at most limit records per query.
func NewService(cache *sdncache.Cache, limit int) *Service {
	return &Service{cache: cache, limit: limit}
}

// Search returns the rows whose name contains fragment, case-insensitively.
// A fragment shorter than MinFragmentLen after trimming is rejected with
// apperr.ErrInvalidArgument before any cache access. A refresh failure is
// tolerated as long as a previous snapshot exists; otherwise the cache error
// propagates unchanged.
func (s *Service) Search(ctx context.Context, fragment string) (*QueryResult, error) {
	fragment = strings.TrimSpace(fragment)
	if len(fragment) < MinFragmentLen {
		return nil, fmt.Errorf("%w: name must be at least %d characters", apperr.ErrInvalidArgument, MinFragmentLen)
	}
	needle := strings.ToLower(fragment)

	rows, err := s.cache.Rows(ctx)
	if err != nil && rows == nil {
		return nil, err
	}

	res := &QueryResult{Results: []models.Record{}}
	for _, row := range rows {
		if !strings.Contains(strings.ToLower(row.Name()), needle) {
			continue
		}
		res.Count++
		if len(res.Results) < s.limit {
			res.Results = append(res.Results, models.RecordFromRow(row))
		}
	}
	return res, nil
}

// Health reports the cache's view of the upstream source. It never fails:
// any refresh error becomes a degraded status with the cause as detail.
func (s *Service) Health(ctx context.Context) HealthStatus {
	rows, err := s.cache.Rows(ctx)
	if err != nil {
		return HealthStatus{
			Status: "degraded",
			Source: s.cache.Source(),
			Detail: err.Error(),
		}
	}
	st := HealthStatus{
		Status: "ok",
		Rows:   len(rows),
		Source: s.cache.Source(),
	}
	if snap := s.cache.Snapshot(); snap != nil {
		st.Snapshot = snap.Checksum
	}
	return st
}
