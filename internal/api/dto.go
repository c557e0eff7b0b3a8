package api

import (
	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/sdnservice"
)

// Record is a single sanctioned-entity hit (aliased from the domain layer).
type Record = models.Record

// QueryResponse is the /getsdn response body.
type QueryResponse = sdnservice.QueryResult

// HealthResponse is the /healthz response body.
type HealthResponse = sdnservice.HealthStatus
