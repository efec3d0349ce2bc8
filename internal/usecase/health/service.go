package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the service cannot serve retrieval queries.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store     StorePinger
	db        DBPinger
	embedding EmbeddingChecker
}

// New creates a Service. db and embedding can be nil.
func New(store StorePinger, db DBPinger, embedding EmbeddingChecker) *Service {
	return &Service{store: store, db: db, embedding: embedding}
}

// Check runs health checks against all components. A vector store failure is
// fatal for retrieval, so it alone drives the status to error; database and
// embedding failures only degrade.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["vector_store"] = CheckError
	} else {
		checks["vector_store"] = CheckOK
	}

	if s.db != nil {
		if err := s.db.PingContext(ctx); err != nil {
			checks["database"] = CheckError
		} else {
			checks["database"] = CheckOK
		}
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["vector_store"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}
