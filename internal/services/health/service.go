package health

import (
	"context"
	"time"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Check is the state of one dependency.
type Check struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// Status is the liveness payload.
type Status struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Service encapsulates health-related checks.
type Service struct {
	DB          Pinger
	Storage     string
	LLMProvider string
	Events      bool
	PingTimeout time.Duration
}

// NewService constructs a new health service.
func NewService() *Service {
	return &Service{PingTimeout: 2 * time.Second}
}

// Status reports liveness. Dependency failures are listed in Checks but never make the
// process unhealthy.
func (s *Service) Status(ctx context.Context) Status {
	checks := map[string]Check{
		"storage": {Status: "ok", Detail: s.Storage},
	}

	if s.DB == nil {
		checks["database"] = Check{Status: "ok", Detail: "memory"}
	} else {
		timeout := s.PingTimeout
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := s.DB.PingContext(pingCtx); err != nil {
			checks["database"] = Check{Status: "degraded", Detail: err.Error()}
		} else {
			checks["database"] = Check{Status: "ok", Detail: "postgres"}
		}
	}

	switch s.LLMProvider {
	case "", "none":
		checks["llm"] = Check{Status: "degraded", Detail: "not configured"}
	default:
		checks["llm"] = Check{Status: "ok", Detail: s.LLMProvider}
	}

	if s.Events {
		checks["events"] = Check{Status: "ok", Detail: "amqp"}
	} else {
		checks["events"] = Check{Status: "disabled"}
	}

	return Status{
		Success:   true,
		Message:   "AI Resume Analyzer API is running",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Checks:    checks,
	}
}
