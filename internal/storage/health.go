package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// HealthChecker is one verifiable dependency of the service. Critical
// checkers block startup when they fail; non-critical ones only degrade.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	IsCritical() bool
	Name() string
}

// HealthManager runs registered checkers at startup and on demand.
type HealthManager struct {
	checkers []HealthChecker
	logger   *zap.Logger
	mu       sync.RWMutex
}

// NewHealthManager creates an empty health manager.
func NewHealthManager(logger *zap.Logger) *HealthManager {
	return &HealthManager{
		checkers: make([]HealthChecker, 0),
		logger:   logger,
	}
}

// AddChecker registers a health checker.
func (h *HealthManager) AddChecker(checker HealthChecker) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checkers = append(h.checkers, checker)
}

// StartupHealthCheck runs every checker once. Critical failures abort
// startup; non-critical failures are logged and tolerated.
func (h *HealthManager) StartupHealthCheck(ctx context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var criticalFailures []error

	for _, checker := range h.checkers {
		err := checker.HealthCheck(ctx)
		if err != nil {
			if checker.IsCritical() {
				criticalFailures = append(criticalFailures, fmt.Errorf("%s: %w", checker.Name(), err))
				h.logger.Error("Critical service health check failed",
					zap.String("service", checker.Name()),
					zap.Error(err))
			} else {
				h.logger.Warn("Non-critical service health check failed",
					zap.String("service", checker.Name()),
					zap.Error(err))
			}
		} else {
			h.logger.Info("Service health check passed",
				zap.String("service", checker.Name()),
				zap.Bool("critical", checker.IsCritical()))
		}
	}

	if len(criticalFailures) > 0 {
		return fmt.Errorf("critical services failed health check: %v", criticalFailures)
	}

	h.logger.Info("All critical services healthy", zap.Int("total_checks", len(h.checkers)))
	return nil
}

// RuntimeHealthCheck runs every checker and reports per-checker results for
// the health endpoint.
func (h *HealthManager) RuntimeHealthCheck(ctx context.Context) map[string]error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	results := make(map[string]error)
	for _, checker := range h.checkers {
		results[checker.Name()] = checker.HealthCheck(ctx)
	}

	return results
}

// DatabaseHealthChecker pings the session database.
type DatabaseHealthChecker struct {
	db *bun.DB
}

// NewDatabaseHealthChecker creates a database health checker.
func NewDatabaseHealthChecker(db *bun.DB) *DatabaseHealthChecker {
	return &DatabaseHealthChecker{db: db}
}

func (d *DatabaseHealthChecker) HealthCheck(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *DatabaseHealthChecker) IsCritical() bool {
	return true // no session data without it
}

func (d *DatabaseHealthChecker) Name() string {
	return "database"
}

// ConfigHealthChecker verifies that configuration was loaded.
type ConfigHealthChecker struct {
	config interface{}
}

// NewConfigHealthChecker creates a config health checker.
func NewConfigHealthChecker(config interface{}) *ConfigHealthChecker {
	return &ConfigHealthChecker{config: config}
}

func (c *ConfigHealthChecker) HealthCheck(ctx context.Context) error {
	if c.config == nil {
		return fmt.Errorf("configuration is nil")
	}
	return nil
}

func (c *ConfigHealthChecker) IsCritical() bool {
	return true
}

func (c *ConfigHealthChecker) Name() string {
	return "configuration"
}
