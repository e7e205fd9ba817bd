// Package app wires repositories, usecases and the HTTP router.
package app

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"doc-compliance/internal/adapter/repository/mysql"
	"doc-compliance/internal/domain/event"
	"doc-compliance/internal/metrics"
	"doc-compliance/internal/usecase/assignment"
	"doc-compliance/internal/usecase/catalog"
	"doc-compliance/internal/usecase/compliance"
	"doc-compliance/internal/usecase/sweep"
	"doc-compliance/internal/usecase/workflow"
)

type Deps struct {
	DB *gorm.DB
	// Redis enables the idempotency middleware when set.
	Redis    *redis.Client
	IdempTTL time.Duration

	Notifier event.Notifier
	Metrics  *metrics.Metrics
	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger

	SweepBatchSize int
	// Clock overrides time.Now for every usecase.
	Clock func() time.Time
}

type Services struct {
	Catalog    *catalog.Usecase
	Assign     *assignment.Usecase
	Flow       *workflow.Usecase
	Compliance *compliance.Usecase
	Sweep      *sweep.Usecase
}

func NewServices(d Deps) *Services {
	d = d.withDefaults()
	types := mysql.NewDocumentTypeRepository(d.DB)
	reqs := mysql.NewRequirementRepository(d.DB)

	assignOpts := []assignment.Option{
		assignment.WithNotifier(d.Notifier),
		assignment.WithLogger(d.Logger),
		assignment.WithUnitOfWork(mysql.NewGormUoW(d.DB)),
	}
	flowOpts := []workflow.Option{workflow.WithNotifier(d.Notifier), workflow.WithLogger(d.Logger), workflow.WithMetrics(d.Metrics)}
	complianceOpts := []compliance.Option{compliance.WithLogger(d.Logger)}
	if d.Clock != nil {
		assignOpts = append(assignOpts, assignment.WithClock(d.Clock))
		flowOpts = append(flowOpts, workflow.WithClock(d.Clock))
		complianceOpts = append(complianceOpts, compliance.WithClock(d.Clock))
	}

	return &Services{
		Catalog:    catalog.NewUsecase(types, d.Logger),
		Assign:     assignment.NewUsecase(types, reqs, assignOpts...),
		Flow:       workflow.NewUsecase(reqs, types, flowOpts...),
		Compliance: compliance.NewUsecase(types, reqs, complianceOpts...),
		Sweep: sweep.NewUsecase(reqs,
			sweep.WithNotifier(d.Notifier),
			sweep.WithLogger(d.Logger),
			sweep.WithMetrics(d.Metrics),
			sweep.WithBatchSize(d.SweepBatchSize)),
	}
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Notifier == nil {
		d.Notifier = event.Nop{}
	}
	if d.IdempTTL <= 0 {
		d.IdempTTL = 5 * time.Minute
	}
	if d.Gatherer == nil {
		d.Gatherer = prometheus.DefaultGatherer
	}
	return d
}
