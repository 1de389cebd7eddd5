package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/roster"
	"github.com/aretw0/roster/internal/config"
	"github.com/aretw0/roster/pkg/adapters/memory"
	"github.com/aretw0/roster/pkg/adapters/redis"
	"github.com/aretw0/roster/pkg/adapters/rest"
	"github.com/aretw0/roster/pkg/observability"
	"github.com/aretw0/roster/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Runtime bundles an engine with the resources the commands need to release
// or expose.
type Runtime struct {
	Engine   *roster.Engine
	Registry *prometheus.Registry
	Journal  ports.ActionJournal

	closers []func() error
}

// Close releases the journal backend.
func (r *Runtime) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// NewRuntime initializes an engine with standard CLI conventions: a REST
// resource, the configured journal, log hooks and a private metrics registry.
func NewRuntime(cfg *config.Config, logger *slog.Logger) (*Runtime, error) {
	rt := &Runtime{Registry: prometheus.NewRegistry()}

	// 1. Resource
	resource := rest.NewClient(cfg.Resource.BaseURL,
		rest.WithPath(cfg.Resource.Path),
		rest.WithRetries(cfg.Resource.Retries),
		rest.WithRetryDelay(cfg.Resource.RetryDelay),
		rest.WithTimeout(cfg.Resource.Timeout),
		rest.WithLogger(logger),
	)

	// 2. Journal
	journal, err := createJournal(cfg.Journal)
	if err != nil {
		return nil, err
	}
	rt.Journal = journal
	if c, ok := journal.(interface{ Close() error }); ok {
		rt.closers = append(rt.closers, c.Close)
	}

	// 3. Hooks
	metrics := observability.NewMetrics(rt.Registry)
	hooks := observability.Combine(observability.LogHooks(logger), metrics.Hooks())

	opts := []roster.Option{
		roster.WithResource(resource),
		roster.WithLogger(logger),
		roster.WithLifecycleHooks(hooks),
	}
	if journal != nil {
		opts = append(opts, roster.WithJournal(journal))
	}

	engine, err := roster.New(opts...)
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	rt.Engine = engine
	return rt, nil
}

// createJournal returns nil for the "none" backend.
func createJournal(cfg config.JournalConfig) (ports.ActionJournal, error) {
	switch cfg.Backend {
	case config.JournalNone:
		return nil, nil
	case config.JournalMemory:
		return memory.NewJournal(cfg.Capacity), nil
	case config.JournalRedis:
		opts := []redis.Option{redis.WithCapacity(cfg.Capacity)}
		if cfg.Redis.Prefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.Redis.Prefix))
		}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		return redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...), nil
	}
	return nil, fmt.Errorf("unknown journal backend %q", cfg.Backend)
}
