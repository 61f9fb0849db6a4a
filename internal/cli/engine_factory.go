package cli

import (
	"fmt"
	"log/slog"

	"github.com/aretw0/eventmodel"
	"github.com/aretw0/eventmodel/internal/config"
	"github.com/aretw0/eventmodel/pkg/adapters/file"
	"github.com/aretw0/eventmodel/pkg/adapters/redis"
	"github.com/aretw0/eventmodel/pkg/adapters/sqlite"
	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/export"
	"github.com/aretw0/eventmodel/pkg/observability"
	"github.com/aretw0/eventmodel/pkg/ports"
)

// CreateEngine initializes an engine with standard CLI conventions.
func CreateEngine(cfg *config.Config, logger *slog.Logger, hooks ...domain.BuildHooks) (*eventmodel.Engine, error) {
	engineOpts := []eventmodel.Option{
		eventmodel.WithLogger(logger),
		eventmodel.WithHooks(observability.LogHooks(logger)),
	}
	for _, h := range hooks {
		engineOpts = append(engineOpts, eventmodel.WithHooks(h))
	}

	if cfg.Loader == config.LoaderFile {
		engineOpts = append(engineOpts, eventmodel.WithLoader(file.NewLoader(cfg.ModelDir)))
	}

	engine, err := eventmodel.New(cfg.ModelDir, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	return engine, nil
}

// Sinks is an exporter fan-out that owns the connections it opened.
type Sinks struct {
	export.Fanout
	closers []func() error
}

// Close releases every sink connection.
func (s *Sinks) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// CreateSinks opens the exporters named in names (config.Sinks).
func CreateSinks(cfg *config.Config, names []string) (*Sinks, error) {
	format, err := export.ParseFormat(cfg.Export.Format)
	if err != nil {
		return nil, err
	}

	sinks := &Sinks{}
	for _, name := range names {
		var exp ports.Exporter
		switch name {
		case "file":
			exp = file.NewExporter(cfg.Export.Dir, format)
		case "redis":
			r := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithTTL(cfg.Redis.TTL.Duration))
			sinks.closers = append(sinks.closers, r.Close)
			exp = r
		case "sqlite":
			db, err := sqlite.Open(cfg.SQLite.Path)
			if err != nil {
				_ = sinks.Close()
				return nil, err
			}
			sinks.closers = append(sinks.closers, db.Close)
			exp = db
		default:
			_ = sinks.Close()
			return nil, fmt.Errorf("unknown export sink %q", name)
		}
		sinks.Fanout = append(sinks.Fanout, exp)
	}
	return sinks, nil
}
