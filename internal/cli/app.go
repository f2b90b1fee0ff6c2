package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/buergerwerk/klartext/internal/cache"
	"github.com/buergerwerk/klartext/internal/extract"
	"github.com/buergerwerk/klartext/internal/llm"
	"github.com/buergerwerk/klartext/internal/model"
	"github.com/buergerwerk/klartext/internal/orchestra"
	"github.com/buergerwerk/klartext/internal/pipeline"
	"github.com/buergerwerk/klartext/internal/refine"
	"github.com/buergerwerk/klartext/internal/telemetry"
)

// loadConfig merges the config file over the defaults and injects API
// keys from the conventional environment variables.
func loadConfig() (model.Config, error) {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	for i := range cfg.Providers {
		if cfg.Providers[i].APIKey != "" {
			continue
		}
		switch cfg.Providers[i].Name {
		case "openai":
			cfg.Providers[i].APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.Providers[i].APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	return cfg, nil
}

// app is the assembled application: pipeline plus its lifecycle.
type app struct {
	analyzer  *pipeline.Analyzer
	telemetry *telemetry.Store // nil when disabled
}

// buildApp wires providers, orchestrator, cache and stages from config.
// Providers that fail to initialize are warned about and skipped; an
// empty provider set is still a working (always-degraded) pipeline.
func buildApp(ctx context.Context, cfg model.Config) (*app, error) {
	var members []orchestra.Member
	for _, pc := range cfg.Providers {
		provider, err := llm.NewProvider(llm.ConfigFromModel(pc))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping provider %s: %v\n", pc.Name, err)
			continue
		}

		weight := pc.Weight
		if weight == 0 {
			weight = 0.5
		}

		var limiter *rate.Limiter
		if pc.RPM > 0 {
			limiter = rate.NewLimiter(rate.Limit(float64(pc.RPM)/60.0), 1)
		}

		members = append(members, orchestra.Member{
			Provider: provider,
			Weight:   weight,
			Timeout:  time.Duration(pc.TimeoutMs) * time.Millisecond,
			Limiter:  limiter,
		})
	}

	var store *telemetry.Store
	var recorder telemetry.Recorder = telemetry.Nop{}
	if cfg.Telemetry.Path != "" {
		s, err := telemetry.Open(ctx, cfg.Telemetry.Path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry disabled: %v\n", err)
		} else {
			store = s
			recorder = s
		}
	}

	orch := orchestra.New(members, recorder)

	respCache := cache.New(
		time.Duration(cfg.Cache.TTLSeconds)*time.Second,
		cfg.Cache.MaxEntries,
	)

	analyzer := pipeline.NewAnalyzer(
		respCache,
		extract.New(orch, time.Duration(cfg.Pipeline.ExtractTimeoutMs)*time.Millisecond),
		refine.New(orch, time.Duration(cfg.Pipeline.RefineTimeoutMs)*time.Millisecond),
		cfg.Pipeline.SimThreshold,
		cfg.Pipeline.ModelVersion,
	)

	return &app{analyzer: analyzer, telemetry: store}, nil
}

// close flushes telemetry.
func (a *app) close() {
	if a.telemetry != nil {
		if err := a.telemetry.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: telemetry close: %v\n", err)
		}
	}
}
