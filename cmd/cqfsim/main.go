// Command cqfsim admits a set of TSN flows onto a CQF network by column
// generation and randomized rounding, then replays the admitted flows
// through a goroutine-per-node forwarding fabric until every flow
// completes or the configured timeout elapses. It writes a JSON report
// of the admission decision and, once the run finishes, the completion
// outcome.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cqfsim/internal/audit"
	"cqfsim/internal/cache"
	"cqfsim/internal/colgen"
	"cqfsim/internal/config"
	"cqfsim/internal/domain"
	"cqfsim/internal/logger"
	"cqfsim/internal/metrics"
	"cqfsim/internal/randomflow"
	"cqfsim/internal/report"
	"cqfsim/internal/sim"
	"cqfsim/internal/telemetry"
)

func main() {
	randomCount := flag.Int("random", 0, "generate this many random flows instead of using config.flows")
	outputPath := flag.String("output", "simulation_results.json", "path to write the JSON results report")
	logLevel := flag.String("log-level", "", "override log.level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "override log.format (json, text)")
	metricsAddr := flag.String("metrics-addr", "", "override metrics.addr (empty disables the /metrics listener)")
	cacheDriver := flag.String("cache", "", "override cache.driver (memory, redis, off)")
	seed := flag.Int64("seed", 0, "override simulation.seed")
	flag.Parse()

	configPath := "network_config.json"
	if args := flag.Args(); len(args) > 0 {
		configPath = args[0]
	}

	overrides := config.Overrides{}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "log-level":
			overrides["log.level"] = *logLevel
		case "log-format":
			overrides["log.format"] = *logFormat
		case "metrics-addr":
			overrides["metrics.addr"] = *metricsAddr
		case "cache":
			overrides["cache.driver"] = *cacheDriver
		case "seed":
			overrides["simulation.seed"] = *seed
		}
	})

	cfg, err := config.LoadFromFile(configPath, overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cqfsim: failed to load config %s: %v\n", configPath, err)
		os.Exit(1)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Tracing.Enabled {
		tp, err := telemetry.Init(ctx, telemetry.Config{
			Enabled:     cfg.Tracing.Enabled,
			Endpoint:    cfg.Tracing.Endpoint,
			ServiceName: cfg.Tracing.ServiceName,
			Version:     cfg.App.Version,
			SampleRate:  cfg.Tracing.SampleRate,
		})
		if err != nil {
			logger.Log.Warn("failed to init telemetry", "error", err)
		} else {
			defer func() {
				if err := tp.Shutdown(context.Background()); err != nil {
					logger.Log.Warn("failed to shutdown telemetry", "error", err)
				}
			}()
		}
	}

	metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := metrics.StartMetricsServer(cfg.Metrics.Addr); err != nil {
				logger.Log.Warn("metrics server stopped", "error", err)
			}
		}()
	}

	auditLogger, err := audit.New(&audit.Config{
		Enabled:     cfg.Audit.Enabled,
		Backend:     cfg.Audit.Backend,
		FilePath:    cfg.Audit.FilePath,
		BufferSize:  cfg.Audit.BufferSize,
		FlushPeriod: cfg.Audit.FlushPeriod,
	})
	if err != nil {
		logger.Log.Warn("failed to init audit logger, falling back to stdout", "error", err)
		auditLogger, _ = audit.New(&audit.Config{Enabled: true, Backend: "stdout"})
	}
	audit.SetGlobal(auditLogger)
	defer func() {
		if err := auditLogger.Close(); err != nil {
			logger.Log.Warn("failed to close audit logger", "error", err)
		}
	}()

	planCacheBackend, err := cache.New(cache.FromConfig(&cfg.Cache))
	if err != nil {
		logger.Log.Warn("failed to init admission cache, disabling", "error", err)
		planCacheBackend = cache.NewNullCache()
	}
	defer func() {
		if err := planCacheBackend.Close(); err != nil {
			logger.Log.Warn("failed to close admission cache", "error", err)
		}
	}()
	planCache := cache.NewAdmissionPlanCache(planCacheBackend, cfg.Cache.DefaultTTL)

	network := buildNetwork(cfg.Network)

	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	flows := buildFlows(cfg, *randomCount, rng)
	if len(flows) == 0 {
		logger.Log.Error("no flows to admit")
		os.Exit(1)
	}

	metrics.Get().NetworkNodesTotal.Set(float64(len(network.Nodes())))
	metrics.Get().NetworkLinksTotal.Set(float64(len(network.Edges())))
	metrics.Get().FlowsSubmitted.Set(float64(len(flows)))

	result, err := admitFlows(ctx, cfg, network, flows, rng, planCache)
	if err != nil {
		logger.Log.Error("column generation failed", "error", err)
		os.Exit(1)
	}

	rep := report.Build(cfg, flows, result)
	metrics.Get().SetRunInfo(cfg.App.Version, rep.RunID)
	if err := rep.WriteFile(*outputPath); err != nil {
		logger.Log.Warn("failed to write pre-run report", "error", err, "path", *outputPath)
	}

	for _, a := range result.Admitted {
		metrics.Get().RecordAdmission(rep.RunID, true, "")
		logger.WithFlow(a.FlowID).Debug("flow admitted", "path", a.Path, "shaping_param", a.ShapingParam)
		_ = audit.Log(ctx, audit.NewEntry().RunID(rep.RunID).Component("colgen").
			Action(audit.ActionAdmit).Outcome(audit.OutcomeSuccess).
			Flow(fmt.Sprintf("%d", a.FlowID)).Build())
	}
	for _, flowID := range result.Rejected {
		metrics.Get().RecordAdmission(rep.RunID, false, "no_feasible_column")
		logger.WithFlow(flowID).Debug("flow rejected", "reason", "no_feasible_column")
		_ = audit.Log(ctx, audit.NewEntry().RunID(rep.RunID).Component("colgen").
			Action(audit.ActionReject).Outcome(audit.OutcomeDenied).
			Flow(fmt.Sprintf("%d", flowID)).Build())
	}

	runner := sim.NewRunner(network, flows, cfg.Simulation.CycleDurationUs)
	runner.WireTopology(network)
	if err := runner.ApplyAdmission(flows, result); err != nil {
		logger.Log.Error("failed to apply admission result to forwarding fabric", "error", err)
		os.Exit(1)
	}

	runCtx, cancel := context.WithTimeout(ctx, cfg.Simulation.CompletionTimeout)
	defer cancel()

	runLog := logger.WithRun(rep.RunID)
	runLog.Info("starting simulation run",
		"admitted", len(result.Admitted),
		"rejected", len(result.Rejected),
		"timeout", cfg.Simulation.CompletionTimeout,
	)

	incomplete, completed := runner.Run(runCtx)

	interrupted := ctx.Err() != nil && runCtx.Err() != context.DeadlineExceeded
	switch {
	case interrupted:
		rep.MarkInterrupted()
	case completed:
		status := make(map[int64]bool, len(result.Admitted))
		for _, a := range result.Admitted {
			status[a.FlowID] = true
		}
		rep.MarkCompleted(status)
	default:
		rep.MarkTimedOut(incomplete)
	}

	_ = audit.Log(context.Background(), audit.NewEntry().RunID(rep.RunID).Component("sim").
		Action(audit.ActionRunComplete).Outcome(completionOutcome(completed, interrupted)).
		Meta("incomplete_flows", incomplete).Build())

	if err := rep.WriteFile(*outputPath); err != nil {
		logger.Log.Error("failed to write final report", "error", err, "path", *outputPath)
		os.Exit(1)
	}

	runLog.Info("simulation run finished",
		"completed", completed,
		"incomplete_flows", len(incomplete),
	)
}

func completionOutcome(completed, interrupted bool) audit.Outcome {
	if interrupted {
		return audit.OutcomeFailure
	}
	if completed {
		return audit.OutcomeSuccess
	}
	return audit.OutcomeDenied
}

func buildNetwork(cfg config.NetworkConfig) *domain.Network {
	network := domain.NewNetwork()
	for _, node := range cfg.Nodes {
		network.AddNode(node)
	}
	for _, link := range cfg.Links {
		if err := network.AddLink(link.Node1, link.Node2, link.DelayMs, link.Bandwidth); err != nil {
			logger.Log.Warn("skipping invalid link", "node1", link.Node1, "node2", link.Node2, "error", err)
		}
	}
	for nodeKey, tauMs := range cfg.QueuingDelays {
		var nodeID int64
		if _, err := fmt.Sscanf(nodeKey, "%d", &nodeID); err != nil {
			logger.Log.Warn("skipping unparseable queuing_delays key", "key", nodeKey, "error", err)
			continue
		}
		network.SetTauOverride(nodeID, tauMs)
	}
	return network
}

func buildFlows(cfg *config.Config, randomCount int, rng *rand.Rand) []domain.Flow {
	if randomCount <= 0 && len(cfg.Flows) == 0 {
		randomCount = cfg.Random.Count
	}
	if randomCount > 0 {
		return randomflow.Generate(randomCount, cfg.Network.Nodes, cfg.Random, rng)
	}
	flows := make([]domain.Flow, 0, len(cfg.Flows))
	for _, f := range cfg.Flows {
		flows = append(flows, domain.Flow{
			FlowID:      f.FlowID,
			ArrivalRate: f.ArrivalRate,
			BurstSize:   f.BurstSize,
			MaxE2EDelay: f.MaxE2EDelay,
			MaxPktSize:  f.MaxPktSize,
			Src:         f.Src,
			Dest:        f.Dest,
		})
	}
	return flows
}

// admitFlows runs column generation, consulting and then populating the
// admission-plan cache so repeated runs against the same topology and
// flow set skip the LARAC/RMP loop entirely.
func admitFlows(ctx context.Context, cfg *config.Config, network *domain.Network, flows []domain.Flow, rng *rand.Rand, planCache *cache.AdmissionPlanCache) (colgen.Result, error) {
	if cached, ok, err := planCache.Get(ctx, network, flows); err != nil {
		logger.Log.Warn("admission cache lookup failed", "error", err)
	} else if ok {
		logger.Log.Info("admission plan served from cache", "status", cached.Status, "iterations", cached.Iterations)
		return cachedResultToColgen(cached), nil
	}

	start := time.Now()
	result, err := colgen.RunWithLimits(ctx, network, flows, cfg.Simulation.CycleDurationUs, rng, cfg.Simulation.MaxColGenIter, cfg.Simulation.RoundingTrials)
	elapsed := time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Get().RecordColGen(outcome, result.Iterations, elapsed)
	if err != nil {
		return result, err
	}

	cached := colgenResultToCached(result, elapsed)
	if err := planCache.Set(ctx, network, flows, cached, cfg.Cache.DefaultTTL); err != nil {
		logger.Log.Warn("failed to store admission plan in cache", "error", err)
	}
	return result, nil
}

func colgenResultToCached(result colgen.Result, elapsed time.Duration) *cache.CachedAdmissionResult {
	columns := make([]cache.CachedColumn, 0, len(result.Admitted))
	admittedIDs := make([]int64, 0, len(result.Admitted))
	for _, a := range result.Admitted {
		admittedIDs = append(admittedIDs, a.FlowID)
		columns = append(columns, cache.CachedColumn{
			FlowID: a.FlowID,
			Path:   a.Path,
			Weight: a.ShapingParam,
		})
	}
	return &cache.CachedAdmissionResult{
		AdmittedFlowIDs:   admittedIDs,
		RejectedFlowIDs:   result.Rejected,
		Columns:           columns,
		Status:            "ok",
		Iterations:        int32(result.Iterations),
		ComputationTimeMs: float64(elapsed.Milliseconds()),
	}
}

func cachedResultToColgen(cached *cache.CachedAdmissionResult) colgen.Result {
	admitted := make([]colgen.AdmittedFlow, 0, len(cached.Columns))
	for _, c := range cached.Columns {
		admitted = append(admitted, colgen.AdmittedFlow{
			FlowID:       c.FlowID,
			Path:         c.Path,
			ShapingParam: c.Weight,
		})
	}
	return colgen.Result{
		Admitted:   admitted,
		Rejected:   cached.RejectedFlowIDs,
		Iterations: int(cached.Iterations),
	}
}
