// Command threadmond wires a worker pool, collector hub, event bus,
// and health monitor together for local smoke-testing; it is not a
// deployment surface, just the minimal assembly the rest of the
// module's packages are built to support.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kcenon/threadmon/internal/collector"
	"github.com/kcenon/threadmon/internal/collectorplugin"
	"github.com/kcenon/threadmon/internal/config"
	"github.com/kcenon/threadmon/internal/eventbus"
	"github.com/kcenon/threadmon/internal/exporter"
	"github.com/kcenon/threadmon/internal/health"
	"github.com/kcenon/threadmon/internal/logger"
	"github.com/kcenon/threadmon/internal/pool"
	"github.com/kcenon/threadmon/internal/svccontext"
	"github.com/kcenon/threadmon/internal/worker"
)

func main() {
	cfg, err := config.Load("threadmond")
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log := logger.New(cfg.Logger)
	log.Log(svccontext.LevelInfo, "starting threadmond")

	svcCtx := svccontext.New("threadmond", "main", log, nil)

	p := pool.New[int]("default", svcCtx, []int{0}, worker.DefaultPolicy(), cfg.Pool.MaxQueueSizePerPriority)
	p.AddWorkers("worker", cfg.Pool.WorkerCount)
	if err := p.Start(); err != nil {
		log.Log(svccontext.LevelCritical, "failed to start pool: "+err.Error())
		os.Exit(1)
	}

	hub := collector.New(collector.Config{
		CollectionInterval: cfg.Collector.CollectionInterval,
		WorkerThreads:      cfg.Collector.WorkerThreads,
		CacheTTL:           cfg.Collector.CacheTTL,
		AggregationWindow:  cfg.Collector.AggregationWindow,
	})
	if err := hub.Register(collectorplugin.NewSystemPlugin("/")); err != nil {
		log.Log(svccontext.LevelError, "failed to register system plugin: "+err.Error())
	}
	hub.Start()

	bus := eventbus.New(eventbus.Config{
		MaxQueueSize:          cfg.EventBus.MaxQueueSize,
		WorkerThreadCount:     cfg.EventBus.WorkerThreadCount,
		ProcessingInterval:    cfg.EventBus.ProcessingInterval,
		BackPressureThreshold: cfg.EventBus.BackPressureThreshold,
		AutoStart:             true,
	})

	hub.Subscribe(&collector.Observer{
		Alive: func() bool { return true },
		Notify: func(evt collector.MetricEvent) {
			_ = bus.Publish("metric.collected", 0, evt)
		},
	})

	monitor := health.NewMonitor(cfg.Monitor.CacheDuration)
	monitor.Register(health.Registration{
		Name: "pool.workers",
		Type: health.CheckLiveness,
		Check: func(ctx context.Context) health.Result {
			if len(p.Workers()) == 0 {
				return health.Result{Status: health.StatusUnhealthy, Message: "no workers"}
			}
			return health.Result{Status: health.StatusHealthy}
		},
	})

	httpSrv := exporter.NewServer(cfg.HTTP, log, monitor, hub)
	go func() {
		if err := httpSrv.Start(); err != nil {
			log.Log(svccontext.LevelError, "http server error: "+err.Error())
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Log(svccontext.LevelInfo, "shutting down threadmond")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.WriteTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Log(svccontext.LevelError, "http server shutdown error: "+err.Error())
	}
	hub.Stop()
	bus.Close()
	if err := p.Stop(false); err != nil {
		log.Log(svccontext.LevelError, "pool stop error: "+err.Error())
	}

	log.Log(svccontext.LevelInfo, "threadmond stopped")
}
