package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"momentum-trading-bot/internal/annotate"
	"momentum-trading-bot/internal/engine"
	"momentum-trading-bot/internal/interfaces"
	"momentum-trading-bot/internal/logger"
	"momentum-trading-bot/internal/paper"
	"momentum-trading-bot/internal/risk"
	"momentum-trading-bot/internal/risk/riskobs"
	"momentum-trading-bot/internal/scan"
	"momentum-trading-bot/internal/scan/scanobs"
	"momentum-trading-bot/internal/session"
	"momentum-trading-bot/internal/store"
	"momentum-trading-bot/internal/tradelog"
	"momentum-trading-bot/internal/types"
	"momentum-trading-bot/internal/watchlist"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	_ = godotenv.Load()
	must(logger.Init())

	configPath := os.Getenv("BOT_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := store.LoadConfig(configPath)
	must(err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	defer logger.Shutdown(context.Background())

	clock, err := session.NewClock(
		cfg.Session.Timezone,
		cfg.Session.Holidays,
		time.Duration(cfg.Session.WakeLeadMinutes)*time.Minute,
	)
	must(err)
	tradelog.SetLocation(clock.Location())

	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			_ = tradelog.CompressOlder(n)
		}
	}

	wlStore, err := buildStore(cfg)
	must(err)
	defer wlStore.Close()

	annotator := annotate.New(annotate.Config{
		MinHistory: cfg.Indicators.MinHistory,
		SMAWindow:  cfg.Indicators.SMAWindow,
		RSIPeriod:  cfg.Indicators.RSIPeriod,
		BBWindow:   cfg.Indicators.BBWindow,
		BBStdDev:   cfg.Indicators.BBStdDev,
		ATRPeriod:  cfg.Indicators.ATRPeriod,
	})

	// The live bar feed, broker, and decision-maker are external
	// collaborators; the paper stand-ins keep DRY_RUN self-contained.
	var (
		feed    interfaces.BarFeed = &paper.Feed{}
		brk     interfaces.Broker
		decider interfaces.Decider = paper.NewDecider()
	)
	if cfg.Mode == "DRY_RUN" {
		log.Println(">> DRY_RUN mode")
		brk = paper.NewBroker(types.AccountState{
			Equity:              100_000,
			Cash:                100_000,
			BuyingPower:         200_000,
			BuyingPowerBaseline: 200_000,
		})
	} else {
		log.Fatal("LIVE mode requires external broker and feed bindings")
	}

	scanner := scanobs.Wrap(scan.New(scan.Config{
		TopNPerSide: cfg.Universe.Scan.TopNPerSide,
		MinHistory:  cfg.Indicators.MinHistory,
		Filter: scan.FilterConfig{
			MinPrice:     cfg.Universe.Scan.Filters.MinPrice,
			MinVolume:    cfg.Universe.Scan.Filters.MinVolume,
			MinMarketCap: cfg.Universe.Scan.Filters.MinMarketCap,
		},
	}, feed, annotator, wlStore))

	governor := riskobs.Wrap(risk.New(risk.Policy{
		DrawdownHaltPct:        cfg.Risk.MonthlyDrawdownHaltPct,
		PerTradeRiskPct:        cfg.Risk.PerTradeRiskPct,
		MarginBufferPct:        cfg.Risk.MarginBufferPct,
		HardFloorPct:           cfg.Risk.HardFloorPct,
		FlattenCutoff:          time.Duration(cfg.Risk.FlattenCutoffMinutes) * time.Minute,
		ExtendedLimitOffsetPct: cfg.Risk.ExtendedLimitOffsetPct,
	}, risk.StopConfig{
		Mode:    cfg.Stop.Mode,
		Pct:     cfg.Stop.Pct,
		ATRMult: cfg.Stop.ATRMult,
		MinTick: cfg.Stop.MinTick,
	}, clock))

	sleeper := session.NewSleeper(time.Duration(cfg.Session.SleepPollSeconds) * time.Second)
	eng := engine.New(cfg, clock, sleeper, scanner, wlStore, brk, decider, governor)

	go serveMetrics()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigc
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Bot started.")
	if err := eng.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func buildStore(cfg *store.Config) (watchlist.Store, error) {
	switch cfg.Watchlist.Backend {
	case "sqlite":
		durable, err := watchlist.NewSQLiteStore(cfg.Watchlist.SQLitePath)
		if err != nil {
			return nil, err
		}
		return watchlist.NewLayeredStore(durable), nil
	case "redis":
		durable, err := watchlist.NewRedisStore(watchlist.RedisConfig{
			Addr:          cfg.Watchlist.Redis.Addr,
			DB:            cfg.Watchlist.Redis.DB,
			Prefix:        cfg.Watchlist.Redis.Prefix,
			RetentionDays: cfg.Watchlist.RetentionDays,
		})
		if err != nil {
			return nil, err
		}
		return watchlist.NewLayeredStore(durable), nil
	default:
		return watchlist.NewMemoryStore(), nil
	}
}

func serveMetrics() {
	addr := os.Getenv("METRICS_ADDR")
	if addr == "" {
		addr = ":9090"
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("metrics server: %v", err)
	}
}
