package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"

	"coogi-engine/internal/agent"
	"coogi-engine/internal/config"
	"coogi-engine/internal/events"
	"coogi-engine/internal/httpapi"
	"coogi-engine/internal/replies"
	"coogi-engine/internal/secrets"
	"coogi-engine/internal/store"
)

func main() {
	// .env is optional; real deployments use the environment directly.
	_ = godotenv.Load()

	dataDir := os.Getenv("COOGI_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// Single instance per data dir; two engines sharing one sqlite file
	// corrupt each other's runs.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("instance lock failed: %v", err)
	}
	if !locked {
		log.Fatalf("another engine is already running in %s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		normalized, vr := config.NormalizeAndValidate(cfg)
		for _, wmsg := range vr.Warnings {
			log.Printf("[config] warning: %s", wmsg)
		}
		if !vr.OK() {
			for _, emsg := range vr.Errors {
				log.Printf("[config] error: %s", emsg)
			}
		}
		return normalized, nil
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "coogi.db")
	st, err := store.Open(dbPath)
	if err != nil {
		// Degraded mode: run with in-memory state only.
		log.Printf("[store] open failed (%s), running without persistence: %v", dbPath, err)
		st = nil
	} else {
		defer st.Close()
		if err := st.Migrate(); err != nil {
			log.Fatalf("store migrate failed: %v", err)
		}
		if n, err := st.CleanupOldRecords(); err == nil && n > 0 {
			log.Printf("[store] cleaned up %d old records", n)
		}
	}

	hub := events.NewHub()
	p := buildPipelines(cfg)
	registry := agent.NewRegistry(st, hub)
	runner := p.runner(st)

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mux := httpapi.NewMux(httpapi.Deps{
		Registry: registry,
		Store:    st,
		Hub:      hub,
		StartRun: func(h *agent.Handle, req agent.Request) {
			runner.Run(rootCtx, h, req)
		},
		JobSearch:        p.search,
		CampaignServices: p.services,
		CfgVal:           &cfgVal,
		UserCfgPath:      userCfgPath,
		LoadCfg:          loadCfg,
	})

	// Reply polling: optional, needs IMAP credentials.
	if cfg.Replies.Enabled {
		pw, err := secrets.Get("imap")
		if err != nil {
			log.Printf("[replies] disabled: %v", err)
		} else {
			poller := &replies.Poller{
				Store:    st,
				Addr:     net.JoinHostPort(cfg.Replies.IMAPHost, strconv.Itoa(cfg.Replies.IMAPPort)),
				Username: cfg.Replies.Username,
				Password: pw,
				Mailbox:  cfg.Replies.Mailbox,
				Interval: time.Duration(cfg.Replies.PollSeconds) * time.Second,
			}
			go poller.Run(rootCtx)
		}
	}

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}

	srv := &http.Server{
		Handler:           httpapi.Chain(mux, httpapi.RequestID, httpapi.Recover, httpapi.AccessLog, httpapi.Cors),
		ReadHeaderTimeout: 5 * time.Second,
	}

	token, err := randomToken(16)
	if err != nil {
		log.Fatal(err)
	}
	mux.HandleFunc("/shutdown", shutdownHandler(&token, srv))
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)
	log.Printf("shutdown token: %s", token)

	go func() {
		<-rootCtx.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
