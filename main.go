package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gradebot/catalog"
	"gradebot/config"
	"gradebot/db"
	"gradebot/router"
	"gradebot/tools"
	"gradebot/workers"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// =====================
// ENV (além do config.json)
// =====================
//
// - PORT                 (default 7860)
// - DATABASE             sqlite3 | postgres
// - PGHOST, PGPORT, PGUSER, PGPASSWORD, PGDATABASE
// - CATALOG_PATH         (default assignment_map.json)
// - LITELLM_API_BASE     OpenAI-compatible base URL
// - GRADIO_API_KEY
// - GRADIO_LLM_MODEL
//
// =====================

func main() {
	configPath := flag.String("config", "config.json", "path to the JSON configuration file")
	flag.Parse()

	cfg := config.Get(*configPath)

	log, logFile, err := tools.NewLogger(cfg.LogLevel, cfg.LogPath)
	if err != nil {
		logrus.WithError(err).Fatal("cannot open log file")
	}
	defer logFile.Close()

	gdb, err := db.Connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("cannot connect to database")
	}
	defer gdb.Close()

	cat := catalog.LoadOrEmpty(cfg.CatalogPath, log)

	generator := tools.NewGenerator(tools.GeneratorConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Model:   cfg.LLM.Model,
		Timeout: cfg.Timeout(),
	}, log)

	grader := workers.NewGrader(
		cat,
		tools.NewComposer(tools.WithPersona(cfg.PromptPersona)),
		generator,
		db.NewAuditLogger(gdb, log),
		log,
	)

	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	limiter := router.Initialize(r, cfg, router.Deps{
		Grader:   grader,
		Pool:     workers.NewPool(cfg.MaxConcurrentGrading),
		Activity: db.NewActivity(gdb),
		Log:      log,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if limiter != nil {
		workers.StartJanitor(ctx, time.Minute, limiter.Cleanup)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ApiPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.ApiPort).Info("gradebot listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server stopped")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Timeout()+5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
