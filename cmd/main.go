package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/vessel-ops/internal/client"
	"github.com/ukydev/vessel-ops/internal/config"
	"github.com/ukydev/vessel-ops/internal/dashboard"
	"github.com/ukydev/vessel-ops/internal/db"
	"github.com/ukydev/vessel-ops/internal/events"
	"github.com/ukydev/vessel-ops/internal/gateway"
	"github.com/ukydev/vessel-ops/internal/handlers"
	"github.com/ukydev/vessel-ops/internal/middleware"
	"github.com/ukydev/vessel-ops/internal/store"
)

// newRouter wires every endpoint. journal may be nil.
func newRouter(session handlers.Session, mutations handlers.Mutations, journal db.JournalCollection, ratePerMinute int, trustProxy bool) http.Handler {
	dash := handlers.NewDashboardHandler(session)
	mut := handlers.NewMutationHandler(mutations)
	jh := handlers.NewJournalHandler(journal)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/api/dashboard", dash.Summary)
	mux.HandleFunc("/api/dashboard/view", dash.SelectView)
	mux.HandleFunc("/api/dashboard/search", dash.Search)
	mux.HandleFunc("/api/dashboard/sort", dash.Sort)
	mux.HandleFunc("/api/dashboard/focus-vessel", dash.FocusVessel)
	mux.HandleFunc("/api/dashboard/focus-crew", dash.FocusCrew)
	mux.HandleFunc("/api/dashboard/clear-filter", dash.ClearFilter)
	mux.HandleFunc("/api/views/{view}", dash.View)
	mux.HandleFunc("/api/map/markers", dash.MapMarkers)
	mux.HandleFunc("/api/cii", dash.CII)
	mux.HandleFunc("/api/certificates/expiring", dash.ExpiringCertificates)
	mux.HandleFunc("/api/reload", dash.Reload)

	mux.HandleFunc("/api/vessels", mut.RegisterVessel)
	mux.HandleFunc("/api/seafarers", mut.AssignSeafarer)
	mux.HandleFunc("/api/noon-reports", mut.SubmitNoonReport)
	mux.HandleFunc("/api/maintenance-jobs/{id}/complete", mut.CompleteMaintenanceJob)

	mux.HandleFunc("/api/journal", jh.List)

	limiter := middleware.NewRateLimitMiddleware(trustProxy)
	return middleware.Chain(mux, middleware.RequestLogger, limiter.RateLimit(ratePerMinute, time.Minute))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Invalid configuration")
	}
	if err := cfg.ConfigureLogging(); err != nil {
		log.WithError(err).Fatal("Invalid logging configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.APIBaseURL, cfg.APIToken, cfg.RequestTimeout)
	records := store.New(api)

	// Both stay nil interfaces unless MongoDB is reachable.
	var journal db.JournalCollection
	var mutationJournal gateway.Journal
	if cfg.MongoURI != "" {
		mongoClient, err := db.ConnectMongo(ctx, cfg.MongoURI)
		if err != nil {
			log.WithError(err).Warn("MongoDB unavailable, mutation journal disabled")
		} else {
			defer mongoClient.Disconnect(context.Background())
			mj := db.NewMongoJournal(mongoClient, cfg.MongoDB)
			journal = mj
			mutationJournal = mj
			log.WithField("database", cfg.MongoDB).Info("Connected to MongoDB successfully")
		}
	}

	var publisher events.Publisher = events.Nop{}
	if cfg.MQTTBroker != "" {
		p, err := events.NewMQTTPublisher(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic)
		if err != nil {
			log.WithError(err).Warn("MQTT broker unavailable, mutation events disabled")
		} else {
			defer p.Close()
			publisher = p
		}
	}

	mutations := gateway.New(api, records, mutationJournal, publisher)
	session := dashboard.New(records, cfg.CertExpiryDays)

	if err := records.Reload(ctx); err != nil {
		log.WithError(err).Warn("Initial reload failed, serving empty collections")
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           newRouter(session, mutations, journal, cfg.RateLimitPerMinute, cfg.TrustProxyHeaders),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Graceful shutdown failed")
		}
	}()

	log.WithFields(log.Fields{
		"address": cfg.ListenAddress,
		"api_url": api.BaseURL(),
	}).Info("HTTP server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Fatal("HTTP server failed")
	}
}
