package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"civic-ml-pipeline/classify"
	"civic-ml-pipeline/config"
	"civic-ml-pipeline/events"
	"civic-ml-pipeline/handlers"
	"civic-ml-pipeline/metrics"
	"civic-ml-pipeline/queue"
	"civic-ml-pipeline/service"
	"civic-ml-pipeline/store"
	"civic-ml-pipeline/webhook"
	"civic-ml-pipeline/worker"
)

func main() {
	// Load configuration
	cfg := config.Load()
	if lvl, err := log.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	metrics.Register()

	// Probe the inference service; classification degrades to keyword
	// heuristics when it is unreachable.
	backend := classify.NewInferenceClient(cfg.InferenceURL, cfg.InferenceTimeout)
	probeCtx, cancelProbe := context.WithTimeout(context.Background(), 10*time.Second)
	if backend.Probe(probeCtx) {
		metrics.InferenceAvailable.Set(1)
		log.Infof("inference service available at %s", cfg.InferenceURL)
	} else {
		metrics.InferenceAvailable.Set(0)
		log.Warnf("inference service unreachable at %s, running in heuristic mode", cfg.InferenceURL)
	}
	cancelProbe()

	classifier := classify.New(backend, cfg.FetchTimeout)
	svc := service.New(classifier)

	// Setup HTTP server
	router := gin.Default()
	handlers.NewHandlers(svc).RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the queue worker
	var workerDone chan struct{}
	if cfg.WorkerEnabled {
		q, err := queue.New(cfg.RedisURL, cfg.QueueName)
		if err != nil {
			log.Fatalf("Failed to initialize queue: %v", err)
		}
		defer q.Close()

		connectCtx, cancelConnect := context.WithTimeout(context.Background(), 10*time.Second)
		if err := q.Ping(connectCtx); err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}

		st, err := store.New(connectCtx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		cancelConnect()
		defer st.Close(context.Background())

		notifier := webhook.New(cfg.WebhookURL, cfg.WebhookTimeout)

		var publisher worker.Publisher
		if cfg.AMQPURL != "" {
			pub, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
			if err != nil {
				log.WithError(err).Warn("Event publisher disabled")
			} else {
				publisher = pub
				defer pub.Close()
			}
		}

		classifyClient := worker.NewClassifyClient(cfg.ClassifyURL, cfg.ClassifyTimeout)
		w := worker.New(q, classifyClient, st, notifier, publisher)

		workerDone = make(chan struct{})
		go func() {
			w.Run(ctx)
			close(workerDone)
		}()
	}

	// Start HTTP server in a goroutine
	go func() {
		log.Infof("Starting HTTP server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Stop the worker and wait for the in-flight job to finish
	cancel()
	if workerDone != nil {
		<-workerDone
	}

	// Create a deadline for server shutdown
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelShutdown()

	// Attempt graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
