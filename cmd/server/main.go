package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rzaw/delivery-proof/internal/adapter/handler"
	"github.com/rzaw/delivery-proof/internal/adapter/storage"
	"github.com/rzaw/delivery-proof/internal/config"
	"github.com/rzaw/delivery-proof/internal/core/domain"
	"github.com/rzaw/delivery-proof/internal/core/service"
	"github.com/rzaw/delivery-proof/internal/port"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := config.NewLogger()

	// Redis holds the stock counters
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		PoolSize: 100,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.WithError(err).Fatal("failed to connect redis")
	}
	logger.WithField("addr", cfg.RedisAddr).Info("connected to redis")

	// MySQL holds the delivery audit log
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect mysql")
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		logger.WithError(err).Fatal("failed to ping mysql")
	}
	logger.Info("connected to mysql")

	// GCS holds the screenshot archive
	if cfg.GCSBucket == "" {
		logger.Fatal("GCS_BUCKET is required")
	}
	gcsClient, err := gcs.NewClient(ctx)
	if err != nil {
		logger.WithError(err).Fatal("failed to create gcs client")
	}

	blobs := storage.NewGCSAdapter(gcsClient, cfg.GCSBucket)
	if cfg.GCSSignerEmail != "" {
		key := strings.ReplaceAll(cfg.GCSSignerPrivateKey, `\n`, "\n")
		blobs = blobs.WithSigner(cfg.GCSSignerEmail, []byte(key))
	}

	kv := storage.NewRedisAdapter(rdb)
	deliveryLog := storage.NewMySQLAdapter(db)

	ledger := service.NewInventoryLedger(kv, cfg.QueueSize)
	archive := service.NewScreenshotArchive(blobs)

	// Worker pool drains applied line items into the audit log
	var wg sync.WaitGroup
	for i := 0; i < cfg.WorkerCount; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			workerLoop(id, ledger.Records(), deliveryLog, logger)
		}(i)
	}
	logger.WithField("workers", cfg.WorkerCount).Info("started delivery log workers")

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: handler.NewHTTPHandler(ledger, archive, logger),
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("http server listening")
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.WithError(err).Error("http server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	httpServer.Shutdown(shutdownCtx)
	logger.Info("http server stopped")

	// Close the record queue and wait for workers to flush it
	ledger.Close()
	wg.Wait()
	logger.Info("workers stopped")

	gcsClient.Close()
	rdb.Close()
	db.Close()
	logger.Info("connections closed")
}

func workerLoop(id int, records <-chan domain.DeliveryRecord, log port.DeliveryLog, logger *logrus.Logger) {
	for rec := range records {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)

		// Audit-only: a failed insert is logged, never rolled back into
		// stock, because the key-value store is the stock authority.
		if err := log.RecordDelivery(ctx, rec); err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"worker": id,
				"record": rec.ID,
			}).Error("failed to persist delivery record")
		}

		cancel()
	}
}
