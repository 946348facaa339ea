// Worker consumes telemetry events from Kafka and pushes them to Loki, and purges stale OTP records.
// Set KAFKA_BROKERS, TELEMETRY_KAFKA_TOPIC, KAFKA_GROUP_ID and LOKI_URL. With DATABASE_URL set it also
// deletes used or expired codes older than OTP_RETENTION every OTP_PURGE_INTERVAL.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/omerA/v0-guest-event-app/internal/config"
	"github.com/omerA/v0-guest-event-app/internal/db"
	"github.com/omerA/v0-guest-event-app/internal/telemetry/loki"
	verificationrepo "github.com/omerA/v0-guest-event-app/internal/verification/repository"
)

type stalePurger interface {
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.TelemetryKafkaBrokersList()
	if len(brokers) == 0 && cfg.DatabaseURL == "" {
		log.Fatal("worker: KAFKA_BROKERS or DATABASE_URL is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	var wg sync.WaitGroup

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("worker: db: %v", err)
		}
		defer conn.Close()
		wg.Add(1)
		go func() {
			defer wg.Done()
			purgeLoop(ctx, verificationrepo.NewPostgresRepository(conn), cfg.OTPPurgeInterval(), cfg.OTPRetention())
		}()
	}

	if len(brokers) > 0 {
		if cfg.LokiURL == "" {
			log.Fatal("worker: LOKI_URL is required when KAFKA_BROKERS is set")
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			consume(ctx, brokers, cfg.TelemetryKafkaTopic, cfg.KafkaGroupID, loki.NewClient(cfg.LokiURL))
		}()
	}

	wg.Wait()
	log.Println("worker: stopped")
}

const (
	readBackoffMin = 500 * time.Millisecond
	readBackoffMax = 30 * time.Second
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

type eventPusher interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

func consume(ctx context.Context, brokers []string, topic, groupID string, client *loki.Client) {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	log.Printf("worker: consuming from %s (group %s)", topic, groupID)
	forward(ctx, reader, client, readBackoffMin, readBackoffMax)
}

// forward pushes every message to Loki until ctx is done. Consecutive read errors back off
// exponentially from minBackoff up to maxBackoff; a successful read resets the delay.
func forward(ctx context.Context, reader messageReader, pusher eventPusher, minBackoff, maxBackoff time.Duration) {
	backoff := minBackoff
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("worker: kafka read error (retrying in %s): %v", backoff, err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = minBackoff

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := pusher.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		}
		pushCancel()
	}
}

func purgeLoop(ctx context.Context, repo stalePurger, interval, retention time.Duration) {
	log.Printf("worker: purging OTP records older than %s every %s", retention, interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		purgeOnce(ctx, repo, retention)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func purgeOnce(ctx context.Context, repo stalePurger, retention time.Duration) {
	n, err := repo.DeleteStale(ctx, time.Now().UTC().Add(-retention))
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("worker: otp purge failed: %v", err)
		}
		return
	}
	if n > 0 {
		log.Printf("worker: purged %d stale OTP records", n)
	}
}
