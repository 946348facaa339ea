package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	"github.com/omerA/v0-guest-event-app/internal/audit"
	auditrepo "github.com/omerA/v0-guest-event-app/internal/audit/repository"
	"github.com/omerA/v0-guest-event-app/internal/config"
	"github.com/omerA/v0-guest-event-app/internal/db"
	"github.com/omerA/v0-guest-event-app/internal/devotp"
	eventdomain "github.com/omerA/v0-guest-event-app/internal/event/domain"
	eventrepo "github.com/omerA/v0-guest-event-app/internal/event/repository"
	guestrepo "github.com/omerA/v0-guest-event-app/internal/guest/repository"
	guestservice "github.com/omerA/v0-guest-event-app/internal/guest/service"
	"github.com/omerA/v0-guest-event-app/internal/policy/engine"
	"github.com/omerA/v0-guest-event-app/internal/ratelimit"
	"github.com/omerA/v0-guest-event-app/internal/security"
	"github.com/omerA/v0-guest-event-app/internal/server"
	"github.com/omerA/v0-guest-event-app/internal/server/interceptors"
	"github.com/omerA/v0-guest-event-app/internal/telemetry"
	telemetryotel "github.com/omerA/v0-guest-event-app/internal/telemetry/otel"
	"github.com/omerA/v0-guest-event-app/internal/telemetry/producer"
	verificationrepo "github.com/omerA/v0-guest-event-app/internal/verification/repository"
	verificationservice "github.com/omerA/v0-guest-event-app/internal/verification/service"
	"github.com/omerA/v0-guest-event-app/internal/verification/sms"
)

const serviceName = "rsvp-server"

// repositories groups the storage backends selected by DATABASE_URL.
type repositories struct {
	events       eventrepo.Repository
	guests       guestrepo.Repository
	verification verificationrepo.Repository
	audit        auditrepo.Repository
	conn         *sql.DB
}

func openRepositories(cfg *config.Config) repositories {
	if cfg.DatabaseURL == "" {
		log.Println("db: DATABASE_URL not set, using in-memory repositories")
		return repositories{
			events: eventrepo.NewMemoryRepository(&eventdomain.Event{
				ID:        "annual-gathering-2026",
				Name:      "Annual Gathering 2026",
				CreatedAt: time.Now().UTC(),
			}),
			guests:       guestrepo.NewMemoryRepository(),
			verification: verificationrepo.NewMemoryRepository(),
			audit:        auditrepo.NewMemoryRepository(),
		}
	}
	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	return repositories{
		events:       eventrepo.NewPostgresRepository(conn),
		guests:       guestrepo.NewPostgresRepository(conn),
		verification: verificationrepo.NewPostgresRepository(conn),
		audit:        auditrepo.NewPostgresRepository(conn),
		conn:         conn,
	}
}

func newSender(cfg *config.Config) sms.Sender {
	switch cfg.SMSProvider {
	case config.SMSProviderSMSLocal:
		return sms.NewSMSLocalClient(cfg.SMSLocalAPIKey, cfg.SMSLocalBaseURL, cfg.SMSLocalSender)
	default:
		return sms.NewTwilioClient(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFrom, cfg.OTPTTL())
	}
}

func newLimiter(cfg *config.Config) ratelimit.Limiter {
	if cfg.SendCodeLimit == 0 {
		return nil
	}
	if cfg.RedisURL != "" {
		client, err := ratelimit.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		log.Println("ratelimit: using redis limiter")
		return ratelimit.NewRedisLimiter(client, cfg.SendCodeLimit, cfg.SendCodeWindow(), "rsvp:send")
	}
	return ratelimit.NewLocalLimiter(cfg.SendCodeLimit, cfg.SendCodeWindow())
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	sessions, err := security.NewSessionCodec(cfg.SessionSecret)
	if err != nil {
		log.Fatalf("security: %v", err)
	}
	adminTokens, err := security.NewAdminCodec(cfg.SessionSecret)
	if err != nil {
		log.Fatalf("security: %v", err)
	}
	adminPasswords := security.NewAdminAuthenticator(cfg.AdminPassword, cfg.AdminPasswordHash, security.NewHasher(cfg.BcryptCost))
	if cfg.AdminPassword == "" && cfg.AdminPasswordHash == "" {
		log.Println("security: ADMIN_PASSWORD not set, admin login disabled")
	}

	ctx := context.Background()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: serviceName,
		Environment: cfg.Env,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()

	metrics, err := telemetry.NewMetrics(providers.MeterProvider)
	if err != nil {
		log.Fatalf("telemetry: metrics: %v", err)
	}

	emitters := telemetry.Fanout{telemetryotel.NewEventEmitter(providers.LoggerProvider)}
	kafkaProducer := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic)
	if kafkaProducer != nil {
		log.Printf("telemetry: producing to kafka topic %s", cfg.TelemetryKafkaTopic)
		emitters = append(emitters, kafkaProducer)
	}

	repos := openRepositories(cfg)
	auditLogger := audit.NewLogger(repos.audit, interceptors.ClientIP)

	evaluator, err := engine.NewOPAEvaluator(ctx)
	if err != nil {
		log.Fatalf("policy: %v", err)
	}

	var devStore devotp.Store
	var sender sms.Sender
	if cfg.DevOTPEnabled() {
		log.Println("verification: dev OTP mode enabled, codes are not sent and are readable via DevService")
		devStore = devotp.NewMemoryStore()
	} else {
		sender = newSender(cfg)
	}
	if cfg.OTPDemoCodes {
		log.Println("verification: OTP_DEMO_CODES enabled, codes are derived from the phone number")
	}

	codes := verificationservice.NewService(repos.verification, repos.events, sender, verificationservice.Options{
		TTL:       cfg.OTPTTL(),
		DemoCodes: cfg.OTPDemoCodes,
		DevStore:  devStore,
		Limiter:   newLimiter(cfg),
		Audit:     auditLogger,
		Telemetry: emitters,
		Metrics:   metrics,
	})

	deps := server.Deps{
		Codes:               codes,
		Gate:                guestservice.NewGate(repos.guests, auditLogger, emitters),
		Sessions:            sessions,
		AdminTokens:         adminTokens,
		AdminPasswords:      adminPasswords,
		AdminTokenTTL:       cfg.AdminTokenTTL(),
		Policy:              evaluator,
		Audit:               auditLogger,
		Telemetry:           emitters,
		HealthPolicyChecker: evaluator,
		DevStore:            devStore,
	}
	if repos.conn != nil {
		deps.HealthPinger = repos.conn
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := server.NewServer(deps, grpc.StatsHandler(otelgrpc.NewServerHandler()))

	go func() {
		log.Printf("gRPC server listening on %s", cfg.GRPCAddr)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()

	// Async telemetry emits may still be in flight.
	time.Sleep(telemetry.ShutdownDrainDuration)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("telemetry: shutdown: %v", err)
	}
	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			log.Printf("telemetry: kafka close: %v", err)
		}
	}
	if repos.conn != nil {
		_ = repos.conn.Close()
	}
	log.Println("gRPC server stopped")
}
