package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"

	cacheadapter "github.com/viralforge/brandhub/internal/adapters/cache"
	emailadapter "github.com/viralforge/brandhub/internal/adapters/email"
	eventadapter "github.com/viralforge/brandhub/internal/adapters/events"
	grpcadapter "github.com/viralforge/brandhub/internal/adapters/grpc"
	httpadapter "github.com/viralforge/brandhub/internal/adapters/http"
	"github.com/viralforge/brandhub/internal/adapters/postgres"
	"github.com/viralforge/brandhub/internal/adapters/security"
	"github.com/viralforge/brandhub/internal/adapters/storage"
	"github.com/viralforge/brandhub/internal/application"
	"github.com/viralforge/brandhub/internal/ports"
)

// fileStore is what both upload backends offer: writes for the service and
// reads for the /uploads route.
type fileStore interface {
	ports.FileStore
	httpadapter.UploadSource
}

type Runtime struct {
	cfg        Config
	logger     *slog.Logger
	httpServer *http.Server
	grpcServer *grpc.Server
	outbox     *eventadapter.OutboxWorker
	cleanupFn  func(context.Context)
}

func NewRuntime(ctx context.Context, configPath string) (*Runtime, error) {
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger.With("service", cfg.ServiceName))
	logger.Info("bootstrapping brandhub", "http_port", cfg.HTTPPort, "grpc_port", cfg.GRPCPort)

	db, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.MaxDBConns)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	if err := postgres.RunMigrations(ctx, db); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	redisClient, err := cacheadapter.Connect(ctx, cfg.RedisURL)
	if err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	closeAll := func() {
		_ = redisClient.Close()
		_ = sqlDB.Close()
	}

	tokenSigner, err := security.NewJWTSigner(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init jwt signer: %w", err)
	}

	files, err := newFileStore(ctx, cfg)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init file store: %w", err)
	}

	mailer, err := newMailer(cfg, logger)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init mailer: %w", err)
	}

	publisher, closePublisher, err := newPublisher(cfg, logger)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("init event publisher: %w", err)
	}

	repos := postgres.NewRepositories(db)
	svc := application.NewService(application.Dependencies{
		Config: application.Config{
			ServiceName:             cfg.ServiceName,
			AccessTokenTTL:          cfg.AccessTokenTTL,
			RefreshTokenTTL:         cfg.RefreshTokenTTL,
			VerificationCodeTTL:     application.DefaultConfig().VerificationCodeTTL,
			PasswordResetTTL:        application.DefaultConfig().PasswordResetTTL,
			LoginRateLimit:          cfg.LoginRateLimit,
			PasswordResetRateLimit:  cfg.PasswordResetRateLimit,
			VerificationResendLimit: cfg.VerificationResendLimit,
			RateLimitWindow:         cfg.RateLimitWindow,
		},
		Accounts:     repos.Accounts,
		LoginHistory: repos.LoginHistory,
		Brands:       repos.Brands,
		Products:     repos.Products,
		Outbox:       repos.Outbox,
		RateLimiter:  cacheadapter.NewRedisRateLimiter(redisClient),
		Revocations:  cacheadapter.NewRedisTokenRevocationStore(redisClient),
		Mailer:       mailer,
		Files:        files,
		Hasher:       security.NewBcryptHasher(cfg.BcryptCost),
		TokenSigner:  tokenSigner,
	})

	router := httpadapter.NewRouter(httpadapter.NewHandler(svc, files, httpadapter.WithTrustedProxies(cfg.TrustedProxies)))
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	outbox := eventadapter.NewOutboxWorker(logger, repos.Outbox, publisher, eventadapter.OutboxWorkerConfig{
		Interval:   cfg.OutboxPollInterval,
		BatchSize:  cfg.OutboxBatchSize,
		ClaimTTL:   cfg.OutboxClaimTTL,
		MaxRetries: cfg.OutboxMaxRetries,
	})

	return &Runtime{
		cfg:        cfg,
		logger:     logger,
		httpServer: httpServer,
		grpcServer: grpcadapter.NewServer(svc),
		outbox:     outbox,
		cleanupFn: func(context.Context) {
			closePublisher()
			closeAll()
		},
	}, nil
}

func newFileStore(ctx context.Context, cfg Config) (fileStore, error) {
	if cfg.S3Bucket != "" {
		return storage.NewS3Store(ctx, storage.S3Config{
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
			UsePathStyle:    cfg.S3UsePathStyle,
			MaxSize:         cfg.MaxUploadBytes,
		})
	}
	return storage.NewLocalStore(cfg.UploadDir, cfg.MaxUploadBytes)
}

func newMailer(cfg Config, logger *slog.Logger) (ports.Mailer, error) {
	if cfg.SMTPHost == "" {
		logger.Warn("SMTP_HOST not set; account emails are logged instead of sent")
		return emailadapter.NewLoggingMailer(cfg.FrontendURL, logger), nil
	}
	return emailadapter.NewSMTPMailer(emailadapter.SMTPConfig{
		Host:        cfg.SMTPHost,
		Port:        cfg.SMTPPort,
		Username:    cfg.SMTPUsername,
		Password:    cfg.SMTPPassword,
		From:        cfg.SMTPFrom,
		FrontendURL: cfg.FrontendURL,
	})
}

func newPublisher(cfg Config, logger *slog.Logger) (ports.EventPublisher, func(), error) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventadapter.NewLoggingPublisher(logger), func() {}, nil
	}
	publisher, err := eventadapter.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopics)
	if err != nil {
		return nil, nil, err
	}
	return publisher, func() { _ = publisher.Close() }, nil
}

func (r *Runtime) RunAPI(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", r.cfg.GRPCPort))
	if err != nil {
		r.cleanupFn(ctx)
		return fmt.Errorf("listen gRPC: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		r.logger.Info("http server started", "addr", r.httpServer.Addr)
		if err := r.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()
	go func() {
		r.logger.Info("grpc server started", "addr", lis.Addr().String())
		if err := r.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case runErr = <-errCh:
		r.logger.Error("server failure", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = r.httpServer.Shutdown(shutdownCtx)
	r.grpcServer.GracefulStop()
	r.cleanupFn(shutdownCtx)
	return runErr
}

func (r *Runtime) RunWorker(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("outbox worker started")
	err := r.outbox.Run(ctx)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	r.cleanupFn(shutdownCtx)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
