package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-messagely/internal/auth"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/config"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/message"
	messagerepo "github.com/ovaphlow/pitchfork/service-messagely/internal/message/repo"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/router"
	"github.com/ovaphlow/pitchfork/service-messagely/internal/user"
	userrepo "github.com/ovaphlow/pitchfork/service-messagely/internal/user/repo"
	"github.com/ovaphlow/pitchfork/service-messagely/pkg/database"
	"github.com/ovaphlow/pitchfork/service-messagely/pkg/utilities"
)

func main() {
	// best-effort: without a .env file the real environment is used
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	lg, err := utilities.Init(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()

	sugar := lg.Sugar()
	sugar.Infow("starting messagely", "addr", cfg.HTTPAddr, "token_ttl", cfg.TokenTTL)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := database.Connect(cfg.Database)
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer sqlDB.Close()

	if err := database.Migrate(ctx, sqlDB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}

	sqlxDB := sqlx.NewDb(sqlDB, "postgres")

	issuer := auth.NewIssuer([]byte(cfg.SecretKey), cfg.TokenTTL)
	userSvc := user.NewUserService(
		userrepo.NewUserRepo(sqlxDB),
		user.BcryptHasher{Cost: cfg.BcryptWorkFactor},
		issuer,
	)
	messageSvc := message.NewService(
		messagerepo.NewMessageRepo(sqlxDB, utilities.NewIDGenerator(cfg.SnowflakeNode)),
	)

	handler := router.RegisterRoutes(sugar,
		auth.NewGuards(issuer, sugar),
		user.NewHandler(userSvc, sugar),
		message.NewHandler(messageSvc, sugar),
	)
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: handler,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()

	<-ctx.Done()

	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}

	sugar.Info("goodbye")
}
