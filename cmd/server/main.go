package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	accountspostgres "github.com/jrsteele09/go-session-server/accounts/postgres"
	"github.com/jrsteele09/go-session-server/auth"
	"github.com/jrsteele09/go-session-server/internal/config"
	"github.com/jrsteele09/go-session-server/migrations"
	"github.com/jrsteele09/go-session-server/oauthverify"
	"github.com/jrsteele09/go-session-server/ratelimit"
	"github.com/jrsteele09/go-session-server/server"
	"github.com/jrsteele09/go-session-server/token"
	"github.com/jrsteele09/go-session-server/token/refresh"
	refreshpostgres "github.com/jrsteele09/go-session-server/token/refresh/postgres"
)

func main() {
	godotenv.Load() //nolint:errcheck

	c := config.New()
	initLogging(c)

	for {
		if err := run(c); err != nil {
			log.Fatal().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("server stopped")
}

func run(c config.Config) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	if c.GetSecretKey() == "" {
		return errors.New("SECRET_KEY must be set")
	}

	displayAppname(c.GetAppName())

	ctx := context.Background()
	if err := runMigrations(ctx, c.GetDatabaseURL()); err != nil {
		return errors.Wrap(err, "runMigrations")
	}

	pool, err := pgxpool.New(ctx, c.GetDatabaseURL())
	if err != nil {
		return errors.Wrap(err, "pgxpool.New")
	}
	defer pool.Close()

	srv, err := buildServer(ctx, c, pool)
	if err != nil {
		return err
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: srv}
	go listenAndServe(httpServer) //nolint:errcheck
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

func buildServer(ctx context.Context, c config.Config, pool *pgxpool.Pool) (*server.Server, error) {
	accountStore := accountspostgres.NewStore(pool)
	refreshTokens := refresh.NewManager(refreshpostgres.NewRepo(pool), c.GetRefreshTokenLength())
	issuer := token.NewIssuer(token.NewHMACSigner(c.GetSecretKey()), token.WithExpiry(c.GetAccessTokenExpiry()))

	deps := auth.Deps{
		Credentials:   auth.NewStoreCredentials(accountStore),
		Accounts:      accountStore,
		Issuer:        issuer,
		RefreshTokens: refreshTokens,
	}

	limiter := ratelimit.NewPostgresStore(pool)
	serverOptions := []server.Option{
		server.WithRateLimitStore(limiter),
	}
	sessionOptions := []auth.SessionServiceOption{
		auth.WithOAuthRefreshLifetime(c.GetRememberMeRefreshTokenExpiry()),
	}

	if c.GetOidcEnabled() {
		verifier, err := oauthverify.NewOidcVerifier(ctx,
			c.GetOidcIssuerURL(), c.GetOidcClientID(), c.GetOidcClientSecret(), c.GetOidcRedirectURL())
		if err != nil {
			return nil, errors.Wrap(err, "oauthverify.NewOidcVerifier")
		}
		deps.Verifier = verifier
		serverOptions = append(serverOptions, server.WithCodeExchanger(verifier))
	}

	sessions, err := auth.NewSessionService(deps, sessionOptions...)
	if err != nil {
		return nil, errors.Wrap(err, "auth.NewSessionService")
	}

	go sweep(ctx, refreshTokens, limiter)

	return server.New(c, sessions, issuer, refreshTokens, serverOptions...), nil
}

func runMigrations(ctx context.Context, databaseURL string) error {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return errors.Wrap(err, "sql.Open")
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "goose.SetDialect")
	}
	return goose.UpContext(ctx, db, ".")
}

// sweep is a safety net for rows that lazy validation never touches again,
// plus old rate limit windows.
func sweep(ctx context.Context, refreshTokens *refresh.Manager, limiter *ratelimit.PostgresStore) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for range ticker.C {
		removed, err := refreshTokens.CleanupExpired(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("expired token sweep failed")
		} else if removed > 0 {
			log.Info().Int64("removed", removed).Msg("expired refresh tokens swept")
		}

		if _, err := limiter.Cleanup(ctx, 24*time.Hour); err != nil {
			log.Warn().Err(err).Msg("rate limit window sweep failed")
		}
	}
}

func initLogging(c config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		return
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
