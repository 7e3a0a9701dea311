// Command otpgated serves the OTP-gated authentication flows over HTTP.
//
// Configuration comes from the environment (a .env file is loaded when
// present). The important knobs:
//
//	OTPGATE_ADDR           listen address (default :8080)
//	OTPGATE_DEV            "true" drops the Secure cookie attribute and
//	                       enables in-process fallbacks below
//	OTPGATE_JWT_SECRET     HS256 secret, >= 32 bytes (required)
//	OTPGATE_JWT_ISSUER     token issuer (required)
//	OTPGATE_JWT_AUDIENCE   token audience (required)
//	OTPGATE_REDIS_ADDR     challenge store; empty in dev mode falls back
//	                       to the in-process store
//	OTPGATE_DATABASE_URL   postgres DSN; empty in dev mode falls back to
//	                       the in-memory user store
//	OTPGATE_SMTP_HOST      SMTP relay; empty in dev mode logs OTPs to
//	                       stdout instead of delivering them
//	OTPGATE_SMTP_PORT, OTPGATE_SMTP_FROM, OTPGATE_SMTP_USER,
//	OTPGATE_SMTP_PASS
//	OTPGATE_GOOGLE_CLIENT_ID, OTPGATE_GOOGLE_CLIENT_SECRET,
//	OTPGATE_GOOGLE_REDIRECT_URL
//	OTPGATE_GOOGLE_SUCCESS_URL, OTPGATE_GOOGLE_FAILURE_URL
//	                       browser destinations after the callback
//	OTPGATE_ARGON2_MEMORY  digest cost in KB; OTPGATE_ARGON2_TIME,
//	                       OTPGATE_ARGON2_PARALLELISM,
//	                       OTPGATE_ARGON2_SALT, OTPGATE_ARGON2_KEYLEN
//	OTPGATE_OTP_TTL_SIGNUP, OTPGATE_OTP_TTL_LOGIN, OTPGATE_OTP_TTL_RESET
//	                       challenge lifetimes, Go duration strings
//	OTPGATE_RESET_STAGE1_TTL, OTPGATE_RESET_STAGE2_TTL
//	                       reset progress-token lifetimes
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/otpgate/otpgate"
	"github.com/otpgate/otpgate/httpapi"
	promexport "github.com/otpgate/otpgate/metrics/export/prometheus"
	"github.com/otpgate/otpgate/notify"
	"github.com/otpgate/otpgate/oauth/google"
	memstore "github.com/otpgate/otpgate/store/memory"
	pgstore "github.com/otpgate/otpgate/store/pg"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	dev := envBool("OTPGATE_DEV")
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	builder := otpgate.New().WithConfig(cfg)

	// Challenge store.
	if addr := os.Getenv("OTPGATE_REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("OTPGATE_REDIS_PASSWORD"),
		})
		if err := client.Ping(ctx).Err(); err != nil {
			return err
		}
		builder.WithRedis(client)
	} else if dev {
		log.Println("no redis configured, using in-process challenge store")
		builder.WithChallengeStore(otpgate.NewMemoryChallengeStore())
	} else {
		return errors.New("OTPGATE_REDIS_ADDR is required outside dev mode")
	}

	// User store.
	var pg *pgstore.Store
	if dsn := os.Getenv("OTPGATE_DATABASE_URL"); dsn != "" {
		store, err := pgstore.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		pg = store
		defer pg.Close()
		builder.WithUserStore(pg)
	} else if dev {
		log.Println("no database configured, using in-memory user store")
		builder.WithUserStore(memstore.New())
	} else {
		return errors.New("OTPGATE_DATABASE_URL is required outside dev mode")
	}

	// Notifier.
	if host := os.Getenv("OTPGATE_SMTP_HOST"); host != "" {
		builder.WithNotifier(notify.NewSMTPSender(notify.SMTPConfig{
			Host:     host,
			Port:     envInt("OTPGATE_SMTP_PORT", 587),
			From:     os.Getenv("OTPGATE_SMTP_FROM"),
			Username: os.Getenv("OTPGATE_SMTP_USER"),
			Password: os.Getenv("OTPGATE_SMTP_PASS"),
			TLSMode:  os.Getenv("OTPGATE_SMTP_TLS_MODE"),
		}))
	} else if dev {
		log.Println("no SMTP configured, logging OTPs to stdout")
		builder.WithNotifier(notify.NewLogSender(os.Stdout))
	} else {
		return errors.New("OTPGATE_SMTP_HOST is required outside dev mode")
	}

	builder.WithAuditSink(otpgate.NewJSONWriterSink(os.Stderr))

	engine, err := builder.Build()
	if err != nil {
		return err
	}
	defer engine.Close()

	serverCfg := httpapi.Config{
		Engine:     engine,
		Metrics:    promexport.New(engine).Handler(),
		AccessTTL:  cfg.Token.AccessTTL,
		RefreshTTL: cfg.Token.RefreshTTL,
		Dev:        dev,
	}
	if clientID := os.Getenv("OTPGATE_GOOGLE_CLIENT_ID"); clientID != "" {
		serverCfg.Google = google.New(google.Config{
			ClientID:     clientID,
			ClientSecret: os.Getenv("OTPGATE_GOOGLE_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OTPGATE_GOOGLE_REDIRECT_URL"),
		})
		serverCfg.GoogleSuccessURL = os.Getenv("OTPGATE_GOOGLE_SUCCESS_URL")
		serverCfg.GoogleFailureURL = os.Getenv("OTPGATE_GOOGLE_FAILURE_URL")
	}

	addr := os.Getenv("OTPGATE_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewServer(serverCfg).Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// loadConfig starts from the engine defaults and overlays everything the
// environment provides: signing material, digest cost, and the challenge
// and reset-token lifetimes.
func loadConfig() otpgate.Config {
	cfg := otpgate.DefaultConfig()

	cfg.Token.Secret = []byte(os.Getenv("OTPGATE_JWT_SECRET"))
	cfg.Token.Issuer = os.Getenv("OTPGATE_JWT_ISSUER")
	cfg.Token.Audience = os.Getenv("OTPGATE_JWT_AUDIENCE")

	cfg.Digest.Memory = envUint32("OTPGATE_ARGON2_MEMORY", cfg.Digest.Memory)
	cfg.Digest.Time = envUint32("OTPGATE_ARGON2_TIME", cfg.Digest.Time)
	cfg.Digest.Parallelism = envUint8("OTPGATE_ARGON2_PARALLELISM", cfg.Digest.Parallelism)
	cfg.Digest.SaltLength = envUint32("OTPGATE_ARGON2_SALT", cfg.Digest.SaltLength)
	cfg.Digest.KeyLength = envUint32("OTPGATE_ARGON2_KEYLEN", cfg.Digest.KeyLength)

	cfg.OTP.SignupTTL = envDuration("OTPGATE_OTP_TTL_SIGNUP", cfg.OTP.SignupTTL)
	cfg.OTP.LoginTTL = envDuration("OTPGATE_OTP_TTL_LOGIN", cfg.OTP.LoginTTL)
	cfg.OTP.ResetTTL = envDuration("OTPGATE_OTP_TTL_RESET", cfg.OTP.ResetTTL)

	cfg.Reset.Stage1TTL = envDuration("OTPGATE_RESET_STAGE1_TTL", cfg.Reset.Stage1TTL)
	cfg.Reset.Stage2TTL = envDuration("OTPGATE_RESET_STAGE2_TTL", cfg.Reset.Stage2TTL)

	return cfg
}

func envBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func envInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func envUint32(key string, fallback uint32) uint32 {
	v, err := strconv.ParseUint(os.Getenv(key), 10, 32)
	if err != nil {
		return fallback
	}
	return uint32(v)
}

func envUint8(key string, fallback uint8) uint8 {
	v, err := strconv.ParseUint(os.Getenv(key), 10, 8)
	if err != nil {
		return fallback
	}
	return uint8(v)
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
