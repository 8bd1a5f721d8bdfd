package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/lab-booking/internal/config"
	"github.com/iliyamo/lab-booking/internal/database"
	"github.com/iliyamo/lab-booking/internal/handler"
	"github.com/iliyamo/lab-booking/internal/queue"
	"github.com/iliyamo/lab-booking/internal/repository"
	"github.com/iliyamo/lab-booking/internal/router"
	"github.com/iliyamo/lab-booking/internal/service"
	"github.com/iliyamo/lab-booking/internal/session"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Apply database migrations and exit")
	seedAdminFlag   = flag.Bool("seed-admin", false, "Create the admin account from ADMIN_PHONE/ADMIN_PASSWORD and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), time.Minute)
	err = database.Migrate(migrateCtx, db)
	cancelMigrate()
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if *migrateOnlyFlag {
		log.Println("migrations applied")
		return
	}

	auth := service.NewAuthService(repository.NewAccountRepo(db), cfg.JWTSecret, cfg.Session.TTL, cfg.BcryptCost)

	if *seedAdminFlag {
		if cfg.Admin.Phone == "" || cfg.Admin.Password == "" {
			log.Fatal("seed-admin: ADMIN_PHONE and ADMIN_PASSWORD are required")
		}
		created, err := auth.EnsureAdmin(context.Background(), cfg.Admin.Name, cfg.Admin.Phone, cfg.Admin.Password)
		if err != nil {
			log.Fatalf("seed-admin: %v", err)
		}
		if created {
			log.Printf("admin account %s created", cfg.Admin.Phone)
		} else {
			log.Printf("phone %s already registered; nothing to do", cfg.Admin.Phone)
		}
		return
	}

	// Redis is optional: without it there is no rate limiting or response
	// cache, and logouts are remembered only by this process.
	rdb := config.NewRedisClient()
	var revoked session.Revocations
	if rdb != nil {
		defer rdb.Close()
		revoked = session.NewRedisRevocations(rdb, cfg.Session.RevokedPrefix)
	} else {
		log.Println("redis unavailable; rate limiting and cache disabled")
		revoked = session.NewMemoryRevocations()
	}

	slots := session.Slots{
		User:     cfg.Session.UserCookie,
		SubAdmin: cfg.Session.SubAdminCookie,
		Admin:    cfg.Session.AdminCookie,
	}
	sources := slots.Sources()
	if len(cfg.Session.Sources) > 0 {
		if sources, err = session.ParseSources(cfg.Session.Sources); err != nil {
			log.Fatalf("SESSION_SOURCES: %v", err)
		}
	}
	exposeToken := false
	for _, s := range sources {
		if _, ok := s.(session.BearerSource); ok {
			exposeToken = true
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events service.EventPublisher
	if cfg.Queue.Enabled {
		events = queue.NewPublisher(cfg.Queue.URL)
		consumer := queue.NewAuditConsumer(cfg.Queue.URL, cfg.Queue.AuditLogDir)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("booking-consumer: stopped: %v", err)
			}
		}()
	}

	cookies := session.CookieWriter{Slots: slots, Secure: cfg.Session.CookieSecure, Domain: cfg.Session.CookieDomain}

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.BodyLimit("64K"))

	router.New(e, router.Deps{
		DB:        db,
		Auth:      handler.NewAuthHandler(auth, cookies, revoked, exposeToken),
		Bookings:  handler.NewBookingHandler(service.NewBookingService(repository.NewBookingRepo(db), events)),
		Verifier:  session.NewVerifier(cfg.JWTSecret, sources, revoked),
		Redis:     rdb,
		RateLimit: config.LoadRateLimitConfig(),
		LoginRate: config.LoadLoginRateLimitConfig(),
		Cache:     config.LoadCacheConfig(),
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
