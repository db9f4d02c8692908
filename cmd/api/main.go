package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-storefront/internal/address"
	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/checkout"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/httpx"
	"github.com/ariefcatur/go-storefront/internal/identity"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/session"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := config.NewLogger(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := postgres.Migrate(ctx, db); err != nil {
		log.Error("migrate", "err", err)
		os.Exit(1)
	}

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// one producer per topic
	producers := map[string]*kafkax.Producer{}
	publishers := map[string]orders.Publisher{}
	for _, topic := range orders.Topics {
		p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, log)
		p.Start(ctx)
		producers[topic] = p
		publishers[topic] = p
	}

	var numbers orders.NumberGenerator = &orders.PostgresNumbers{DB: db}
	if cfg.OrderNumberSource == "redis" {
		numbers = &orders.RedisNumbers{Redis: rdb}
	}
	orderSvc := &orders.Service{
		Store:      &orders.Repo{DB: db},
		Numbers:    numbers,
		Cache:      &orders.RedisStatusCache{Redis: rdb},
		Publishers: publishers,
		Producer:   cfg.ServiceName,
		Log:        log.With("component", "orders"),
	}

	prices, err := catalog.NewFormatter(cfg.Currency, cfg.Locale)
	if err != nil {
		log.Error("price formatter", "err", err)
		os.Exit(1)
	}
	reader := &catalog.Reader{DB: db}
	profiles := &identity.ProfileRepo{DB: db}
	sessions := session.NewManager(&cart.Repo{DB: db}, log)

	if cfg.JWTSecret == "" {
		log.Warn("JWT_SECRET is empty; every bearer token will be rejected")
	}
	router := httpx.NewRouter(httpx.RouterOptions{
		Timeout:  cfg.RequestTimeout,
		Verifier: identity.NewTokenVerifier(cfg.JWTSecret, cfg.JWTIssuer),
		Profiles: profiles,
		Log:      log,
	})
	(&httpx.CatalogHandler{Catalog: reader, Prices: prices, Log: log}).Register(router)
	(&httpx.CartHandler{Sessions: sessions, Products: reader, Log: log}).Register(router)
	(&httpx.CheckoutHandler{
		Sessions: sessions,
		Checkout: &checkout.Service{
			Orders: orderSvc,
			Pricing: orders.Pricing{
				TaxRate:               cfg.TaxRate,
				FreeShippingThreshold: cfg.FreeShippingThreshold,
				FlatShippingFee:       cfg.FlatShippingFee,
			},
			Redis: rdb,
			Log:   log.With("component", "checkout"),
		},
		Log: log,
	}).Register(router)
	(&httpx.OrdersHandler{Orders: orderSvc, Log: log}).Register(router)
	(&httpx.AccountHandler{
		Addresses: address.NewBook(&address.Repo{DB: db}, log),
		Profiles:  profiles,
		Log:       log,
	}).Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("listen", "err", err)
			os.Exit(1)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
	cancel()
}
