package main

import (
	"context"
	"log"
	"net"
	"time"

	"fieldforce-system/config"
	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/gateway/clients"
	"fieldforce-system/internal/geo"
	"fieldforce-system/internal/metrics"
	"fieldforce-system/internal/notify"
	"fieldforce-system/internal/rpc"
	"fieldforce-system/internal/search"
	"fieldforce-system/internal/services"
	"fieldforce-system/internal/session"
	"fieldforce-system/internal/utils"
)

const healthRefreshInterval = 30 * time.Second

func main() {
	cfg := config.LoadConfig()
	if cfg.Auth.DefaultSecret() {
		log.Println("Warning: JWT_SECRET is not set, signing tokens with the built-in development secret")
	}
	utils.SetSecret(cfg.Auth.JWTSecret)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	store, err := database.Open(ctx, cfg.Store.Driver, cfg.Store.DSN, cfg.Store.BoltPath)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.Store.Driver, err)
	}
	defer store.Close()

	probes := []rpc.Probe{{Service: "store", Check: store.Ping}}

	var sessions session.Store = session.NewMemoryStore()
	var reportCache cache.Cache = cache.Noop{}
	if cfg.Redis.Enabled() {
		redisClient, err := config.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("Warning: %v. Sessions stay in memory and caching is off.", err)
		} else {
			defer redisClient.Close()
			sessions = session.NewRedisStore(redisClient)
			reportCache = cache.NewRedisCache(redisClient)
			probes = append(probes, rpc.Probe{Service: "redis", Check: func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			}})
		}
	}

	var index *search.Index
	if cfg.Search.Enabled {
		index, err = search.NewIndex()
		if err != nil {
			log.Fatalf("Failed to create search index: %v", err)
		}
		defer index.Close()
		if err := index.Rebuild(ctx, store); err != nil {
			log.Printf("Warning: search index rebuild failed: %v", err)
		}
	}

	notifiers := notify.Multi{notify.LogNotifier{}}
	if cfg.Telegram.Token != "" {
		tg, err := notify.NewTelegramNotifier(cfg.Telegram.Token, cfg.Telegram.ChatIDs)
		if err != nil {
			log.Printf("Warning: Telegram notifications disabled: %v", err)
		} else {
			notifiers = append(notifiers, tg)
		}
	}

	m := metrics.New()
	device := geo.NewDeviceBridge()
	tracker := geo.NewTracker(device, geo.DefaultPolicy(), geo.Options{
		Timeout:      cfg.Geo.Timeout,
		MaxAge:       cfg.Geo.MaxAge,
		HighAccuracy: true,
	})

	svc := services.New(services.Deps{
		Store:    store,
		Cache:    reportCache,
		Index:    index,
		Notifier: notifiers,
		Metrics:  m,
		Tracker:  tracker,
	})
	gate := session.NewGate(store, store, sessions, cfg.Auth.SessionTTL)

	grpcServer := rpc.NewServer(probes...)
	lis, err := net.Listen("tcp", ":"+cfg.GRPC.Port)
	if err != nil {
		log.Fatalf("Failed to listen: %v", err)
	}
	go func() {
		log.Printf("Health service listening on :%s", cfg.GRPC.Port)
		if err := grpcServer.Serve(lis); err != nil {
			log.Printf("Health service stopped: %v", err)
		}
	}()
	defer grpcServer.Stop()
	go grpcServer.Watch(ctx, healthRefreshInterval)

	healthClient, err := clients.NewHealthClient(cfg.GRPC.HealthTarget)
	if err != nil {
		log.Printf("Warning: detailed health will skip gRPC: %v", err)
	}
	defer healthClient.Close()

	r, err := newRouter(&app{
		gate:        gate,
		services:    svc,
		tracker:     tracker,
		device:      device,
		metrics:     m,
		probes:      probes,
		health:      healthClient,
		rateLimit:   cfg.HTTP.RateLimit,
		corsOrigins: cfg.HTTP.CORSOrigins,
	})
	if err != nil {
		log.Fatalf("Failed to build router: %v", err)
	}

	port := ":" + cfg.HTTP.Port
	log.Printf("Starting server on port %s", port)
	if err := r.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
