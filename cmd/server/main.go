package main

import (
	"flag"

	"babnet-backend/lib/configutil"
	"babnet-backend/lib/mealstore"
	"babnet-backend/lib/scrapers/dimigo"
	"babnet-backend/lib/serviceutil"
	"babnet-backend/services/cafeteria/server"

	"github.com/gin-gonic/gin"
)

type FetchConfig struct {
	TimeoutSeconds   int `json:"timeout_seconds"`
	Retries          int `json:"retries"`
	BaseDelaySeconds int `json:"base_delay_seconds"`
}

type Config struct {
	Port       int                    `json:"port"`
	Website    dimigo.Options         `json:"website"`
	Fetch      FetchConfig            `json:"fetch"`
	Mongo      mealstore.MongoOptions `json:"mongo"`
	CronSecret string                 `json:"cron_secret"`
	// cron expression for the periodic full refresh, empty to disable
	Schedule string `json:"schedule"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	initialRefresh := flag.Bool("refresh", false, "Trigger a full refresh immediately on run.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}

	store := mealstore.NewMongoStore(cfg.Mongo)
	if err := store.Connect(ctx); err != nil {
		serviceutil.Fatal("connect mongodb", err)
	}
	defer store.Disconnect(ctx)

	service, err := InitCafeteria(cfg, store)
	if err != nil {
		serviceutil.Fatal("init cafeteria", err)
	}

	stopCron, err := InitSchedule(ctx, cfg.Schedule, service, initialRefresh)
	if err != nil {
		serviceutil.Fatal("init schedule", err)
	}
	defer stopCron()

	if !*verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	server.New(service, store, cfg.CronSecret, nil).Register(router)

	go serviceutil.StartHttpServer(cfg.Port, router)
	<-ctx.Done()
}
