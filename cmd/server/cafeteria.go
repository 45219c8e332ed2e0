package main

import (
	"context"
	"log/slog"
	"time"

	"babnet-backend/lib/fetchutil"
	"babnet-backend/lib/mealstore"
	"babnet-backend/lib/scrapers/dimigo"
	"babnet-backend/lib/timezone"
	"babnet-backend/services/cafeteria"

	"github.com/robfig/cron/v3"
)

func fetchOptions(cfg FetchConfig) fetchutil.Options {
	opts := fetchutil.DefaultOptions()
	if cfg.TimeoutSeconds > 0 {
		opts.Timeout = time.Second * time.Duration(cfg.TimeoutSeconds)
	}
	if cfg.Retries > 0 {
		opts.Retries = cfg.Retries
	}
	if cfg.BaseDelaySeconds > 0 {
		opts.BaseDelay = time.Second * time.Duration(cfg.BaseDelaySeconds)
	}
	return opts
}

func InitCafeteria(cfg Config, store mealstore.Store) (cafeteria.Service, error) {
	website := cfg.Website
	if website.BaseUrl == "" {
		website = dimigo.DefaultOptions()
	}

	client, err := dimigo.NewClient(website, fetchOptions(cfg.Fetch))
	if err != nil {
		return cafeteria.Service{}, err
	}
	return cafeteria.NewService(store, client, nil), nil
}

// InitSchedule starts the periodic full refresh when a cron expression
// is configured. the returned func stops the scheduler.
func InitSchedule(ctx context.Context, schedule string, service cafeteria.Service, immediate *bool) (func(), error) {
	refresh := func() {
		_, err := service.Refresh(ctx, cafeteria.RefreshAll)
		if err != nil {
			slog.ErrorContext(ctx, "scheduled refresh failed", "err", err)
		}
	}

	if immediate != nil && *immediate {
		go refresh()
	}

	if schedule == "" {
		return func() {}, nil
	}

	scheduler := cron.New(cron.WithLocation(timezone.Location))
	_, err := scheduler.AddFunc(schedule, refresh)
	if err != nil {
		return nil, err
	}
	scheduler.Start()
	slog.InfoContext(ctx, "scheduled periodic refresh", "schedule", schedule)

	return func() { scheduler.Stop() }, nil
}
