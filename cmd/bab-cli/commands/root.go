package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"babnet-backend/lib/fetchutil"
	"babnet-backend/lib/mealstore"
	"babnet-backend/lib/scrapers/dimigo"
	"babnet-backend/lib/serviceutil"
	"babnet-backend/services/cafeteria"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bab-cli",
	Short: "bab-cli scrapes, inspects and searches cafeteria menu data.",
}

var mongoUri *string

func init() {
	mongoUri = rootCmd.PersistentFlags().String("mongo", "", "MongoDB uri, empty for an in-memory store.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context) mealstore.Store {
	if *mongoUri == "" {
		return mealstore.NewMemoryStore()
	}

	opts := mealstore.DefaultMongoOptions()
	opts.Uri = *mongoUri
	store := mealstore.NewMongoStore(opts)

	connectCtx, cancel := context.WithTimeout(ctx, time.Second*15)
	defer cancel()
	if err := store.Connect(connectCtx); err != nil {
		serviceutil.Fatal("connect mongodb", err)
	}
	return store
}

func createService(ctx context.Context) (cafeteria.Service, mealstore.Store) {
	client, err := dimigo.NewClient(dimigo.DefaultOptions(), fetchutil.DefaultOptions())
	if err != nil {
		serviceutil.Fatal("initialize scraper client", err)
	}
	store := openStore(ctx)
	return cafeteria.NewService(store, client, nil), store
}

func scanPosts(ctx context.Context) ([]dimigo.MenuPost, error) {
	client, err := dimigo.NewClient(dimigo.DefaultOptions(), fetchutil.DefaultOptions())
	if err != nil {
		return nil, err
	}
	return client.FetchMenuPosts(ctx)
}
