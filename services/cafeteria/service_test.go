package cafeteria

import (
	"context"
	"errors"
	"testing"
	"time"

	"babnet-backend/lib/meal"
	"babnet-backend/lib/mealstore"
	"babnet-backend/lib/scrapers/dimigo"
	"babnet-backend/lib/telemetry"
	"babnet-backend/lib/timezone"

	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	fetchMenuPosts func(ctx context.Context) ([]dimigo.MenuPost, error)
	fetchPosting   func(ctx context.Context, documentId string) (meal.CafeteriaData, error)
}

func (f fakeSource) FetchMenuPosts(ctx context.Context) ([]dimigo.MenuPost, error) {
	return f.fetchMenuPosts(ctx)
}

func (f fakeSource) FetchPosting(ctx context.Context, documentId string) (meal.CafeteriaData, error) {
	return f.fetchPosting(ctx, documentId)
}

func fixedClock(dateKey string) func() time.Time {
	date, err := timezone.ParseDate(dateKey)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return date }
}

func lunchOf(items ...string) meal.CafeteriaData {
	data := meal.NewCafeteriaData()
	data.Lunch.Regular = items
	return data
}

func TestGetCafeteriaDataStoredAndCached(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:cafeteria")
	defer cleanup()

	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	saved := lunchOf("비빔밥")
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", saved, "55"))

	service := NewService(store, fakeSource{}, fixedClock("2024-10-02"))

	got, err := service.GetCafeteriaData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Equal(t, saved, got)

	// second lookup is served from the cache
	_, ok := service.cache.Get("2024-10-02")
	require.True(t, ok)

	got, err = service.GetCafeteriaData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Equal(t, saved, got)
}

func TestGetCafeteriaDataEmptyStore(t *testing.T) {
	store := mealstore.NewMemoryStore()
	service := NewService(store, fakeSource{}, fixedClock("2024-10-02"))

	_, err := service.GetCafeteriaData(context.Background(), "2024-10-02")
	require.ErrorIs(t, err, ErrNoInformation)
}

func TestGetCafeteriaDataRangeDecision(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveMealData(ctx, "2024-10-01", lunchOf("국수"), "50"))
	require.NoError(t, store.SaveMealData(ctx, "2024-10-05", lunchOf("볶음밥"), "54"))

	service := NewService(store, fakeSource{}, fixedClock("2024-10-02"))

	// gap inside the stored span means no operation that day
	_, err := service.GetCafeteriaData(ctx, "2024-10-03")
	require.ErrorIs(t, err, ErrNoOperation)

	// outside the span means no information at all
	_, err = service.GetCafeteriaData(ctx, "2024-09-30")
	require.ErrorIs(t, err, ErrNoInformation)
	_, err = service.GetCafeteriaData(ctx, "2024-10-06")
	require.ErrorIs(t, err, ErrNoInformation)
}

func TestFetchAndSaveStoresPosting(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	parsed := lunchOf("돈까스")
	source := fakeSource{
		fetchPosting: func(_ context.Context, documentId string) (meal.CafeteriaData, error) {
			require.Equal(t, "55", documentId)
			return parsed, nil
		},
	}
	service := NewService(store, source, fixedClock("2024-10-02"))

	posts := []dimigo.MenuPost{{DocumentId: "55", Date: "2024-10-02"}}
	got, err := service.FetchAndSave(ctx, "2024-10-02", posts)
	require.NoError(t, err)
	require.Equal(t, parsed, got)

	stored, err := store.GetMealData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, parsed, *stored)

	id, err := store.GetDocumentId(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Equal(t, "55", id)
}

func TestFetchAndSaveDecidesFromScannedPosts(t *testing.T) {
	service := NewService(mealstore.NewMemoryStore(), fakeSource{}, fixedClock("2024-10-02"))
	ctx := context.Background()

	posts := []dimigo.MenuPost{
		{DocumentId: "50", Date: "2024-10-01"},
		{DocumentId: "54", Date: "2024-10-05"},
	}

	_, err := service.FetchAndSave(ctx, "2024-10-03", posts)
	require.ErrorIs(t, err, ErrNoOperation)

	_, err = service.FetchAndSave(ctx, "2024-10-06", posts)
	require.ErrorIs(t, err, ErrNoInformation)

	_, err = service.FetchAndSave(ctx, "2024-10-02", nil)
	require.ErrorIs(t, err, ErrNoInformation)
}

func TestEmptyParsePreservesExistingData(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	existing := lunchOf("김치찌개")
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", existing, "55"))

	source := fakeSource{
		fetchPosting: func(context.Context, string) (meal.CafeteriaData, error) {
			return meal.NewCafeteriaData(), nil
		},
	}
	service := NewService(store, source, fixedClock("2024-10-02"))

	got, err := service.FetchAndSave(ctx, "2024-10-02", []dimigo.MenuPost{{DocumentId: "55", Date: "2024-10-02"}})
	require.NoError(t, err)
	require.Equal(t, existing, got)

	stored, err := store.GetMealData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Equal(t, existing, *stored)
}

func TestEmptyParsePersistedWhenNothingStored(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	source := fakeSource{
		fetchPosting: func(context.Context, string) (meal.CafeteriaData, error) {
			return meal.NewCafeteriaData(), nil
		},
	}
	service := NewService(store, source, fixedClock("2024-10-02"))

	got, err := service.FetchAndSave(ctx, "2024-10-02", []dimigo.MenuPost{{DocumentId: "55", Date: "2024-10-02"}})
	require.NoError(t, err)
	require.True(t, got.Empty())

	stored, err := store.GetMealData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestRefreshSpecificDate(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", lunchOf("국수"), "55"))

	updated := lunchOf("갈비탕")
	source := fakeSource{
		fetchPosting: func(_ context.Context, documentId string) (meal.CafeteriaData, error) {
			require.Equal(t, "55", documentId)
			return updated, nil
		},
	}
	service := NewService(store, source, fixedClock("2024-10-02"))

	got, err := service.RefreshSpecificDate(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Equal(t, updated, got)

	_, err = service.RefreshSpecificDate(ctx, "2024-10-03")
	require.ErrorIs(t, err, ErrNoInformation)
}

func TestRefreshIsolatesPostingFailures(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	posts := []dimigo.MenuPost{
		{DocumentId: "51", Date: "2024-10-01"},
		{DocumentId: "52", Date: "2024-10-02"},
		{DocumentId: "53", Date: "2024-10-03"},
		{DocumentId: "54", Date: "2024-10-04"},
		{DocumentId: "55", Date: "2024-10-05"},
	}
	source := fakeSource{
		fetchMenuPosts: func(context.Context) ([]dimigo.MenuPost, error) {
			return posts, nil
		},
		fetchPosting: func(_ context.Context, documentId string) (meal.CafeteriaData, error) {
			if documentId == "53" {
				return meal.CafeteriaData{}, errors.New("boom")
			}
			return lunchOf("메뉴 " + documentId), nil
		},
	}
	service := NewService(store, source, fixedClock("2024-10-02"))

	report, err := service.Refresh(ctx, RefreshAll)
	require.NoError(t, err)
	require.Equal(t, RefreshReport{Success: 4, Errors: 1}, report)

	// siblings after the failing posting were still processed
	stored, err := store.GetMealData(ctx, "2024-10-05")
	require.NoError(t, err)
	require.NotNil(t, stored)

	missing, err := store.GetMealData(ctx, "2024-10-03")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestRefreshTodayOnly(t *testing.T) {
	store := mealstore.NewMemoryStore()
	ctx := context.Background()

	var fetched []string
	source := fakeSource{
		fetchMenuPosts: func(context.Context) ([]dimigo.MenuPost, error) {
			return []dimigo.MenuPost{
				{DocumentId: "51", Date: "2024-10-01"},
				{DocumentId: "52", Date: "2024-10-02"},
			}, nil
		},
		fetchPosting: func(_ context.Context, documentId string) (meal.CafeteriaData, error) {
			fetched = append(fetched, documentId)
			return lunchOf("오늘 메뉴"), nil
		},
	}
	service := NewService(store, source, fixedClock("2024-10-02"))

	report, err := service.Refresh(ctx, RefreshToday)
	require.NoError(t, err)
	require.Equal(t, RefreshReport{Success: 1}, report)
	require.Equal(t, []string{"52"}, fetched)
}

func TestRefreshListingFailureIsFatal(t *testing.T) {
	source := fakeSource{
		fetchMenuPosts: func(context.Context) ([]dimigo.MenuPost, error) {
			return nil, errors.New("listing down")
		},
	}
	service := NewService(mealstore.NewMemoryStore(), source, fixedClock("2024-10-02"))

	_, err := service.Refresh(context.Background(), RefreshAll)
	require.Error(t, err)
}
