package mealstore

import (
	"context"
	"testing"
	"time"

	"babnet-backend/lib/meal"
	"babnet-backend/lib/telemetry"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func sampleData(image string) meal.CafeteriaData {
	data := meal.NewCafeteriaData()
	data.Lunch.Regular = []string{"돈까스(소스/머스타드)", "샐러드"}
	data.Lunch.Simple = []string{"샌드위치"}
	data.Lunch.Image = image
	return data
}

func TestRoundTrip(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:mealstore")
	defer cleanup()

	store := NewMemoryStore()
	ctx := context.Background()

	missing, err := store.GetMealData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Nil(t, missing)

	saved := sampleData("https://example.com/lunch.jpg")
	err = store.SaveMealData(ctx, "2024-10-02", saved, "55")
	require.NoError(t, err)

	got, err := store.GetMealData(ctx, "2024-10-02")
	require.NoError(t, err)
	require.NotNil(t, got)
	if diff := cmp.Diff(saved, *got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}

	id, err := store.GetDocumentId(ctx, "2024-10-02")
	require.NoError(t, err)
	require.Equal(t, "55", id)
}

func TestUpsertKeepsCreatedAt(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", sampleData(""), "55"))
	first, ok := store.Doc("2024-10-02")
	require.True(t, ok)

	time.Sleep(time.Millisecond * 5)
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", sampleData("x"), "56"))
	second, ok := store.Doc("2024-10-02")
	require.True(t, ok)

	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.True(t, second.UpdatedAt.After(first.UpdatedAt))
	require.Equal(t, "56", second.DocumentId)
}

func TestGetDateRange(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	empty, err := store.GetDateRange(ctx)
	require.NoError(t, err)
	require.Equal(t, DateRange{}, empty)

	for _, date := range []string{"2024-10-05", "2024-10-01", "2024-10-03"} {
		require.NoError(t, store.SaveMealData(ctx, date, sampleData(""), "1"))
	}

	got, err := store.GetDateRange(ctx)
	require.NoError(t, err)
	require.Equal(t, DateRange{Earliest: "2024-10-01", Latest: "2024-10-05"}, got)
}

func TestSearchLatestFoodImage(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// older date has a match with an image
	older := meal.NewCafeteriaData()
	older.Dinner.Regular = []string{"치즈돈까스"}
	older.Dinner.Image = "https://example.com/old.jpg"
	require.NoError(t, store.SaveMealData(ctx, "2024-09-20", older, "40"))

	// newer date matches textually but has no photo, so it is skipped
	newer := meal.NewCafeteriaData()
	newer.Lunch.Regular = []string{"돈까스"}
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", newer, "55"))

	found, err := store.SearchLatestFoodImage(ctx, "돈까스")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "2024-09-20", found.Date)
	require.Equal(t, meal.Dinner, found.MealType)
	require.Equal(t, "https://example.com/old.jpg", found.Image)

	missing, err := store.SearchLatestFoodImage(ctx, "피자")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestSearchChecksMealTypesInOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := meal.NewCafeteriaData()
	data.Breakfast.Regular = []string{"김치볶음밥"}
	data.Breakfast.Image = "https://example.com/breakfast.jpg"
	data.Dinner.Regular = []string{"김치찌개"}
	data.Dinner.Image = "https://example.com/dinner.jpg"
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", data, "55"))

	found, err := store.SearchLatestFoodImage(ctx, "김치")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, meal.Breakfast, found.MealType)
}

func TestSearchMatchesSimpleList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	data := meal.NewCafeteriaData()
	data.Lunch.Simple = []string{"참치샌드위치"}
	data.Lunch.Image = "https://example.com/simple.jpg"
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", data, "55"))

	found, err := store.SearchLatestFoodImage(ctx, "샌드위치")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, meal.Lunch, found.MealType)
}

func TestStats(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, stats.TotalMealData)
	require.Nil(t, stats.LastUpdated)

	require.NoError(t, store.SaveMealData(ctx, "2024-10-01", sampleData(""), "1"))
	require.NoError(t, store.SaveMealData(ctx, "2024-10-02", sampleData(""), "2"))

	stats, err = store.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, stats.TotalMealData)
	require.NotNil(t, stats.LastUpdated)
}
