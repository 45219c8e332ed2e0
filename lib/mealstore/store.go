// Package mealstore owns the per-date menu documents. everything else
// reads and writes through the Store interface and never touches the
// underlying collection handle.
package mealstore

import (
	"context"
	"strings"
	"time"

	"babnet-backend/lib/meal"
)

// Document is the persistence record for one calendar date. the date
// key is immutable once created; there is no delete operation.
type Document struct {
	Date       string             `bson:"_id"`
	Data       meal.CafeteriaData `bson:"data"`
	DocumentId string             `bson:"documentId"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

// DateRange is the span of date keys present in the store. both fields
// are "" when the store is empty.
type DateRange struct {
	Earliest string
	Latest   string
}

type FoodImage struct {
	Image    string
	Date     string
	MealType meal.Type
}

type Stats struct {
	TotalMealData int64
	LastUpdated   *time.Time
}

type Store interface {
	// SaveMealData upserts the document for a date, bumping updatedAt
	// in place when one already exists.
	SaveMealData(ctx context.Context, date string, data meal.CafeteriaData, documentId string) error
	// GetMealData returns nil when no document exists for the date.
	GetMealData(ctx context.Context, date string) (*meal.CafeteriaData, error)
	GetDateRange(ctx context.Context) (DateRange, error)
	// GetDocumentId returns "" when no document exists for the date.
	GetDocumentId(ctx context.Context, date string) (string, error)
	// SearchLatestFoodImage scans documents by date descending and
	// returns the first meal (breakfast, lunch, dinner order) whose
	// items contain foodName case-insensitively AND that has a photo.
	// textual matches without a photo are skipped, not terminal.
	SearchLatestFoodImage(ctx context.Context, foodName string) (*FoodImage, error)
	Stats(ctx context.Context) (Stats, error)
}

// searchDocument applies the food-image match rule to one document.
// shared by every Store implementation so their semantics cannot
// drift apart.
func searchDocument(doc Document, foodName string) (FoodImage, bool) {
	needle := strings.ToLower(foodName)

	containsFood := func(items []string) bool {
		for _, item := range items {
			if strings.Contains(strings.ToLower(item), needle) {
				return true
			}
		}
		return false
	}

	for _, mealType := range meal.Types {
		m := doc.Data.Meal(mealType)
		if m.Image == "" {
			continue
		}
		if containsFood(m.Regular) || containsFood(m.Simple) {
			return FoodImage{
				Image:    m.Image,
				Date:     doc.Date,
				MealType: mealType,
			}, true
		}
	}
	return FoodImage{}, false
}
