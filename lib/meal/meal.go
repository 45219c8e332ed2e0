// Package meal holds the data model shared by the scraper, the store
// and the API: one cafeteria day is three meals, each with a regular
// item list, an optional "simple meal" item list and a photo url.
package meal

type Type string

const (
	Breakfast Type = "breakfast"
	Lunch     Type = "lunch"
	Dinner    Type = "dinner"
)

// Types is the fixed scan order used by the food-image search.
var Types = []Type{Breakfast, Lunch, Dinner}

type Meal struct {
	Regular []string `json:"regular" bson:"regular"`
	Simple  []string `json:"simple" bson:"simple"`
	Image   string   `json:"image" bson:"image"`
}

func (m Meal) Empty() bool {
	return len(m.Regular) == 0 && len(m.Simple) == 0
}

type CafeteriaData struct {
	Breakfast Meal `json:"breakfast" bson:"breakfast"`
	Lunch     Meal `json:"lunch" bson:"lunch"`
	Dinner    Meal `json:"dinner" bson:"dinner"`
}

// NewCafeteriaData returns a day with all three meals present but
// empty. item lists are non-nil so the wire format always carries []
// instead of null.
func NewCafeteriaData() CafeteriaData {
	empty := func() Meal {
		return Meal{Regular: []string{}, Simple: []string{}}
	}
	return CafeteriaData{
		Breakfast: empty(),
		Lunch:     empty(),
		Dinner:    empty(),
	}
}

// Empty reports whether all six item lists are empty. an all-empty day
// is still distinguishable from "no document exists for this date".
func (d CafeteriaData) Empty() bool {
	return d.Breakfast.Empty() && d.Lunch.Empty() && d.Dinner.Empty()
}

func (d CafeteriaData) Meal(t Type) Meal {
	switch t {
	case Breakfast:
		return d.Breakfast
	case Lunch:
		return d.Lunch
	case Dinner:
		return d.Dinner
	}
	return Meal{}
}

func (d *CafeteriaData) SetMeal(t Type, m Meal) {
	switch t {
	case Breakfast:
		d.Breakfast = m
	case Lunch:
		d.Lunch = m
	case Dinner:
		d.Dinner = m
	}
}
