package dimigo

import (
	"regexp"
	"strings"

	"babnet-backend/lib/meal"
)

var mealMarkers = []struct {
	Type   meal.Type
	Marker string
}{
	{meal.Breakfast, "*조식:"},
	{meal.Lunch, "*중식:"},
	{meal.Dinner, "*석식:"},
}

var simpleMealRegex = regexp.MustCompile(`^<간편식>\s*`)

// ParseMenu splits a free-text meal line into items on '/' delimiters,
// except when the '/' sits inside a parenthesized span, so that
// "탕수육(소스/튀김)" stays a single item.
func ParseMenu(menuStr string) []string {
	if menuStr == "" {
		return []string{}
	}

	items := []string{}
	var current strings.Builder
	parenDepth := 0

	flush := func() {
		item := strings.TrimSpace(current.String())
		if item != "" {
			items = append(items, item)
		}
		current.Reset()
	}

	for _, char := range menuStr {
		switch {
		case char == '(':
			parenDepth++
			current.WriteRune(char)
		case char == ')':
			if parenDepth > 0 {
				parenDepth--
			}
			current.WriteRune(char)
		case char == '/' && parenDepth == 0:
			flush()
		default:
			current.WriteRune(char)
		}
	}
	flush()

	return items
}

func isMealMarkerLine(line string) bool {
	for _, m := range mealMarkers {
		if strings.HasPrefix(line, m.Marker) {
			return true
		}
	}
	return false
}

// parseMealSection reads the regular items off the marker line itself,
// then scans forward for an embedded <간편식> line. the scan stops at
// the next meal marker, or at the first line that is neither blank nor
// the simple-meal line once no simple meal was found.
func parseMealSection(lines []string, start int, marker string) (regular, simple []string) {
	mealText := strings.TrimSpace(strings.TrimPrefix(lines[start], marker))
	regular = ParseMenu(mealText)
	simple = []string{}

	for i := start + 1; i < len(lines); i++ {
		line := lines[i]
		if isMealMarkerLine(line) {
			break
		}
		if simpleMealRegex.MatchString(line) {
			simpleText := strings.TrimSpace(simpleMealRegex.ReplaceAllString(line, ""))
			simple = ParseMenu(simpleText)
		}
		if len(simple) > 0 || line == "" {
			continue
		}
		break
	}

	return regular, simple
}

// parseContent turns a posting's content lines into the three-meal
// structure.
func parseContent(lines []string) meal.CafeteriaData {
	data := meal.NewCafeteriaData()

	for i, line := range lines {
		for _, m := range mealMarkers {
			if !strings.HasPrefix(line, m.Marker) {
				continue
			}
			regular, simple := parseMealSection(lines, i, m.Marker)
			parsed := data.Meal(m.Type)
			parsed.Regular = regular
			parsed.Simple = simple
			data.SetMeal(m.Type, parsed)
		}
	}

	return data
}
