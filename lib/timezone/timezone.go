package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Seoul")
	if err != nil {
		panic(err)
	}
}

// force the timezone to Seoul because the servers this runs on are
// usually not in Korea, which breaks every calendar computation based
// on <time.Time>.Year()/Month()/Day()
func Now() time.Time {
	return time.Now().In(Location)
}

const dateLayout = "2006-01-02"

// FormatDate renders a time as the YYYY-MM-DD key used throughout
// the meal store.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD key into a midnight time in Seoul.
func ParseDate(key string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, key, Location)
}
