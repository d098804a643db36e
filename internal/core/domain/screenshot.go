package domain

import (
	"fmt"
	"strings"
)

// ScreenshotSummary is one archived screenshot as returned by a range
// query. URL is a time-limited signed link issued by the blob store.
type ScreenshotSummary struct {
	Key     string `json:"key"`
	Date    string `json:"date"`
	Company string `json:"company"`
	URL     string `json:"url"`
}

// ScreenshotKey derives the object key for an archived screenshot:
// "<YYYY-MM-DD>_<company>_<epochMillis>". Queries re-parse this key
// instead of reading object metadata, so the layout is load-bearing.
func ScreenshotKey(date, company string, capturedAtMillis int64) string {
	return fmt.Sprintf("%s_%s_%d", date, company, capturedAtMillis)
}

// SplitScreenshotKey recovers (date, company) from an object key. The
// company segment cannot itself contain "_" (rejected at store time),
// so splitting on the first two underscores is unambiguous.
func SplitScreenshotKey(key string) (date, company string, ok bool) {
	parts := strings.SplitN(key, "_", 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
