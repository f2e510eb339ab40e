package runway

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// DefaultSize is the pixel pair used whenever a ratio cannot be resolved.
const DefaultSize = "1280:720"

// DefaultDuration is the clip length in seconds used for absent or
// malformed durations.
const DefaultDuration = 5

// DefaultVideoModel is the fallback image-to-video model.
const DefaultVideoModel = "gen3_alpha"

// imageModel is the only text-to-image model the API accepts today.
const imageModel = "gen4_image"

var aspectToSize = map[string]string{
	"16:9": "1280:720",
	"9:16": "720:1280",
	"1:1":  "1024:1024",
}

var allowedSizes = map[string]struct{}{
	"1024:1024": {},
	"1080:1080": {},
	"1168:880":  {},
	"1360:768":  {},
	"1440:1080": {},
	"1080:1440": {},
	"1808:768":  {},
	"1920:1080": {},
	"1080:1920": {},
	"2112:912":  {},
	"720:1280":  {},
	"720:720":   {},
	"960:960":   {},
	"1584:672":  {},
	"1280:720":  {},
}

// NormalizeRatio maps a human aspect-ratio label or raw pixel pair to a size
// the API accepts. Unknown input silently becomes DefaultSize: the caller
// gets a valid size, not necessarily the exact one asked for.
func NormalizeRatio(label string) string {
	size := strings.TrimSpace(label)
	if mapped, ok := aspectToSize[size]; ok {
		size = mapped
	}
	if _, ok := allowedSizes[size]; !ok {
		return DefaultSize
	}
	return size
}

// NormalizeDuration coerces whatever a JSON body carried for "duration" into
// a safe positive second count. Zero, negative, non-finite, and unparseable
// values all become DefaultDuration.
func NormalizeDuration(v any) int {
	var f float64
	switch d := v.(type) {
	case nil:
		return DefaultDuration
	case float64:
		f = d
	case int:
		f = float64(d)
	case json.Number:
		parsed, err := d.Float64()
		if err != nil {
			return DefaultDuration
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(d), 64)
		if err != nil {
			return DefaultDuration
		}
		f = parsed
	default:
		return DefaultDuration
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f <= 0 {
		return DefaultDuration
	}
	return int(f)
}

func normalizeModel(model, fallback string) string {
	if m := strings.TrimSpace(model); m != "" {
		return m
	}
	return fallback
}
