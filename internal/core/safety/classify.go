package safety

import (
	"strings"

	"github.com/samirrijal/safepath/internal/core/domain"
)

var (
	protectiveTypes = []string{
		"police", "hospital", "clinic", "pharmacy", "bank",
		"atm", "government", "school", "university", "metro_station",
	}
	hazardousTypes = []string{
		"bar", "nightclub", "casino", "liquor_store", "industrial", "waste_disposal",
	}
)

const (
	protectiveBonus = 2.0
	hazardDay       = 3.0
	hazardNight     = 5.0
)

// Classify categorises a raw landmark type by substring match.
// Protective terms are checked first, so a type matching both is protective.
func Classify(rawType string) domain.POIClass {
	t := strings.ToLower(rawType)
	for _, term := range protectiveTypes {
		if strings.Contains(t, term) {
			return domain.POIProtective
		}
	}
	for _, term := range hazardousTypes {
		if strings.Contains(t, term) {
			return domain.POIHazardous
		}
	}
	return domain.POINeutral
}

// Delta returns the score adjustment for a landmark of the given class.
func Delta(class domain.POIClass, isNight bool) float64 {
	switch class {
	case domain.POIProtective:
		return protectiveBonus
	case domain.POIHazardous:
		if isNight {
			return -hazardNight
		}
		return -hazardDay
	default:
		return 0
	}
}

// observe turns a raw landmark into a POI attributed to the sample point.
func observe(l domain.RawLandmark, at domain.GeoPoint) domain.POI {
	name := l.Name
	if name == "" {
		name = "Unknown"
	}
	class := Classify(l.Type)
	return domain.POI{
		Name:         name,
		Type:         strings.ToLower(l.Type),
		Location:     at,
		IsProtective: class == domain.POIProtective,
		Class:        class,
	}
}
