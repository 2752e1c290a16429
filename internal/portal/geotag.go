package portal

import (
	"math/rand"
	"time"

	"github.com/viksitkanpur/portal/internal/model"
)

// Kanpur city center. The synthesized geotag jitters around it because the
// portal has no real capture pipeline yet; see the geotag field's consumers
// before relying on these coordinates for anything beyond the city map.
const (
	kanpurLat = 26.4499
	kanpurLon = 80.3319

	maxJitterDegrees = 0.05
	captureDevice    = "VIKSIT-KANPUR-WEB"
)

// SynthesizeGeotag fabricates a plausible capture location near the city
// center: up to ±0.05° per axis, accuracy between 5 and 50 meters.
func SynthesizeGeotag(capturedBy string) model.Geotag {
	return model.Geotag{
		Latitude:   kanpurLat + (rand.Float64()*2-1)*maxJitterDegrees,
		Longitude:  kanpurLon + (rand.Float64()*2-1)*maxJitterDegrees,
		Accuracy:   5 + rand.Float64()*45,
		Address:    "Kanpur, Uttar Pradesh",
		CapturedBy: capturedBy,
		CapturedAt: time.Now(),
		Device:     captureDevice,
	}
}
