package services

import (
	"sort"

	"github.com/seojinpark/krxlens/internal/models"
)

// Rank orders exposure records by weight descending and assigns 1-based
// positions. The sort is stable, so exactly equal weights keep their
// discovery order — which under a concurrent scan is itself arbitrary.
// An empty input yields an empty ranking, not an error.
func Rank(records []models.ExposureRecord) []models.RankedExposure {
	sorted := make([]models.ExposureRecord, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Weight > sorted[j].Weight
	})

	ranked := make([]models.RankedExposure, len(sorted))
	for i, rec := range sorted {
		ranked[i] = models.RankedExposure{
			Rank:           i + 1,
			ExposureRecord: rec,
		}
	}
	return ranked
}
