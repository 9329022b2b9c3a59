// internal/service/relevance/volume.go

package relevance

import (
	"sort"
	"time"

	"socialpulse/internal/domain/content"
)

// TopVolumeCount is the number of trends listed in a VolumeReport
const TopVolumeCount = 5

// VolumeReport summarizes the volume of a set of trends
type VolumeReport struct {
	Empty         bool                  `json:"empty"`
	TotalTrends   int                   `json:"total_trends"`
	TotalVolume   int64                 `json:"total_volume"`
	AverageVolume float64               `json:"average_volume"`
	TopTrends     []content.ContentItem `json:"top_trends"`
	Timestamp     time.Time             `json:"timestamp"`
}

// AnalyzeVolume totals trend volumes. Trends without a volume count
// towards TotalTrends but not towards the volume figures.
func AnalyzeVolume(trends []content.ContentItem, now time.Time) VolumeReport {
	report := VolumeReport{
		TotalTrends: len(trends),
		TopTrends:   []content.ContentItem{},
		Timestamp:   now,
	}
	if len(trends) == 0 {
		report.Empty = true
		return report
	}

	withVolume := make([]content.ContentItem, 0, len(trends))
	for _, t := range trends {
		if t.Volume == nil {
			continue
		}
		withVolume = append(withVolume, t)
		report.TotalVolume += *t.Volume
	}

	if len(withVolume) > 0 {
		report.AverageVolume = float64(report.TotalVolume) / float64(len(withVolume))
	}

	sort.SliceStable(withVolume, func(i, j int) bool {
		return *withVolume[i].Volume > *withVolume[j].Volume
	})
	if len(withVolume) > TopVolumeCount {
		withVolume = withVolume[:TopVolumeCount]
	}
	report.TopTrends = withVolume

	return report
}
