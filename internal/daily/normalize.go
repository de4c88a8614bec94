package daily

import (
	"time"

	"github.com/sandeepkv93/dayloop/internal/model"
)

// NormalizePrayers upgrades legacy bare-id entries to {id, alone, now}
// and drops repeated ids, keeping the first occurrence. It reports
// whether the list changed.
func NormalizePrayers(in []model.PrayerStatus, now time.Time) ([]model.PrayerStatus, bool) {
	out := make([]model.PrayerStatus, 0, len(in))
	seen := make(map[string]bool, len(in))
	changed := false
	for _, p := range in {
		if p.ID == "" || seen[p.ID] {
			changed = true
			continue
		}
		seen[p.ID] = true
		if p.IsLegacy() {
			p.Type = model.PrayerAlone
			p.CompletedAt = now
			changed = true
		}
		out = append(out, p)
	}
	return out, changed
}
