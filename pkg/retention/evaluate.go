package retention

import (
	"math"
	"time"

	"sensetools/sweeper/pkg/engine"
)

// reloadTimeLayout is the engine's last-reload timestamp format. The
// fractional part varies in width, which 9s handle.
const reloadTimeLayout = "2006-01-02T15:04:05.999999999Z"

// Evaluate filters the catalog down to reclamation candidates, preserving
// catalog order. It returns an InputError when a document carries a reload
// timestamp that cannot be parsed; no candidate list is usable in that case.
func Evaluate(docs []engine.DocListEntry, policy Policy, now time.Time) ([]Candidate, error) {
	threshold := now.UTC().AddDate(0, 0, -policy.DaysStale)

	var candidates []Candidate
	for _, doc := range docs {
		if bool(doc.Meta.Published) && !policy.IncludePublished {
			continue
		}

		lastReload := time.Unix(0, 0).UTC()
		if doc.LastReloadTime != "" {
			parsed, err := time.Parse(reloadTimeLayout, doc.LastReloadTime)
			if err != nil {
				return nil, &InputError{
					DocID: doc.ID,
					Field: "qLastReloadTime",
					Value: doc.LastReloadTime,
					Err:   err,
				}
			}
			lastReload = parsed.UTC()
		}
		if !lastReload.Before(threshold) {
			continue
		}

		sizeMB := RoundMB(doc.FileSize)
		if sizeMB <= policy.MinSizeMB {
			continue
		}

		candidates = append(candidates, Candidate{
			ID:         doc.ID,
			Name:       doc.Name,
			SizeMB:     sizeMB,
			LastReload: lastReload,
		})
	}
	return candidates, nil
}

// RoundMB converts a byte count to megabytes rounded to two decimals.
func RoundMB(bytes int64) float64 {
	return math.Round(float64(bytes)/1024/1024*100) / 100
}

// TotalSizeMB sums candidate sizes, rounded to one decimal for summaries.
func TotalSizeMB(candidates []Candidate) float64 {
	var total float64
	for _, c := range candidates {
		total += c.SizeMB
	}
	return math.Round(total*10) / 10
}
