package retention

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"sensetools/sweeper/pkg/engine"
)

const mb = 1024 * 1024

var evalNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func reloadedDaysAgo(days int) string {
	return evalNow.AddDate(0, 0, -days).Format("2006-01-02T15:04:05.000000Z")
}

func doc(id string, published bool, size int64, lastReload string) engine.DocListEntry {
	return engine.DocListEntry{
		Name:           "App " + id,
		ID:             id,
		Meta:           engine.DocMeta{Published: engine.Published(published)},
		FileSize:       size,
		LastReloadTime: lastReload,
	}
}

// TestEvaluate_Scenario is the reference three-document case: B is excluded
// by publication, C by the size floor.
func TestEvaluate_Scenario(t *testing.T) {
	docs := []engine.DocListEntry{
		doc("1", false, 2*mb, reloadedDaysAgo(200)),
		doc("2", true, 2*mb, reloadedDaysAgo(200)),
		doc("3", false, 500*1024, reloadedDaysAgo(200)),
	}
	policy := Policy{DaysStale: 180, MinSizeMB: 1, IncludePublished: false}

	candidates, err := Evaluate(docs, policy, evalNow)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d: %+v", len(candidates), candidates)
	}
	if candidates[0].ID != "1" {
		t.Errorf("candidate ID = %q, want %q", candidates[0].ID, "1")
	}
	if candidates[0].SizeMB != 2 {
		t.Errorf("SizeMB = %g, want 2", candidates[0].SizeMB)
	}
}

// TestEvaluate_Invariants sweeps publication, size and timestamp axes and
// checks every emitted candidate satisfies all three filters at once.
func TestEvaluate_Invariants(t *testing.T) {
	published := []bool{false, true}
	sizes := []int64{0, 512 * 1024, mb, mb + 1, 10 * mb}
	reloads := []string{"", reloadedDaysAgo(1), reloadedDaysAgo(179), reloadedDaysAgo(181), reloadedDaysAgo(1000)}
	policies := []Policy{
		{DaysStale: 180, MinSizeMB: 1},
		{DaysStale: 0, MinSizeMB: 0},
		{DaysStale: 365, MinSizeMB: 5, IncludePublished: true},
	}

	var docs []engine.DocListEntry
	i := 0
	for _, pub := range published {
		for _, size := range sizes {
			for _, reload := range reloads {
				i++
				docs = append(docs, doc(fmt.Sprintf("d%d", i), pub, size, reload))
			}
		}
	}
	byID := make(map[string]engine.DocListEntry, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
	}

	for _, policy := range policies {
		candidates, err := Evaluate(docs, policy, evalNow)
		if err != nil {
			t.Fatalf("Evaluate(%+v) failed: %v", policy, err)
		}
		threshold := evalNow.AddDate(0, 0, -policy.DaysStale)
		for _, c := range candidates {
			src := byID[c.ID]
			if bool(src.Meta.Published) && !policy.IncludePublished {
				t.Errorf("policy %+v: candidate %s violates the publication filter", policy, c.ID)
			}
			if !c.LastReload.Before(threshold) {
				t.Errorf("policy %+v: candidate %s violates the staleness filter: %v", policy, c.ID, c.LastReload)
			}
			if c.SizeMB <= policy.MinSizeMB {
				t.Errorf("policy %+v: candidate %s violates the size filter: %g", policy, c.ID, c.SizeMB)
			}
		}
	}
}

// TestEvaluate_Monotonicity: tightening days or size never grows the
// candidate list; including published never shrinks it.
func TestEvaluate_Monotonicity(t *testing.T) {
	var docs []engine.DocListEntry
	for i := 0; i < 50; i++ {
		docs = append(docs,
			doc(fmt.Sprintf("u%d", i), i%3 == 0, int64(i)*mb/2, reloadedDaysAgo(i*20)),
		)
	}

	count := func(p Policy) int {
		candidates, err := Evaluate(docs, p, evalNow)
		if err != nil {
			t.Fatalf("Evaluate(%+v) failed: %v", p, err)
		}
		return len(candidates)
	}

	base := Policy{DaysStale: 100, MinSizeMB: 2}
	for days := 0; days <= 900; days += 100 {
		looser := count(Policy{DaysStale: days, MinSizeMB: base.MinSizeMB})
		tighter := count(Policy{DaysStale: days + 100, MinSizeMB: base.MinSizeMB})
		if tighter > looser {
			t.Errorf("raising days_stale %d->%d grew candidates %d->%d", days, days+100, looser, tighter)
		}
	}
	for minMB := 0.0; minMB <= 10; minMB += 1 {
		looser := count(Policy{DaysStale: base.DaysStale, MinSizeMB: minMB})
		tighter := count(Policy{DaysStale: base.DaysStale, MinSizeMB: minMB + 1})
		if tighter > looser {
			t.Errorf("raising min_size_mb %g->%g grew candidates %d->%d", minMB, minMB+1, looser, tighter)
		}
	}
	withoutPublished := count(base)
	withPublished := count(Policy{DaysStale: base.DaysStale, MinSizeMB: base.MinSizeMB, IncludePublished: true})
	if withPublished < withoutPublished {
		t.Errorf("include_published shrank candidates %d->%d", withoutPublished, withPublished)
	}
}

// TestEvaluate_NeverReloaded: a document with no reload on record is stale
// under any threshold.
func TestEvaluate_NeverReloaded(t *testing.T) {
	docs := []engine.DocListEntry{doc("1", false, 10*mb, "")}

	for _, days := range []int{0, 180, 10000} {
		candidates, err := Evaluate(docs, Policy{DaysStale: days, MinSizeMB: 1}, evalNow)
		if err != nil {
			t.Fatalf("Evaluate() failed: %v", err)
		}
		if len(candidates) != 1 {
			t.Fatalf("days=%d: expected the never-reloaded doc to qualify", days)
		}
		if !candidates[0].LastReload.Equal(time.Unix(0, 0).UTC()) {
			t.Errorf("LastReload = %v, want the Unix epoch", candidates[0].LastReload)
		}
	}
}

// TestEvaluate_SizeBoundary: exactly at the floor is excluded, one byte
// over the rounding step is included.
func TestEvaluate_SizeBoundary(t *testing.T) {
	policy := Policy{DaysStale: 180, MinSizeMB: 1}

	atFloor := []engine.DocListEntry{doc("1", false, mb, reloadedDaysAgo(200))}
	candidates, err := Evaluate(atFloor, policy, evalNow)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Errorf("a doc at exactly min_size_mb must be excluded, got %+v", candidates)
	}

	// One byte over the floor still rounds to 1.00 MB; the smallest size
	// that clears the strict comparison rounds to 1.01 MB.
	overFloor := []engine.DocListEntry{doc("2", false, mb+mb/100, reloadedDaysAgo(200))}
	candidates, err = Evaluate(overFloor, policy, evalNow)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	if len(candidates) != 1 {
		t.Errorf("a doc above min_size_mb must be included")
	}
}

func TestEvaluate_OrderPreserved(t *testing.T) {
	docs := []engine.DocListEntry{
		doc("c", false, 5*mb, reloadedDaysAgo(300)),
		doc("a", false, 5*mb, reloadedDaysAgo(300)),
		doc("b", false, 5*mb, reloadedDaysAgo(300)),
	}
	candidates, err := Evaluate(docs, Policy{DaysStale: 180, MinSizeMB: 1}, evalNow)
	if err != nil {
		t.Fatalf("Evaluate() failed: %v", err)
	}
	got := []string{candidates[0].ID, candidates[1].ID, candidates[2].ID}
	want := []string{"c", "a", "b"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidate order = %v, want %v", got, want)
		}
	}
}

func TestEvaluate_MalformedTimestamp(t *testing.T) {
	docs := []engine.DocListEntry{doc("1", false, 5*mb, "2024/01/01 bogus")}

	_, err := Evaluate(docs, Policy{DaysStale: 180, MinSizeMB: 1}, evalNow)
	if err == nil {
		t.Fatal("expected Evaluate() to reject a malformed timestamp")
	}
	var inputErr *InputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("expected *InputError, got %T: %v", err, err)
	}
	if inputErr.DocID != "1" || inputErr.Field != "qLastReloadTime" {
		t.Errorf("unexpected InputError: %+v", inputErr)
	}
}

func TestRoundMB(t *testing.T) {
	tests := []struct {
		bytes int64
		want  float64
	}{
		{0, 0},
		{mb, 1},
		{mb + mb/2, 1.5},
		{2 * mb, 2},
		{500 * 1024, 0.49},
		{mb + 10*1024, 1.01},
	}
	for _, tt := range tests {
		if got := RoundMB(tt.bytes); got != tt.want {
			t.Errorf("RoundMB(%d) = %g, want %g", tt.bytes, got, tt.want)
		}
	}
}

func TestTotalSizeMB(t *testing.T) {
	candidates := []Candidate{{SizeMB: 1.25}, {SizeMB: 2.5}, {SizeMB: 0.49}}
	if got := TotalSizeMB(candidates); got != 4.2 {
		t.Errorf("TotalSizeMB() = %g, want 4.2", got)
	}
}
