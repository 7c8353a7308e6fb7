package fee

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// notesSimilarityThreshold is the difflib quick ratio above which
// two payment notes are considered to be describing the same transaction.
const notesSimilarityThreshold = 0.8

// FindSimilarPayment reports an already-recorded payment that looks like a
// duplicate of the proposed one: same amount, same calendar date and
// near-identical notes. ApplyPayment is not idempotent, so callers with an
// unconfirmed prior attempt should consult this before retrying.
func FindSimilarPayment(charge Charge, proposed NewPayment) *Payment {
	for i := range charge.Payments {
		p := &charge.Payments[i]
		if !p.Amount.Equal(proposed.Amount) {
			continue
		}
		py, pm, pd := p.Date.Date()
		ny, nm, nd := proposed.Date.Date()
		if py != ny || pm != nm || pd != nd {
			continue
		}
		if notesSimilar(p.Notes, proposed.Notes) {
			return p
		}
	}
	return nil
}

func notesSimilar(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == b {
		return true
	}
	if a == "" || b == "" {
		return false
	}
	ratio := difflib.NewMatcher(strings.Split(a, ""), strings.Split(b, "")).QuickRatio()
	return ratio >= notesSimilarityThreshold
}
