package fee

import (
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"
)

func TestNewPaymentID(t *testing.T) {
	now := time.Date(2021, time.March, 14, 15, 9, 26, 535897932, time.UTC)
	nowFunc = func() time.Time { return now }
	defer func() { nowFunc = time.Now }()

	idRe := regexp.MustCompile(`^[A-Z2-7]+-[A-Z2-7]{5}$`)

	id := newPaymentID()
	if !idRe.MatchString(id) {
		t.Fatalf("newPaymentID() = %q, want to match %s", id, idRe)
	}

	// the prefix encodes the generation instant
	prefix := strings.SplitN(id, "-", 2)[0]
	raw, err := b32.DecodeString(prefix)
	if err != nil {
		t.Fatalf("decoding id prefix: %v", err)
	}
	ts, err := strconv.ParseInt(string(raw), 36, 64)
	if err != nil {
		t.Fatalf("parsing id timestamp: %v", err)
	}
	if ts != now.UnixNano() {
		t.Errorf("id timestamp = %d, want %d", ts, now.UnixNano())
	}

	// the random suffix keeps same-instant ids distinct
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[newPaymentID()] = true
	}
	if len(seen) < 100 {
		t.Errorf("newPaymentID() generated %d distinct ids out of 100", len(seen))
	}
}
