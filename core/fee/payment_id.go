package fee

import (
	"crypto/rand"
	"encoding/base32"
	"fmt"
	"strconv"
	"time"
)

var nowFunc = time.Now // mockable

var b32 = base32.StdEncoding.WithPadding(base32.NoPadding)

// newPaymentID generates a time-derived payment id, unique within a charge's
// payment collection. Payments are recorded interactively one at a time, so a
// nanosecond timestamp plus a short random suffix is plenty; ApplyPayment still
// regenerates on the (theoretical) collision.
func newPaymentID() string {
	ts := b32.EncodeToString([]byte(strconv.FormatInt(nowFunc().UTC().UnixNano(), 36)))

	suffix := make([]byte, 3)
	_, _ = rand.Read(suffix)

	return fmt.Sprintf("%s-%s", ts, b32.EncodeToString(suffix))
}
