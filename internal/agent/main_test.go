package agent

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	// The engine runs single-threaded per turn; nothing here should leave
	// goroutines behind.
	goleak.VerifyTestMain(m)
}
