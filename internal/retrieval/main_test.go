package retrieval

import (
	"testing"

	"go.uber.org/goleak"
)

// Retrieval fans out goroutines per request; make sure none outlive a test.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
