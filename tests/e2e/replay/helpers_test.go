//go:build e2e

package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"statuspact/internal/consumer"
)

// newConsumer returns a consumer pointed at the golden server under prefix.
func newConsumer(t *testing.T, prefix string) *consumer.Client {
	t.Helper()
	c, err := consumer.New(consumer.Config{BaseURL: goldenServer.URL() + prefix, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return c
}
