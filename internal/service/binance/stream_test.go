package binance

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StructSnap/pkg/logger"
)

func newTestStream(t *testing.T) *MarkPriceStream {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "console", Output: "stdout"})
	require.NoError(t, err)
	return NewMarkPriceStream([]string{"BTCUSDT"}, log)
}

func TestMarkPriceStreamConcurrentConnAccess(t *testing.T) {
	s := newTestStream(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				_ = s.IsConnected()
				_ = s.currentConn()
				_ = s.Close()
			}
		}()
	}
	wg.Wait()
	assert.False(t, s.IsConnected())
	assert.Nil(t, s.currentConn())
}
