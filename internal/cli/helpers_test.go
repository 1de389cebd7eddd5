package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/aretw0/roster/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterruptibleReader(t *testing.T) {
	cancel := make(chan struct{})
	r := NewInterruptibleReader(strings.NewReader("hello"), cancel)

	buf := make([]byte, 5)
	n, err := r.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(buf[:n]))

	close(cancel)
	_, err = r.Read(buf)
	assert.ErrorIs(t, err, ErrInterrupted)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, HandleExecutionError(nil))
	assert.NoError(t, HandleExecutionError(io.EOF))
	assert.NoError(t, HandleExecutionError(fmt.Errorf("read: %w", ErrInterrupted)))
	assert.NoError(t, HandleExecutionError(context.Canceled))

	boom := errors.New("boom")
	assert.ErrorIs(t, HandleExecutionError(boom), boom)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(config.LogConfig{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	logger.Info("hidden")
	logger.Warn("shown", "error", "x")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"err":"x"`)

	_, err = NewLogger(config.LogConfig{Level: "loud"}, &buf)
	assert.Error(t, err)
}

func TestStopReason(t *testing.T) {
	t.Run("Signal", func(t *testing.T) {
		sc := NewSignalContext(context.Background())
		defer sc.Cancel()

		sc.sigCh <- os.Interrupt
		<-sc.Done()

		assert.Equal(t, os.Interrupt, sc.Signal())
		assert.Equal(t, "interrupt", StopReason(sc))
	})

	t.Run("Canceled", func(t *testing.T) {
		sc := NewSignalContext(context.Background())
		assert.Equal(t, "running", StopReason(sc))

		sc.Cancel()
		assert.Nil(t, sc.Signal())
		assert.Equal(t, context.Canceled.Error(), StopReason(sc))
	})

	t.Run("Plain Context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		assert.Equal(t, context.Canceled.Error(), StopReason(ctx))
	})
}
