package cli

import (
	"context"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignalContext_Cancel(t *testing.T) {
	ctx := NewSignalContext(context.Background())
	ctx.Cancel()
	ctx.Cancel()

	<-ctx.Done()
	assert.Nil(t, ctx.Signal())
}

func TestSignalContext_ParentDone(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx := NewSignalContext(parent)
	cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("parent cancellation did not propagate")
	}
	assert.Nil(t, ctx.Signal())
}

func TestSignalContext_RecordsSignal(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("interrupts cannot be sent to the own process on windows")
	}
	ctx := NewSignalContext(context.Background())
	defer ctx.Cancel()

	self, err := os.FindProcess(os.Getpid())
	require.NoError(t, err)
	require.NoError(t, self.Signal(os.Interrupt))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("interrupt did not cancel the context")
	}
	assert.Eventually(t, func() bool { return ctx.Signal() == os.Interrupt }, time.Second, 10*time.Millisecond)
}
