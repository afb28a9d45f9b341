package workflow_test

import (
	"sync"
	"testing"
	"time"

	"go-warden/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGate(timeout time.Duration) *workflow.Gate {
	return workflow.NewGate(workflow.ConfirmationRequest{
		Prompt:     "archive?",
		Respondent: workflow.Actor{ID: "op"},
		Timeout:    timeout,
	})
}

func TestGate_FirstResponseWins(t *testing.T) {
	t.Run("confirm then decline", func(t *testing.T) {
		g := newTestGate(time.Second)

		require.NoError(t, g.Respond("op", true))
		assert.ErrorIs(t, g.Respond("op", false), workflow.ErrGateResolved)
		assert.Equal(t, workflow.Confirmed, g.Wait())
	})

	t.Run("decline then confirm", func(t *testing.T) {
		g := newTestGate(time.Second)

		require.NoError(t, g.Respond("op", false))
		assert.ErrorIs(t, g.Respond("op", true), workflow.ErrGateResolved)
		assert.Equal(t, workflow.Declined, g.Wait())
	})
}

func TestGate_ResponseWhileWaiting(t *testing.T) {
	g := newTestGate(time.Minute)

	go func() {
		time.Sleep(10 * time.Millisecond)
		_ = g.Respond("op", true)
	}()

	start := time.Now()
	assert.Equal(t, workflow.Confirmed, g.Wait())
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestGate_TimesOut(t *testing.T) {
	g := newTestGate(20 * time.Millisecond)

	assert.Equal(t, workflow.TimedOut, g.Wait())
	assert.ErrorIs(t, g.Respond("op", true), workflow.ErrGateResolved)
	assert.Equal(t, workflow.TimedOut, g.Wait())
}

func TestGate_RejectsOtherUsers(t *testing.T) {
	g := newTestGate(time.Second)

	assert.ErrorIs(t, g.Respond("someone-else", true), workflow.ErrNotRespondent)

	select {
	case <-g.Done():
		t.Fatal("gate resolved by a stranger")
	default:
	}

	require.NoError(t, g.Respond("op", false))
	assert.Equal(t, workflow.Declined, g.Wait())
}

func TestGate_ConcurrentResponses(t *testing.T) {
	g := newTestGate(time.Second)

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(confirm bool) {
			defer wg.Done()
			if g.Respond("op", confirm) == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}(i%2 == 0)
	}
	wg.Wait()

	assert.Equal(t, 1, wins)
	assert.Contains(t, []workflow.ConfirmationResult{workflow.Confirmed, workflow.Declined}, g.Wait())
}

func TestNewGate_DefaultTimeout(t *testing.T) {
	g := workflow.NewGate(workflow.ConfirmationRequest{})
	assert.Equal(t, workflow.DefaultConfirmTimeout, g.Request().Timeout)
	assert.Equal(t, 180*time.Second, workflow.DefaultConfirmTimeout)
}
