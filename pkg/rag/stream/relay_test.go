package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wine-sommelier-be/pkg/llm"
)

func TestRelay_ForwardsAndAccumulates(t *testing.T) {
	in := make(chan llm.Chunk, 3)
	in <- llm.Chunk{Content: "Te "}
	in <- llm.Chunk{Content: "recomiendo "}
	in <- llm.Chunk{Content: "un Rioja."}
	close(in)

	var accumulated string
	var doneErr error
	out := Relay(context.Background(), in, func(text string, err error) {
		accumulated = text
		doneErr = err
	})

	var got []string
	for fragment := range out {
		got = append(got, fragment)
	}

	assert.Equal(t, []string{"Te ", "recomiendo ", "un Rioja."}, got)
	assert.Equal(t, "Te recomiendo un Rioja.", accumulated)
	assert.NoError(t, doneErr)
}

func TestRelay_CancellationFlushesPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	in := make(chan llm.Chunk)

	done := make(chan struct{})
	var accumulated string
	var doneErr error
	out := Relay(ctx, in, func(text string, err error) {
		accumulated = text
		doneErr = err
		close(done)
	})

	in <- llm.Chunk{Content: "Brindo "}
	require.Equal(t, "Brindo ", <-out)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("flush callback never ran after cancellation")
	}

	assert.Equal(t, "Brindo ", accumulated, "partial text survives cancellation")
	assert.ErrorIs(t, doneErr, context.Canceled)

	_, open := <-out
	assert.False(t, open)
}

func TestRelay_StreamErrorReachesFlush(t *testing.T) {
	in := make(chan llm.Chunk, 2)
	in <- llm.Chunk{Content: "por "}
	in <- llm.Chunk{Err: errors.New("provider hiccup")}
	close(in)

	var accumulated string
	var doneErr error
	out := Relay(context.Background(), in, func(text string, err error) {
		accumulated = text
		doneErr = err
	})

	var got []string
	for fragment := range out {
		got = append(got, fragment)
	}

	assert.Equal(t, []string{"por "}, got)
	assert.Equal(t, "por ", accumulated)
	assert.EqualError(t, doneErr, "provider hiccup")
}
