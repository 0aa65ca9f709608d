package stream

import (
	"context"
	"strings"

	"wine-sommelier-be/pkg/llm"
)

// Relay forwards fragments from a provider stream to the returned channel
// while accumulating them. When the stream ends, fails, or ctx is cancelled
// mid-flight, onDone runs exactly once with whatever text accumulated so
// far; a cancelled stream still flushes its partial output. The returned
// channel is closed after onDone returns.
func Relay(ctx context.Context, in <-chan llm.Chunk, onDone func(accumulated string, err error)) <-chan string {
	out := make(chan string)

	go func() {
		defer close(out)

		var accumulated strings.Builder
		var streamErr error

	loop:
		for {
			select {
			case chunk, ok := <-in:
				if !ok {
					break loop
				}
				if chunk.Err != nil {
					streamErr = chunk.Err
					break loop
				}
				accumulated.WriteString(chunk.Content)
				select {
				case out <- chunk.Content:
				case <-ctx.Done():
					streamErr = ctx.Err()
					break loop
				}
			case <-ctx.Done():
				streamErr = ctx.Err()
				break loop
			}
		}

		onDone(accumulated.String(), streamErr)
	}()

	return out
}
