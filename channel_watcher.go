package observable

import (
	"context"
	"errors"
)

// ChannelWatcher is a patch source fed by in-process code: anything sent on
// its channel is applied to the State as a document.
type ChannelWatcher struct {
	src  <-chan []byte
	inline bool
}

// NewChannelWatcher creates a ChannelWatcher that relays documents from src
// in its own goroutine. The relay stops when src is closed or ctx is
// canceled, whichever comes first.
func NewChannelWatcher(src <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{src: src}
}

// NewSyncChannelWatcher creates a ChannelWatcher whose src is read by the
// State itself. Pair it with State.SyncMode and Process for deterministic
// tests.
func NewSyncChannelWatcher(src <-chan []byte) *ChannelWatcher {
	return &ChannelWatcher{src: src, inline: true}
}

// Watch returns the channel the State reads documents from.
func (w *ChannelWatcher) Watch(ctx context.Context) (<-chan []byte, error) {
	if w.src == nil {
		return nil, errors.New("channel watcher has no source channel")
	}
	if w.inline {
		return w.src, nil
	}

	out := make(chan []byte)
	go relay(ctx, w.src, out)
	return out, nil
}

func relay(ctx context.Context, src <-chan []byte, out chan<- []byte) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			return
		case doc, ok := <-src:
			if !ok {
				return
			}
			if !forward(ctx, out, doc) {
				return
			}
		}
	}
}
