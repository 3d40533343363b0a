package state

import (
	"time"

	"github.com/notefold/richdoc-go/model"
)

// DefaultKeyDelay is how long a buffered delete key waits for the
// beforeinput duplicate from the same keypress before applying on its
// own. The pair arrives within one event-loop tick when it arrives at
// all, so the window only needs to outlast scheduling jitter.
const DefaultKeyDelay = 50 * time.Millisecond

// pendingKey is a buffered delete key: the direction it runs, the
// selection it was issued against, and whether its work already happened.
// A key that demoted a paragraph style sets swallow, so the duplicate
// Input from the same keypress is dropped instead of deleting on top.
type pendingKey struct {
	backward bool
	sel      model.Selection
	swallow  bool
}

// keyBuffer holds at most one pendingKey. The slot resolves in one of
// three ways: the paired Input claims it, a later command flushes it, or
// the timer expires it. seq guards against a stale timer firing after the
// slot has turned over. All fields are guarded by the owning editor's
// lock; only expire takes it itself.
type keyBuffer struct {
	ed      *Editor
	delay   time.Duration
	timer   *time.Timer
	seq     uint64
	pending *pendingKey
}

// put stores a key and arms the timer, replacing whatever was there.
func (b *keyBuffer) put(k *pendingKey) {
	b.stopTimer()
	b.pending = k
	b.seq++
	seq := b.seq
	b.timer = time.AfterFunc(b.delay, func() {
		b.expire(seq)
	})
}

// take hands back the buffered key, if any, and disarms the timer.
func (b *keyBuffer) take() *pendingKey {
	k := b.pending
	b.pending = nil
	b.stopTimer()
	return k
}

func (b *keyBuffer) stopTimer() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// expire runs on the timer goroutine. The seq check under the editor's
// lock rejects a timer that lost the race against put or take.
func (b *keyBuffer) expire(seq uint64) {
	b.ed.mu.Lock()
	defer b.ed.mu.Unlock()
	if b.seq != seq || b.pending == nil {
		return
	}
	b.ed.flushKeyLocked()
}
