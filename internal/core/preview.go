package core

import (
	"context"
	"sync"
)

// previewSlot holds the result of the most recently requested conversion.
// Each request bumps the generation; a conversion whose generation is no
// longer current is discarded when it resolves, regardless of completion order.
type previewSlot struct {
	mu         sync.Mutex
	generation uint64
	value      string
	err        error
	done       chan struct{} // closed once the current generation resolves
	pending    bool
}

func newPreviewSlot() *previewSlot {
	done := make(chan struct{})
	close(done)
	return &previewSlot{done: done}
}

// request starts convert in the background and makes it the current generation.
// In-flight conversions keep running but their results will be ignored.
func (p *previewSlot) request(convert func() (string, error)) uint64 {
	p.mu.Lock()
	p.supersedeLocked()
	generation := p.generation
	p.done = make(chan struct{})
	p.pending = true
	p.mu.Unlock()

	go func() {
		value, err := convert()
		p.resolve(generation, value, err)
	}()
	return generation
}

func (p *previewSlot) resolve(generation uint64, value string, err error) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if generation != p.generation {
		return false
	}
	p.value = value
	p.err = err
	p.pending = false
	close(p.done)
	return true
}

// supersedeLocked starts a new generation and wakes waiters of the old one,
// which then move on to the new done channel.
func (p *previewSlot) supersedeLocked() {
	p.generation++
	p.value = ""
	p.err = nil
	if p.pending {
		close(p.done)
		p.pending = false
	}
}

// clear drops the current preview and supersedes any in-flight conversion.
func (p *previewSlot) clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.supersedeLocked()
	done := make(chan struct{})
	close(done)
	p.done = done
}

// current returns the resolved preview, or "" while a conversion is pending.
func (p *previewSlot) current() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// await blocks until the generation current at call time, or a later one,
// resolves. It returns the preview at that moment.
func (p *previewSlot) await(ctx context.Context) (string, error) {
	for {
		p.mu.Lock()
		done := p.done
		p.mu.Unlock()

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-done:
		}

		p.mu.Lock()
		// a newer request may have replaced done while we waited
		if p.done == done {
			value, err := p.value, p.err
			p.mu.Unlock()
			return value, err
		}
		p.mu.Unlock()
	}
}
