package whatsapp

import (
	"context"
	"sync"
)

type qrResult struct {
	code string
	err  error
}

// qrBroker hands the next QR code to every request currently waiting for one.
// Waiters are dropped once served or once their context ends. After fail, new
// waiters get the failure error straight away.
type qrBroker struct {
	mu      sync.Mutex
	nextID  uint64
	waiters map[uint64]chan qrResult
	closed  error
}

func newQRBroker() *qrBroker {
	return &qrBroker{waiters: make(map[uint64]chan qrResult)}
}

func (b *qrBroker) wait(ctx context.Context) (string, error) {
	ch := make(chan qrResult, 1)

	b.mu.Lock()
	if b.closed != nil {
		err := b.closed
		b.mu.Unlock()
		return "", err
	}
	id := b.nextID
	b.nextID++
	b.waiters[id] = ch
	b.mu.Unlock()

	select {
	case res := <-ch:
		return res.code, res.err
	case <-ctx.Done():
		b.mu.Lock()
		delete(b.waiters, id)
		b.mu.Unlock()
		return "", ctx.Err()
	}
}

// publish delivers code to all waiters and returns how many were served.
func (b *qrBroker) publish(code string) int {
	return b.resolve(qrResult{code: code})
}

// fail releases all waiters with err and refuses later ones until reopen.
func (b *qrBroker) fail(err error) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = err
	return b.resolveLocked(qrResult{err: err})
}

// reopen accepts waiters again, for a new pairing flow.
func (b *qrBroker) reopen() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = nil
}

func (b *qrBroker) resolve(res qrResult) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.resolveLocked(res)
}

func (b *qrBroker) resolveLocked(res qrResult) int {
	served := len(b.waiters)
	for id, ch := range b.waiters {
		ch <- res
		delete(b.waiters, id)
	}
	return served
}

func (b *qrBroker) pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.waiters)
}
