package telegram

import (
	"context"
	"sync"
)

// dispatcher keeps one FIFO queue per sender, drained by a single worker
// that exits once its queue is empty.
type dispatcher struct {
	handle func(context.Context, Update)

	mu     sync.Mutex
	queues map[int64][]Update
	wg     sync.WaitGroup
}

func newDispatcher(handle func(context.Context, Update)) *dispatcher {
	return &dispatcher{handle: handle, queues: make(map[int64][]Update)}
}

// dispatch must be called from a single goroutine, in arrival order.
func (d *dispatcher) dispatch(ctx context.Context, u Update) {
	if u.Message == nil || u.Message.From == nil {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.handle(ctx, u)
		}()
		return
	}

	key := u.Message.From.ID
	d.mu.Lock()
	q, busy := d.queues[key]
	d.queues[key] = append(q, u)
	d.mu.Unlock()
	if busy {
		return
	}

	d.wg.Add(1)
	go d.drain(ctx, key)
}

func (d *dispatcher) drain(ctx context.Context, key int64) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		q := d.queues[key]
		if len(q) == 0 {
			delete(d.queues, key)
			d.mu.Unlock()
			return
		}
		u := q[0]
		d.queues[key] = q[1:]
		d.mu.Unlock()

		d.handle(ctx, u)
	}
}

func (d *dispatcher) wait() {
	d.wg.Wait()
}
