package notifyclient

import "sync"

// dispatcher delivers queued listener fan-outs in FIFO order. Only one
// goroutine drains at a time; work queued meanwhile, including by a listener
// further up the draining goroutine's stack, is picked up by that drain.
type dispatcher struct {
	mu       sync.Mutex
	queue    []func()
	draining bool
}

func (d *dispatcher) enqueue(fn func()) {
	d.mu.Lock()
	d.queue = append(d.queue, fn)
	d.mu.Unlock()
}

// drain runs queued work until the queue is empty. It returns at once when
// another drain is in progress.
func (d *dispatcher) drain() {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	d.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			d.mu.Lock()
			d.draining = false
			d.mu.Unlock()
		}
	}()

	for {
		fn, ok := d.next()
		if !ok {
			finished = true
			return
		}
		fn()
	}
}

// next pops the oldest entry. An empty queue ends the drain in the same
// critical section, so nothing enqueued afterwards is left behind.
func (d *dispatcher) next() (func(), bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		d.draining = false
		return nil, false
	}
	fn := d.queue[0]
	d.queue[0] = nil
	d.queue = d.queue[1:]
	return fn, true
}
