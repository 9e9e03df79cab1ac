package messaging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Dispatcher delivers messages fire-and-forget after a turn committed. Each
// recipient gets its own goroutine so its messages keep their order; every
// send has its own timeout. Failures are logged, never retried.
type Dispatcher struct {
	sender  Sender
	timeout time.Duration
	log     *zap.Logger
	wg      sync.WaitGroup
}

func NewDispatcher(sender Sender, timeout time.Duration, log *zap.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{sender: sender, timeout: timeout, log: log}
}

// Dispatch queues messages in order of arrival. It does not block on delivery.
func (d *Dispatcher) Dispatch(messages []Message) {
	var order []string
	byRecipient := map[string][]Message{}
	for _, m := range messages {
		if m.To == "" || m.Text == "" {
			continue
		}
		if _, ok := byRecipient[m.To]; !ok {
			order = append(order, m.To)
		}
		byRecipient[m.To] = append(byRecipient[m.To], m)
	}

	for _, to := range order {
		d.wg.Add(1)
		go func(batch []Message) {
			defer d.wg.Done()
			for _, m := range batch {
				d.send(m)
			}
		}(byRecipient[to])
	}
}

func (d *Dispatcher) send(m Message) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	if err := d.sender.Send(ctx, m.To, m.Text); err != nil {
		d.log.Warn("outbound send failed", zap.String("to", m.To), zap.Error(err))
		return
	}
	d.log.Debug("outbound sent", zap.String("to", m.To), zap.Int("len", len(m.Text)))
}

// Wait blocks until every dispatched send finished or timed out.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
