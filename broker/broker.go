package broker

import (
	"sync"

	"code.perpnote.io/perpnote/events"
	"code.perpnote.io/perpnote/logging"
)

// Subscriber receives batches of events. A subscriber declares the event
// types it cares about, an empty list (or events.All) means everything.
//
//go:generate go run github.com/golang/mock/mockgen -destination mocks/subscriber_mock.go -package mocks code.perpnote.io/perpnote/broker Subscriber
type Subscriber interface {
	Push(evts ...events.Event)
	Types() []events.Type
}

type subscription struct {
	Subscriber
	types map[events.Type]struct{}
	all   bool
}

// Broker is the in-process event bus. Engines call Send at the end of their
// operations, subscribers (indexers, the API service) get the events pushed
// synchronously. Correctness never depends on a subscriber being present.
type Broker struct {
	log *logging.Logger
	cfg Config

	mu   sync.Mutex
	subs map[int]*subscription
	seq  int
}

func New(log *logging.Logger, cfg Config) *Broker {
	log = log.Named(namedLogger)
	log.SetLevel(cfg.Level.Get())

	return &Broker{
		log:  log,
		cfg:  cfg,
		subs: map[int]*subscription{},
	}
}

// ReloadConf updates the internal configuration of the broker.
func (b *Broker) ReloadConf(cfg Config) {
	b.log.Info("reloading configuration")
	if b.log.GetLevel() != cfg.Level.Get() {
		b.log.Info("updating log level",
			logging.String("old", b.log.GetLevel().String()),
			logging.String("new", cfg.Level.String()),
		)
		b.log.SetLevel(cfg.Level.Get())
	}

	b.mu.Lock()
	b.cfg = cfg
	b.mu.Unlock()
}

// Subscribe registers the subscriber and returns its key for Unsubscribe.
func (b *Broker) Subscribe(s Subscriber) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	sub := &subscription{
		Subscriber: s,
		types:      map[events.Type]struct{}{},
	}
	ts := s.Types()
	if len(ts) == 0 {
		sub.all = true
	}
	for _, t := range ts {
		if t == events.All {
			sub.all = true
		}
		sub.types[t] = struct{}{}
	}
	b.subs[b.seq] = sub
	return b.seq
}

// Unsubscribe removes a subscriber, unknown keys are a no-op.
func (b *Broker) Unsubscribe(k int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, k)
}

// Send pushes a single event to all interested subscribers.
func (b *Broker) Send(evt events.Event) {
	b.SendBatch([]events.Event{evt})
}

// SendBatch pushes a batch of events, preserving their order per subscriber.
func (b *Broker) SendBatch(evts []events.Event) {
	if len(evts) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		batch := make([]events.Event, 0, len(evts))
		for _, evt := range evts {
			if sub.all {
				batch = append(batch, evt)
				continue
			}
			if _, ok := sub.types[evt.Type()]; ok {
				batch = append(batch, evt)
			}
		}
		if len(batch) > 0 {
			sub.Push(batch...)
		}
	}
}
