package eventbus

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const defaultListenerTimeout = time.Minute

type Event interface {
	Name() string
}

type Listener func(ctx context.Context, event Event) error

// Bus доставляет события подписчикам асинхронно: каждый вызов в своей горутине.
// После Close новые события отбрасываются.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
	closed    bool
	inflight  sync.WaitGroup
	timeout   time.Duration
	logger    *zap.Logger
}

type Option func(*Bus)

// WithListenerTimeout ограничивает время работы одного обработчика.
func WithListenerTimeout(d time.Duration) Option {
	return func(b *Bus) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func New(logger *zap.Logger, opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[string][]Listener),
		timeout:   defaultListenerTimeout,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Bus) Subscribe(eventName string, listener Listener) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[eventName] = append(b.listeners[eventName], listener)
}

// Publish не передает ctx вызывающего: запрос может завершиться раньше обработчиков.
func (b *Bus) Publish(_ context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	name := event.Name()
	if b.closed {
		b.logger.Warn("Шина закрыта, событие отброшено", zap.String("event", name))
		return
	}
	for _, listener := range b.listeners[name] {
		b.inflight.Add(1)
		go b.deliver(name, listener, event)
	}
}

func (b *Bus) deliver(name string, listener Listener, event Event) {
	defer b.inflight.Done()
	defer func() {
		if p := recover(); p != nil {
			b.logger.Error("Паника в обработчике события", zap.String("event", name), zap.Any("panic", p))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
	defer cancel()

	if err := listener(ctx, event); err != nil {
		b.logger.Error("Ошибка в обработчике события", zap.String("event", name), zap.Error(err))
	}
}

// Wait ждет завершения уже запущенных обработчиков.
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// Close перестает принимать события и дожидается запущенных обработчиков.
func (b *Bus) Close() {
	b.mu.Lock()
	b.closed = true
	b.mu.Unlock()
	b.inflight.Wait()
}
