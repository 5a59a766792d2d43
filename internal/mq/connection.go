package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Бюджет восстановления соединения после разрыва.
const (
	redialAttempts = 5
	redialInterval = 2 * time.Second
)

// ErrNoChannel — соединение живо, но канал недоступен.
var ErrNoChannel = errors.New("mq: no channel available")

// Connection — AMQP-соединение воркера.
//
// Восстановление после разрыва ограничено бюджетом, как и остальные
// retry-циклы воркера: одноразовому воркеру вечный reconnect не нужен.
// После исчерпания бюджета intake из очереди остаётся выключенным,
// HTTP-поверхность продолжает принимать tasks.
type Connection struct {
	url    string
	logger *slog.Logger

	mu      sync.RWMutex
	conn    *amqp.Connection
	channel *amqp.Channel
	closed  bool

	done     chan struct{}
	redialed chan struct{}
}

// NewConnection подключается к RabbitMQ и запускает наблюдение за разрывом.
func NewConnection(url string, logger *slog.Logger) (*Connection, error) {
	c := &Connection{
		url:      url,
		logger:   logger,
		done:     make(chan struct{}),
		redialed: make(chan struct{}, 1),
	}

	if err := c.dial(); err != nil {
		return nil, err
	}

	go c.watch()

	return c, nil
}

// dial устанавливает соединение и открывает канал.
func (c *Connection) dial() error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial amqp: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("open channel: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.channel = ch
	c.mu.Unlock()

	return nil
}

// watch ждёт разрыва соединения и запускает redial-цикл.
// Возвращается после Close или после исчерпания бюджета.
func (c *Connection) watch() {
	for {
		c.mu.RLock()
		conn := c.conn
		c.mu.RUnlock()

		notifyClose := conn.NotifyClose(make(chan *amqp.Error, 1))

		select {
		case <-c.done:
			return
		case amqpErr := <-notifyClose:
			if amqpErr != nil {
				c.logger.Warn("connection lost", "error", amqpErr)
			}
		}

		if !c.redial() {
			return
		}
	}
}

// redial пытается восстановить соединение в рамках бюджета.
// false — бюджет исчерпан, наблюдение прекращается.
func (c *Connection) redial() bool {
	for attempt := 1; attempt <= redialAttempts; attempt++ {
		select {
		case <-c.done:
			return false
		case <-time.After(redialInterval):
		}

		if err := c.dial(); err != nil {
			c.logger.Warn("redial attempt failed",
				"attempt", attempt,
				"max_attempts", redialAttempts,
				"error", err,
			)
			continue
		}

		c.logger.Info("reconnected to RabbitMQ", "attempt", attempt)

		select {
		case c.redialed <- struct{}{}:
		default:
		}

		return true
	}

	c.logger.Warn("redial budget exhausted, queue intake stays down")
	return false
}

// Channel возвращает текущий AMQP канал.
func (c *Connection) Channel() *amqp.Channel {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.channel
}

// ReconnectNotify возвращает канал уведомлений о восстановлении.
func (c *Connection) ReconnectNotify() <-chan struct{} {
	return c.redialed
}

// WithChannel выполняет функцию с текущим каналом.
func (c *Connection) WithChannel(_ context.Context, fn func(ch *amqp.Channel) error) error {
	ch := c.Channel()
	if ch == nil {
		return ErrNoChannel
	}
	return fn(ch)
}

// Close закрывает канал и соединение. Повторный вызов безопасен.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)

	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close connection: %w", err)
		}
	}

	return nil
}
