package rabbitmq

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/streadway/amqp"

	"publicpulse/metrics"
)

// CallbackFunc processes one report event. Returning an error nacks the
// delivery with requeue.
type CallbackFunc func(event ReportEvent) error

// Subscriber consumes report lifecycle events from the portal exchange.
type Subscriber struct {
	mu       sync.Mutex
	amqpURL  string
	exchange string
	queue    string

	conn    *amqp.Connection
	channel *amqp.Channel

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSubscriber creates a subscriber bound to the given exchange and queue.
func NewSubscriber(amqpURL, exchangeName, queueName string) (*Subscriber, error) {
	s := &Subscriber{
		amqpURL:  amqpURL,
		exchange: exchangeName,
		queue:    queueName,
		stopChan: make(chan struct{}),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.connectLocked(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Subscriber) connectLocked() error {
	conn, err := amqp.Dial(s.amqpURL)
	if err != nil {
		return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return fmt.Errorf("failed to open channel: %w", err)
	}

	if err := ch.ExchangeDeclare(s.exchange, "topic", true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(s.queue, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to declare queue: %w", err)
	}

	// One binding covers every report.* event.
	if err := ch.QueueBind(q.Name, "report.#", s.exchange, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}

	s.conn = conn
	s.channel = ch
	metrics.RabbitMQConnected.Set(1)
	return nil
}

func (s *Subscriber) closeLocked() {
	if s.channel != nil {
		_ = s.channel.Close()
		s.channel = nil
	}
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	metrics.RabbitMQConnected.Set(0)
}

// Start consumes deliveries and dispatches them to callback until Close is
// called. A dropped broker connection is retried with a fixed backoff.
func (s *Subscriber) Start(callback CallbackFunc) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-s.stopChan:
				return
			default:
			}

			deliveries, err := s.consume()
			if err != nil {
				log.Errorf("RabbitMQ consume failed, retrying: %v", err)
				select {
				case <-s.stopChan:
					return
				case <-time.After(5 * time.Second):
				}
				continue
			}

			s.drain(deliveries, callback)
		}
	}()
}

func (s *Subscriber) consume() (<-chan amqp.Delivery, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn == nil || s.conn.IsClosed() || s.channel == nil {
		s.closeLocked()
		if err := s.connectLocked(); err != nil {
			return nil, err
		}
	}
	return s.channel.Consume(s.queue, "", false, false, false, false, nil)
}

// drain processes deliveries until the channel closes or Close is called.
func (s *Subscriber) drain(deliveries <-chan amqp.Delivery, callback CallbackFunc) {
	for {
		select {
		case <-s.stopChan:
			return
		case d, ok := <-deliveries:
			if !ok {
				// Broker closed the channel; the outer loop reconnects.
				s.mu.Lock()
				s.closeLocked()
				s.mu.Unlock()
				return
			}

			var event ReportEvent
			if err := json.Unmarshal(d.Body, &event); err != nil {
				log.Errorf("Dropping malformed report event: %v", err)
				if err := d.Nack(false, false); err != nil {
					log.Errorf("Failed to nack delivery: %v", err)
				}
				continue
			}

			if err := callback(event); err != nil {
				log.Errorf("Report event callback failed: %v", err)
				if err := d.Nack(false, true); err != nil {
					log.Errorf("Failed to nack delivery: %v", err)
				}
				continue
			}

			metrics.RefreshEventsTotal.Inc()
			if err := d.Ack(false); err != nil {
				log.Errorf("Failed to ack delivery: %v", err)
			}
		}
	}
}

// Close stops consumption and releases the connection.
func (s *Subscriber) Close() error {
	close(s.stopChan)
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
	return nil
}

// IsConnected indicates whether the subscriber currently has an open connection.
func (s *Subscriber) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil && !s.conn.IsClosed() && s.channel != nil
}
