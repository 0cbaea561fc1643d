package queue

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

const retryHeader = "x-retry-count"

// AMQPQueue implements Queue on RabbitMQ. Each topic is a durable queue on
// the default exchange.
type AMQPQueue struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool

	MaxRetries int
}

// DialAMQP connects to the broker at url and opens a channel.
func DialAMQP(url string) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	return &AMQPQueue{
		conn:       conn,
		ch:         ch,
		declared:   make(map[string]bool),
		MaxRetries: 3,
	}, nil
}

func (q *AMQPQueue) declare(topic string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.declared[topic] {
		return nil
	}
	_, err := q.ch.QueueDeclare(
		topic,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue %s: %w", topic, err)
	}
	q.declared[topic] = true
	return nil
}

// Publish JSON-encodes payload ([]byte is sent as is) as a persistent message.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := encodeBody(payload)
	if err != nil {
		return err
	}
	return q.publish(topic, body, 0)
}

func (q *AMQPQueue) publish(topic string, body []byte, retries int) error {
	if err := q.declare(topic); err != nil {
		return err
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
	}
	if retries > 0 {
		msg.Headers = amqp.Table{retryHeader: int32(retries)}
	}

	if err := q.ch.Publish("", topic, false, false, msg); err != nil {
		return fmt.Errorf("publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic with manual acks. A handler error republishes
// the body with an incremented retry header until MaxRetries is reached.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	if err := q.declare(topic); err != nil {
		return err
	}

	msgs, err := q.ch.Consume(
		topic,
		"",
		false, // autoAck = false for reliability
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("register consumer on %s: %w", topic, err)
	}

	go func() {
		for d := range msgs {
			q.handle(topic, d, handler)
		}
		logrus.WithField("topic", topic).Info("consumer stopped")
	}()
	return nil
}

func (q *AMQPQueue) handle(topic string, d amqp.Delivery, handler func(payload any) error) {
	log := logrus.WithField("topic", topic)

	err := handler(d.Body)
	if err == nil {
		d.Ack(false)
		return
	}

	retries := retryCount(d.Headers)
	if retries < q.MaxRetries {
		if pubErr := q.publish(topic, d.Body, retries+1); pubErr != nil {
			log.WithError(pubErr).Warn("failed to requeue message")
			d.Nack(false, true)
			return
		}
		log.WithError(err).Warnf("message failed (attempt %d/%d), requeued", retries+1, q.MaxRetries)
		d.Ack(false)
		return
	}

	log.WithError(err).Errorf("message permanently failed after %d retries", q.MaxRetries)
	d.Ack(false)
}

func (q *AMQPQueue) Close() error {
	if err := q.ch.Close(); err != nil {
		q.conn.Close()
		return err
	}
	return q.conn.Close()
}

func encodeBody(payload any) ([]byte, error) {
	switch p := payload.(type) {
	case []byte:
		return p, nil
	case json.RawMessage:
		return p, nil
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return body, nil
}

func retryCount(headers amqp.Table) int {
	switch v := headers[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
