// Package messaging 借还事件发布(RabbitMQ topic exchange)
//
// 事件在数据库事务提交后发布,发布失败只记日志,不影响借还结果。
package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExchangeType 借还事件使用topic交换机,消费者可按book.*订阅
const ExchangeType = "topic"

// Publisher 事件发布接口
type Publisher interface {
	Publish(ctx context.Context, routingKey string, event any) error
	Close() error
}

// AMQPPublisher RabbitMQ发布者
// amqp.Channel不是并发安全的,发布时加锁
type AMQPPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
	metrics  *metrics.Metrics
	log      *zap.Logger

	mu sync.Mutex
}

// NewAMQPPublisher 连接RabbitMQ并声明持久化交换机
func NewAMQPPublisher(url, exchange string, m *metrics.Metrics, log *zap.Logger) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	if err := declareExchange(channel, exchange); err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	log.Info("消息发布者已创建", zap.String("exchange", exchange))

	return &AMQPPublisher{
		conn:     conn,
		channel:  channel,
		exchange: exchange,
		metrics:  m,
		log:      log,
	}, nil
}

// Publish 以JSON发布持久化消息
func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, event any) error {
	msg, err := encode(event)
	if err != nil {
		p.metrics.ObservePublish(routingKey, metrics.ResultError)
		return err
	}

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, msg)
	p.mu.Unlock()
	if err != nil {
		p.metrics.ObservePublish(routingKey, metrics.ResultError)
		return fmt.Errorf("发布消息失败: %w", err)
	}

	p.metrics.ObservePublish(routingKey, metrics.ResultSuccess)
	p.log.Debug("消息已发布", zap.String("routing_key", routingKey), zap.Int("bytes", len(msg.Body)))
	return nil
}

// Close 关闭Channel和连接
func (p *AMQPPublisher) Close() error {
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// encode 序列化为持久化的JSON消息
func encode(event any) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("消息序列化失败: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	}, nil
}

func declareExchange(ch *amqp.Channel, exchange string) error {
	// durable=true, autoDelete=false, internal=false, noWait=false
	if err := ch.ExchangeDeclare(exchange, ExchangeType, true, false, false, false, nil); err != nil {
		return fmt.Errorf("声明Exchange失败: %w", err)
	}
	return nil
}

// NopPublisher 未启用消息队列时使用
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

func (NopPublisher) Close() error { return nil }
