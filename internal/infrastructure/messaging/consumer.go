package messaging

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler 消息处理函数,返回error时消息重新入队
type Handler func(ctx context.Context, routingKey string, body []byte) error

// Consumer RabbitMQ消费者
type Consumer struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	queue   string
	log     *zap.Logger
}

// NewConsumer 声明持久化队列并绑定routingKeys(支持通配符,如book.*)
func NewConsumer(url, exchange, queue string, routingKeys []string, log *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("连接RabbitMQ失败: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("创建Channel失败: %w", err)
	}

	fail := func(err error) (*Consumer, error) {
		_ = channel.Close()
		_ = conn.Close()
		return nil, err
	}

	if err := declareExchange(channel, exchange); err != nil {
		return fail(err)
	}

	// durable=true, autoDelete=false, exclusive=false
	q, err := channel.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail(fmt.Errorf("声明Queue失败: %w", err))
	}

	for _, key := range routingKeys {
		if err := channel.QueueBind(q.Name, key, exchange, false, nil); err != nil {
			return fail(fmt.Errorf("绑定Queue失败: %w", err))
		}
	}

	log.Info("消息消费者已创建", zap.String("queue", q.Name), zap.Strings("routing_keys", routingKeys))

	return &Consumer{conn: conn, channel: channel, queue: q.Name, log: log}, nil
}

// Consume 手动确认消费,直到ctx取消
// PrefetchCount=1,处理完一条再取下一条
func (c *Consumer) Consume(ctx context.Context, handler Handler) error {
	if err := c.channel.Qos(1, 0, false); err != nil {
		return fmt.Errorf("设置Qos失败: %w", err)
	}

	msgs, err := c.channel.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("开始消费失败: %w", err)
	}

	c.log.Info("开始消费消息", zap.String("queue", c.queue))

	for {
		select {
		case <-ctx.Done():
			c.log.Info("消费者退出", zap.String("queue", c.queue))
			return nil

		case msg, ok := <-msgs:
			if !ok {
				return errors.New("消息Channel已关闭")
			}
			c.dispatch(ctx, msg, handler)
		}
	}
}

func (c *Consumer) dispatch(ctx context.Context, msg amqp.Delivery, handler Handler) {
	if err := handler(ctx, msg.RoutingKey, msg.Body); err != nil {
		c.log.Warn("消息处理失败,重新入队", zap.String("routing_key", msg.RoutingKey), zap.Error(err))
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
}

// Close 关闭Channel和连接
func (c *Consumer) Close() error {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// DecodeEvent 解析消息体
func DecodeEvent(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("消息解析失败: %w", err)
	}
	return nil
}
