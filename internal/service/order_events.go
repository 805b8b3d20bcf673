package service

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// OrderEventQueue 订单状态变更事件队列
const OrderEventQueue = "order_events"

// OrderEvent 订单状态变更事件，通知侧（短信/站内信）由 worker 消费
type OrderEvent struct {
	OrderNo    string    `json:"order_no"`
	UserID     int64     `json:"user_id"`
	Status     int       `json:"status"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderEventPublisher 订单事件发布器。发布失败只记指标不影响主流程，
// 事件在订单事务提交之后才发出。
type OrderEventPublisher struct {
	conn *amqp.Connection
}

// NewOrderEventPublisher 创建发布器，conn 为 nil 时发布为空操作（本地开发/测试）
func NewOrderEventPublisher(conn *amqp.Connection) *OrderEventPublisher {
	return &OrderEventPublisher{conn: conn}
}

// Publish 发布事件
func (p *OrderEventPublisher) Publish(ctx context.Context, ev *OrderEvent) error {
	if p == nil || p.conn == nil {
		return nil
	}

	ch, err := p.conn.Channel()
	if err != nil {
		return err
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(OrderEventQueue, true, false, false, false, nil); err != nil {
		return err
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	return ch.PublishWithContext(
		ctx,
		"",
		OrderEventQueue,
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}
