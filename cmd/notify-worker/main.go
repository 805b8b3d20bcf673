package main

import (
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/happy2h/gomall/internal/config"
	"github.com/happy2h/gomall/internal/datamodels/order"
	"github.com/happy2h/gomall/internal/infra/logger"
	"github.com/happy2h/gomall/internal/infra/mq"
	"github.com/happy2h/gomall/internal/service"
)

// 订单事件通知 worker：消费订单状态变更事件，向买家发送通知。
// 目前通知渠道未接入，先落日志占位。
func main() {
	logger.Init()
	defer zap.L().Sync()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		zap.L().Fatal("加载配置失败", zap.Error(err))
	}

	conn := mq.Init(&cfg.RabbitMQ)
	ch, err := conn.Channel()
	if err != nil {
		zap.L().Fatal("打开 MQ 通道失败", zap.Error(err))
	}
	defer ch.Close()

	if _, err = ch.QueueDeclare(service.OrderEventQueue, true, false, false, false, nil); err != nil {
		zap.L().Fatal("声明队列失败", zap.Error(err))
	}
	if err = ch.Qos(16, 0, false); err != nil {
		zap.L().Fatal("设置 Qos 失败", zap.Error(err))
	}

	msgs, err := ch.Consume(service.OrderEventQueue, "", false, false, false, false, nil)
	if err != nil {
		zap.L().Fatal("订阅队列失败", zap.Error(err))
	}

	zap.L().Info("通知 worker 启动", zap.String("queue", service.OrderEventQueue))

	go func() {
		for msg := range msgs {
			var ev service.OrderEvent
			if err := json.Unmarshal(msg.Body, &ev); err != nil {
				zap.L().Error("事件解析失败，丢弃", zap.Error(err))
				msg.Nack(false, false)
				continue
			}

			statusName, err := order.Status(ev.Status).Name()
			if err != nil {
				statusName = "未知状态"
			}
			// TODO: 接入短信/站内信渠道后在这里真正下发通知
			zap.L().Info("订单状态变更通知",
				zap.String("order_no", ev.OrderNo),
				zap.Int64("user_id", ev.UserID),
				zap.String("status", statusName),
				zap.Time("occurred_at", ev.OccurredAt),
			)
			msg.Ack(false)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zap.L().Info("通知 worker 退出")
}
