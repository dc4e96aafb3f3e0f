package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xiebiao/librarydesk/internal/domain/transaction"
	"github.com/xiebiao/librarydesk/internal/infrastructure/messaging"
)

func newConsumeCmd(configFile *string) *cobra.Command {
	var queue string

	cmd := &cobra.Command{
		Use:   "consume",
		Short: "消费借还事件并写入日志",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			if !cfg.MQ.Enabled {
				return errors.New("mq.enabled为false,没有可消费的事件")
			}

			consumer, err := messaging.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, queue,
				[]string{transaction.RoutingKeyIssued, transaction.RoutingKeyReturned}, log)
			if err != nil {
				return err
			}
			defer consumer.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return consumer.Consume(ctx, logEvent(log))
		},
	}
	cmd.Flags().StringVar(&queue, "queue", "librarydesk.audit", "队列名")
	return cmd
}

// logEvent 解析失败的消息直接丢弃(返回nil),避免反复重新入队
func logEvent(log *zap.Logger) messaging.Handler {
	return func(_ context.Context, routingKey string, body []byte) error {
		var e transaction.Event
		if err := messaging.DecodeEvent(body, &e); err != nil {
			log.Warn("无法解析的事件,已丢弃", zap.String("routing_key", routingKey), zap.Error(err))
			return nil
		}

		fields := []zap.Field{
			zap.String("event_id", e.EventID),
			zap.String("routing_key", routingKey),
			zap.String("txn_no", e.TxnNo),
			zap.Uint("book_id", e.BookID),
			zap.Uint("member_id", e.MemberID),
			zap.Time("due_date", e.DueDate),
		}
		if e.ReturnDate != nil {
			fields = append(fields, zap.Time("return_date", *e.ReturnDate), zap.Int64("fine", e.Fine))
		}
		log.Info("借还事件", fields...)
		return nil
	}
}
