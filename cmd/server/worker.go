package main

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	rabbitmqClient "chatbot-platform/internal/platform/rabbitmq"
	"chatbot-platform/internal/worker"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume activity events and write them to the log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := loadRuntime()
		if err != nil {
			return err
		}
		defer func() { _ = log.Sync() }()

		if cfg.RabbitMQ.URL == "" {
			return errors.New("RABBITMQ_URL is required for the activity worker")
		}
		conn, err := rabbitmqClient.New(cmd.Context(), cfg.RabbitMQ.URL, cfg.RabbitMQ.ActivityQueue)
		if err != nil {
			return err
		}
		defer conn.Close()

		w := worker.NewActivityLogWorker(conn, cfg.RabbitMQ.ActivityQueue, log)
		if err := w.Start(cmd.Context()); err != nil {
			return err
		}
		defer w.Close()
		log.Info("activity worker started", zap.String("queue", cfg.RabbitMQ.ActivityQueue))

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		<-quit
		return nil
	},
}
