package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"kasap-service/config"
	"kasap-service/internal/logger"
	"kasap-service/internal/notification"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	isDev := os.Getenv("ENV") == "development"
	if err := logger.Init(isDev); err != nil {
		panic(err)
	}

	defer logger.Sync()

	log := logger.L()

	kafkaCfg := config.LoadKafka()
	smtpCfg := config.LoadSMTP()

	if len(kafkaCfg.Brokers) == 0 {
		log.Fatal("no kafka brokers configured (KAFKA_BROKERS)")
	}
	if smtpCfg.Host == "" {
		log.Fatal("no smtp host configured (SMTP_HOST)")
	}

	sender := notification.NewEmailSender(notification.SMTPConfig{
		Host:     smtpCfg.Host,
		Port:     smtpCfg.Port,
		User:     smtpCfg.User,
		Password: smtpCfg.Password,
		From:     smtpCfg.From,
		SSL:      smtpCfg.SSL,
	}, config.TemplateDir())

	cons := notification.NewKafkaEmailConsumer(kafkaCfg.Brokers, kafkaCfg.GroupID, kafkaCfg.EmailTopic, sender, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := cons.Run(ctx); err != nil {
			log.Error("consumer stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	<-done
	if err := cons.Close(); err != nil {
		log.Warn("close consumer", zap.Error(err))
	}
}
