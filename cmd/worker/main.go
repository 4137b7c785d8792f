package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/segmentio/kafka-go"
	"github.com/willowyoga/studiobooking/config"
	"github.com/willowyoga/studiobooking/repository/postgres"
	"github.com/willowyoga/studiobooking/service/mailer"
	"github.com/willowyoga/studiobooking/worker"
)

func main() {
	fmt.Println("Starting Notification Worker")

	// Load configuration
	cfg, err := config.Initialise("config.yaml", false)
	if err != nil {
		log.Printf("Config file not found or invalid, using environment variables: %v", err)
		cfg, err = config.Initialise("", true)
		if err != nil {
			log.Fatal("Failed to load configuration:", err)
		}
	}

	// Initialize repository
	repo, err := postgres.NewRepository(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to initialize repository:", err)
	}

	// Initialize email provider
	emailProvider := mailer.NewHTTPMailer(&cfg.Mailer)

	// Setup Kafka consumer
	consumer := kafka.NewReader(kafka.ReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.NotificationTopic,
		GroupID: cfg.Kafka.ConsumerGroup,
	})
	defer consumer.Close()

	// Graceful shutdown context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("Received shutdown signal, stopping worker...")
		cancel()
	}()

	processor := worker.NewNotificationProcessor(repo, emailProvider, consumer,
		cfg.Worker.MaxWorkers, cfg.Worker.MaxAttempts)

	fmt.Println("Notification processor worker started")
	if err := processor.Start(ctx); err != nil && err != context.Canceled {
		log.Fatal("Worker error:", err)
	}

	fmt.Println("Worker stopped gracefully")
}
