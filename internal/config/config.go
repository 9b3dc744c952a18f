package config

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/corray333/backend-labs/bookstore/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func MustInit() {
	if err := godotenv.Load("./.env"); err != nil {
		slog.Warn("No .env file loaded, using environment", "error", err)
	}

	SetDefaults()
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("/etc/bookstore")
	viper.AddConfigPath(".")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic("error while reading config file: " + err.Error())
		}
		slog.Warn("No config file found, using defaults")
	}
	SetupLogger()
}

// SetDefaults registers a value for every key the service reads.
func SetDefaults() {
	viper.SetDefault("server.http.port", "8080")
	viper.SetDefault("server.http.cors.allowed_origins", []string{"*"})
	viper.SetDefault("server.http.cors.allowed_methods", []string{"GET", "POST", "DELETE", "OPTIONS"})
	viper.SetDefault("server.http.cors.allowed_headers", []string{"Accept", "Content-Type", "X-Request-Id"})
	viper.SetDefault("server.http.cors.exposed_headers", []string{"X-Request-Id"})
	viper.SetDefault("server.http.cors.allow_credentials", false)
	viper.SetDefault("server.http.cors.max_age", 300)
	viper.SetDefault("server.http.shutdown_timeout_seconds", 10)

	viper.SetDefault("server.grpc.port", "9090")
	viper.SetDefault("server.grpc.keepalive.time_seconds", 60)
	viper.SetDefault("server.grpc.keepalive.timeout_seconds", 20)

	viper.SetDefault("storage.driver", "memory")
	viper.SetDefault("postgres.host", "localhost")
	viper.SetDefault("postgres.port", 5432)
	viper.SetDefault("postgres.db", "bookstore")
	viper.SetDefault("postgres.max_conns", 10)

	viper.SetDefault("notify.buffer_size", 64)
	viper.SetDefault("notify.ws.ping_interval_seconds", 30)
	viper.SetDefault("notify.ws.write_timeout_seconds", 10)

	viper.SetDefault("relay.broker", "none")
	viper.SetDefault("rabbitmq.host", "localhost")
	viper.SetDefault("rabbitmq.port", 5672)
	viper.SetDefault("rabbitmq.exchange", "bookstore.events")
	viper.SetDefault("nats.url", "nats://localhost:4222")
	viper.SetDefault("nats.subject_prefix", "bookstore")

	viper.SetDefault("outbox.poll_interval_seconds", 10)
	viper.SetDefault("outbox.batch_size", 100)
	viper.SetDefault("outbox.max_retries", 5)

	viper.SetDefault("tracing.enabled", false)
	viper.SetDefault("tracing.jaeger_endpoint", "http://jaeger:14268/api/traces")
	viper.SetDefault("tracing.service_name", "bookstore")

	viper.SetDefault("workflow.release_timeout_seconds", 10)
	viper.SetDefault("workflow.step_timeout_seconds", 30)
	viper.SetDefault("log.level", "info")
}

func SetupLogger() {
	handler := logger.NewHandler(&slog.HandlerOptions{
		Level: logger.ParseLevel(viper.GetString("log.level")),
	})
	log := slog.New(handler)
	slog.SetDefault(log)
}
