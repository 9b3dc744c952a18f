package nats

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/spf13/viper"
)

// Client publishes events to NATS subjects "<prefix>.<routing key>".
type Client struct {
	conn   *nats.Conn
	prefix string
}

// NewClient connects to the NATS server at url.
func NewClient(url, prefix string) (*Client, error) {
	conn, err := nats.Connect(url,
		nats.Name("bookstore"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			slog.Info("NATS reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	slog.Info("NATS connected", "url", url, "subject_prefix", prefix)

	return &Client{conn: conn, prefix: prefix}, nil
}

// MustNewClient creates a new NATS client from configuration.
func MustNewClient() *Client {
	client, err := NewClient(viper.GetString("nats.url"), viper.GetString("nats.subject_prefix"))
	if err != nil {
		panic(err)
	}

	return client
}

// Subject returns the subject for a routing key.
func Subject(prefix, routingKey string) string {
	if prefix == "" {
		return routingKey
	}

	return prefix + "." + routingKey
}

// Publish sends body to the subject derived from routingKey.
func (c *Client) Publish(ctx context.Context, routingKey, contentType string, body []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := nats.NewMsg(Subject(c.prefix, routingKey))
	msg.Header.Set("Content-Type", contentType)
	msg.Data = body

	if err := c.conn.PublishMsg(msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", msg.Subject, err)
	}

	return nil
}

// Close drains pending messages and closes the connection.
func (c *Client) Close() error {
	if err := c.conn.Drain(); err != nil {
		c.conn.Close()

		return err
	}

	return nil
}
