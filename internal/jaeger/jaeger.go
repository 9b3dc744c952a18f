package jaeger

import (
	"fmt"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/exporters/jaeger"
)

// NewJaeger creates a collector exporter for tracing.jaeger_endpoint.
func NewJaeger() (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(viper.GetString("tracing.jaeger_endpoint")),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create jaeger exporter: %w", err)
	}

	return exp, nil
}

func MustNewJaeger() *jaeger.Exporter {
	exp, err := NewJaeger()
	if err != nil {
		panic(err)
	}

	return exp
}
