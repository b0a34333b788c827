package emitter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/propagation"

	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/errors"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// messageWriter is the subset of *kafka.Writer used by KafkaEmitter.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// TraceInjector writes the span context carried by ctx into a carrier.
// *monitoring.TracingManager satisfies it.
type TraceInjector interface {
	InjectTraceContext(ctx context.Context, carrier propagation.TextMapCarrier)
}

// KafkaEmitter publishes every result as a JSON message keyed by subscription.
type KafkaEmitter struct {
	writer  messageWriter
	topic   string
	brokers []string
	tracing TraceInjector
	logger  logger.Logger
}

// NewKafkaEmitter creates an emitter publishing to cfg.Topic.
func NewKafkaEmitter(cfg config.KafkaConfig, log logger.Logger) *KafkaEmitter {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequiredAcks(cfg.RequiredAcks),
		BatchTimeout: cfg.BatchTimeout,
		WriteTimeout: 10 * time.Second,
	}
	e := newKafkaEmitter(writer, cfg.Topic, log)
	e.brokers = cfg.Brokers
	return e
}

func newKafkaEmitter(w messageWriter, topic string, log logger.Logger) *KafkaEmitter {
	if log == nil {
		log = logger.NewNoopLogger()
	}
	return &KafkaEmitter{
		writer: w,
		topic:  topic,
		logger: log.WithComponent("kafka_emitter"),
	}
}

// WithTracing makes Emit copy the caller's trace context into the message
// headers so a downstream consumer can continue the trace.
func (e *KafkaEmitter) WithTracing(t TraceInjector) *KafkaEmitter {
	e.tracing = t
	return e
}

func (e *KafkaEmitter) Name() string { return "kafka" }

// Emit writes one message. Messages of one subscription share a partition.
func (e *KafkaEmitter) Emit(ctx context.Context, result *models.ScoreResult) error {
	value, err := json.Marshal(result)
	if err != nil {
		e.logger.Error(ctx, "failed to marshal report", err)
		return errors.ErrEmitFailed(e.Name(), err)
	}

	key := constants.UnknownIdentifier
	if result.Report != nil && result.Report.SubscriptionID != "" {
		key = result.Report.SubscriptionID
	}

	headers := headerCarrier{
		{Key: "report_id", Value: []byte(result.ReportID)},
		{Key: "schema_version", Value: []byte(constants.ReportSchemaVersion)},
		{Key: "content_type", Value: []byte("application/json")},
	}
	if e.tracing != nil {
		e.tracing.InjectTraceContext(ctx, &headers)
	}

	err = e.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Headers: headers,
	})
	if err != nil {
		e.logger.Error(ctx, "failed to write message to Kafka", err, logger.Fields{
			"topic":     e.topic,
			"report_id": result.ReportID,
		})
		return errors.ErrEmitFailed(e.Name(), err)
	}
	return nil
}

// Ping dials the brokers until one answers. It backs the readiness probe.
func (e *KafkaEmitter) Ping(ctx context.Context) error {
	if len(e.brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	var lastErr error
	for _, broker := range e.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err == nil {
			return conn.Close()
		}
		lastErr = err
	}
	return lastErr
}

// Close flushes pending messages and closes the underlying writer.
func (e *KafkaEmitter) Close() error {
	return e.writer.Close()
}

// headerCarrier adapts Kafka message headers to propagation.TextMapCarrier.
type headerCarrier []kafka.Header

func (h *headerCarrier) Get(key string) string {
	for _, header := range *h {
		if header.Key == key {
			return string(header.Value)
		}
	}
	return ""
}

func (h *headerCarrier) Set(key, value string) {
	for i := range *h {
		if (*h)[i].Key == key {
			(*h)[i].Value = []byte(value)
			return
		}
	}
	*h = append(*h, kafka.Header{Key: key, Value: []byte(value)})
}

func (h *headerCarrier) Keys() []string {
	keys := make([]string, 0, len(*h))
	for _, header := range *h {
		keys = append(keys, header.Key)
	}
	return keys
}
