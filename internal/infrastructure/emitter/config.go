package emitter

import (
	"github.com/turtacn/riskscore360/internal/config"
	"github.com/turtacn/riskscore360/internal/domain/service"
	"github.com/turtacn/riskscore360/pkg/logger"
)

// FromConfig builds the emitters enabled in cfg: a FileEmitter when an output
// directory is set and a KafkaEmitter when Kafka is enabled. The returned
// KafkaEmitter is nil when Kafka is disabled.
func FromConfig(cfg *config.Config, log logger.Logger) ([]service.ReportEmitter, *KafkaEmitter, error) {
	var emitters []service.ReportEmitter
	if dir := cfg.Output.Directory; dir != "" {
		fe, err := NewFileEmitter(dir, cfg.Output.OutputFormat(), log)
		if err != nil {
			return nil, nil, err
		}
		emitters = append(emitters, fe)
	}

	var kafkaEmitter *KafkaEmitter
	if cfg.Kafka.Enabled {
		kafkaEmitter = NewKafkaEmitter(cfg.Kafka, log)
		emitters = append(emitters, kafkaEmitter)
	}
	return emitters, kafkaEmitter, nil
}

// CloseAll closes every emitter and returns the first error.
func CloseAll(emitters []service.ReportEmitter) error {
	var first error
	for _, e := range emitters {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
