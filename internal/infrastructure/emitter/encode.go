// Package emitter delivers scored reports to files, streams and Kafka.
package emitter

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/turtacn/riskscore360/internal/domain/models"
	"github.com/turtacn/riskscore360/pkg/constants"
	"github.com/turtacn/riskscore360/pkg/utils"
)

// Encode renders a result in the given format. JSON output is indented; YAML
// output keeps the JSON key order and uses block style throughout.
func Encode(result *models.ScoreResult, format constants.OutputFormat) ([]byte, error) {
	return EncodeValue(result, format)
}

// EncodeValue renders any JSON-serializable value the way Encode renders a result.
func EncodeValue(v interface{}, format constants.OutputFormat) ([]byte, error) {
	data, err := utils.ToJSONPretty(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}

	switch format {
	case constants.OutputFormatJSON, "":
		return append(data, '\n'), nil
	case constants.OutputFormatYAML:
		return jsonToYAML(data)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Extension returns the file extension for format.
func Extension(format constants.OutputFormat) string {
	if format == constants.OutputFormatYAML {
		return ".yaml"
	}
	return ".json"
}

func jsonToYAML(data []byte) ([]byte, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("failed to convert report to yaml: %w", err)
	}
	blockStyle(&node)
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report as yaml: %w", err)
	}
	return out, nil
}

// blockStyle drops the flow and quoting styles inherited from JSON syntax.
// The encoder still quotes strings that would otherwise resolve to another type.
func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, child := range n.Content {
		blockStyle(child)
	}
}
