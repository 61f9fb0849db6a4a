// Package export encodes slice collections and fans them out to sinks.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aretw0/eventmodel/pkg/domain"
	"github.com/aretw0/eventmodel/pkg/ports"
	"gopkg.in/yaml.v3"
)

// Format is an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" or "yml".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", s)
	}
}

// ArtifactMarker is the infix of exported artifacts, "<id>.slices.<format>".
const ArtifactMarker = ".slices"

// ProjectFile is the base name of the project config file (eventmodel.toml and friends).
const ProjectFile = "eventmodel"

// Ignored reports whether a document (slash path without extension) is an artifact,
// the project file or a hidden entry rather than a model.
func Ignored(id string) bool {
	if id == "" || strings.HasSuffix(id, ArtifactMarker) || path.Base(id) == ProjectFile {
		return true
	}
	for _, seg := range strings.Split(id, "/") {
		if strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// ArtifactName returns the file name of a model's exported slices, e.g. "orders.slices.json".
func ArtifactName(modelID string, format Format) string {
	return modelID + ArtifactMarker + "." + string(format)
}

// Encode renders the view in the requested format.
// YAML goes through the JSON form so field names stay identical across formats.
func Encode(view *domain.View, format Format) ([]byte, error) {
	data, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal slices: %w", err)
	}

	switch format {
	case FormatJSON, "":
		return append(data, '\n'), nil
	case FormatYAML:
		var generic any
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&generic); err != nil {
			return nil, fmt.Errorf("failed to reshape slices: %w", err)
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(yamlValue(generic)); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// yamlValue turns json.Number into plain integers or floats so YAML does not quote them.
func yamlValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, sub := range val {
			val[k] = yamlValue(sub)
		}
		return val
	case []any:
		for i, sub := range val {
			val[i] = yamlValue(sub)
		}
		return val
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	default:
		return val
	}
}

// Fanout writes a view to several sinks. Every sink is attempted; failures are joined.
type Fanout []ports.Exporter

// Name lists the wrapped sinks.
func (f Fanout) Name() string {
	var buf bytes.Buffer
	for i, e := range f {
		if i > 0 {
			buf.WriteByte('+')
		}
		buf.WriteString(e.Name())
	}
	return buf.String()
}

// Export calls every sink in order.
func (f Fanout) Export(ctx context.Context, modelID string, view *domain.View) error {
	var errs []error
	for _, e := range f {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.Export(ctx, modelID, view); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.Name(), err))
		}
	}
	return errors.Join(errs...)
}
