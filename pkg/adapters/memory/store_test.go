package memory_test

import (
	"testing"

	"github.com/aretw0/eventmodel/pkg/adapters/memory"
	"github.com/aretw0/eventmodel/pkg/ports"
)

func TestMemoryExporter_Contract(t *testing.T) {
	exp := memory.NewExporter()
	ports.RunExporterContract(t, exp, exp.Get)
}
