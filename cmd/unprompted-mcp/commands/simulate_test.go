package commands

import (
	"bytes"
	"encoding/json"
	"testing"

	"unprompted-mcp/internal/api"
)

func TestWriteExample(t *testing.T) {
	var buf bytes.Buffer
	if err := writeExample(&buf); err != nil {
		t.Fatal(err)
	}

	req, err := api.DecodeBytes(buf.Bytes())
	if err != nil {
		t.Fatalf("Example does not decode: %v", err)
	}
	v, err := req.Parse()
	if err != nil {
		t.Fatalf("Example does not validate: %v", err)
	}
	if v.Kind() != api.CalcMainSimulation {
		t.Errorf("Expected %s, got %s", api.CalcMainSimulation, v.Kind())
	}

	var raw map[string]any
	_ = json.Unmarshal(buf.Bytes(), &raw)
	if _, ok := raw["user_config"]; !ok {
		t.Error("Expected user_config in example")
	}
}
