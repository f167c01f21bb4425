package llm

import (
	"slices"
	"strings"
	"testing"
)

func TestDialectRegistry(t *testing.T) {
	withDialects(t)

	RegisterDialect("sarvam", stubDialect{name: "sarvam"})
	RegisterDialect("bhashini", stubDialect{name: "first"})
	RegisterDialect("bhashini", stubDialect{name: "second"})

	got, err := GetDialect("bhashini")
	if err != nil {
		t.Fatalf("GetDialect() error = %v", err)
	}
	if got.Name() != "second" {
		t.Errorf("re-registering should replace, got %q", got.Name())
	}
	if names := Dialects(); !slices.Equal(names, []string{"bhashini", "sarvam"}) {
		t.Errorf("Dialects() = %v", names)
	}

	_, err = GetDialect("nonexistent")
	if err == nil || !strings.Contains(err.Error(), `"nonexistent"`) {
		t.Errorf("GetDialect(nonexistent) error = %v", err)
	}
}
