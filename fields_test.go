package observable

import (
	"testing"
	"time"
)

func TestKeyField(t *testing.T) {
	field := KeyField.Field("count")
	if field.Key().Name() != "field" {
		t.Errorf("expected key 'field', got %q", field.Key().Name())
	}
}

func TestKeyInstance(t *testing.T) {
	field := KeyInstance.Field("abc")
	if field.Key().Name() != "instance" {
		t.Errorf("expected key 'instance', got %q", field.Key().Name())
	}
}

func TestKeyFields(t *testing.T) {
	field := KeyFields.Field(3)
	if field.Key().Name() != "fields" {
		t.Errorf("expected key 'fields', got %q", field.Key().Name())
	}
}

func TestKeyStage(t *testing.T) {
	field := KeyStage.Field("decode")
	if field.Key().Name() != "stage" {
		t.Errorf("expected key 'stage', got %q", field.Key().Name())
	}
}

func TestKeyNewStatus(t *testing.T) {
	field := KeyNewStatus.Field("synced")
	if field.Key().Name() != "new_status" {
		t.Errorf("expected key 'new_status', got %q", field.Key().Name())
	}
}

func TestKeyDebounce(t *testing.T) {
	field := KeyDebounce.Field(100 * time.Millisecond)
	if field.Key().Name() != "debounce" {
		t.Errorf("expected key 'debounce', got %q", field.Key().Name())
	}
}
