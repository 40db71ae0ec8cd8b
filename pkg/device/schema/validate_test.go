package schema

import (
	"encoding/json"
	"testing"
)

func TestValidateJSON_DeviceListValid(t *testing.T) {
	v := NewValidator()

	body := []byte(`{"data":{"devices":[
		{"id":1,"name":"Lamp","description":"desk","status":false,"type":"light","value":0},
		{"id":2,"name":"Fan","description":"","status":true,"type":"plug","value":12.5}
	]}}`)
	if err := v.ValidateJSON(DeviceList, body); err != nil {
		t.Errorf("expected valid body, got: %v", err)
	}
}

func TestValidateJSON_DeviceListEmpty(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateJSON(DeviceList, []byte(`{"data":{"devices":[]}}`)); err != nil {
		t.Errorf("expected empty list to be valid, got: %v", err)
	}
}

func TestValidateJSON_DeviceListMissingField(t *testing.T) {
	v := NewValidator()

	body := []byte(`{"data":{"devices":[{"id":1,"name":"Lamp","status":false,"type":"light","value":0}]}}`)
	if err := v.ValidateJSON(DeviceList, body); err == nil {
		t.Error("expected validation error for missing description")
	}
}

func TestValidateJSON_DeviceListWrongType(t *testing.T) {
	v := NewValidator()

	body := []byte(`{"data":{"devices":[{"id":1,"name":"Lamp","description":"","status":"on","type":"light","value":0}]}}`)
	if err := v.ValidateJSON(DeviceList, body); err == nil {
		t.Error("expected validation error for string status")
	}
}

func TestValidateJSON_DeviceListFractionalID(t *testing.T) {
	v := NewValidator()

	body := []byte(`{"data":{"devices":[{"id":1.5,"name":"Lamp","description":"","status":true,"type":"light","value":0}]}}`)
	if err := v.ValidateJSON(DeviceList, body); err == nil {
		t.Error("expected validation error for fractional id")
	}
}

func TestValidateJSON_DeviceListMissingEnvelope(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateJSON(DeviceList, []byte(`{"devices":[]}`)); err == nil {
		t.Error("expected validation error for missing data envelope")
	}
}

func TestValidateJSON_InvalidJSON(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateJSON(DeviceList, []byte(`{"data":`)); err == nil {
		t.Error("expected error for truncated json")
	}
}

func TestValidate_ToggleRequest(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(ToggleRequest, map[string]any{"name": "Lamp", "status": true}); err != nil {
		t.Errorf("expected valid payload, got: %v", err)
	}
	if err := v.Validate(ToggleRequest, map[string]any{"name": "Lamp"}); err == nil {
		t.Error("expected validation error for missing status")
	}
	if err := v.Validate(ToggleRequest, map[string]any{"status": float64(1)}); err == nil {
		t.Error("expected validation error for numeric status")
	}
}

func TestValidate_EmptySchema(t *testing.T) {
	v := NewValidator()

	// Empty schema means no validation
	err := v.Validate(json.RawMessage(`{}`), map[string]any{
		"anything": "goes",
	})
	if err != nil {
		t.Errorf("empty schema should skip validation, got: %v", err)
	}
}

func TestValidate_NilSchema(t *testing.T) {
	v := NewValidator()

	if err := v.Validate(nil, map[string]any{"anything": "goes"}); err != nil {
		t.Errorf("nil schema should skip validation, got: %v", err)
	}
}

func TestValidate_CachesSchema(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateJSON(DeviceList, []byte(`{"data":{"devices":[]}}`)); err != nil {
		t.Fatal(err)
	}
	if err := v.Validate(ToggleRequest, map[string]any{"status": false}); err != nil {
		t.Fatal(err)
	}
	// Second use of the first schema should hit the cache
	if err := v.ValidateJSON(DeviceList, []byte(`{"data":{"devices":[]}}`)); err != nil {
		t.Fatal(err)
	}

	v.mu.RLock()
	cacheSize := len(v.cache)
	v.mu.RUnlock()
	if cacheSize != 2 {
		t.Errorf("expected 2 cached schemas, got %d", cacheSize)
	}
}
