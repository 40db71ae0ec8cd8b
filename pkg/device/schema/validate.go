package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator checks device payloads against JSON Schema documents. Compiled
// schemas are cached by document text, so the fixed documents in this
// package compile once per Validator.
type Validator struct {
	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

// NewValidator creates a new Validator with an empty cache.
func NewValidator() *Validator {
	return &Validator{
		cache: make(map[string]*jsonschema.Schema),
	}
}

// Validate checks an already decoded payload. An empty, {} or null schema
// accepts anything.
func (v *Validator) Validate(schemaDoc json.RawMessage, payload any) error {
	if isEmpty(schemaDoc) {
		return nil
	}

	compiled, err := v.compile(schemaDoc)
	if err != nil {
		return err
	}
	return compiled.Validate(payload)
}

// ValidateJSON decodes body and validates it against schemaDoc.
// Numbers are decoded without loss so integer checks see the literal value.
func (v *Validator) ValidateJSON(schemaDoc json.RawMessage, body []byte) error {
	payload, err := jsonschema.UnmarshalJSON(bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("invalid json: %w", err)
	}
	return v.Validate(schemaDoc, payload)
}

func isEmpty(doc json.RawMessage) bool {
	s := string(bytes.TrimSpace(doc))
	return s == "" || s == "{}" || s == "null"
}

func (v *Validator) lookup(key string) (*jsonschema.Schema, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	s, ok := v.cache[key]
	return s, ok
}

func (v *Validator) compile(schemaDoc json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaDoc)
	if s, ok := v.lookup(key); ok {
		return s, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	// Another caller may have compiled it while we waited for the lock
	if s, ok := v.cache[key]; ok {
		return s, nil
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaDoc))
	if err != nil {
		return nil, fmt.Errorf("schema is not valid json: %w", err)
	}

	c := jsonschema.NewCompiler()
	if err := c.AddResource("device.schema.json", doc); err != nil {
		return nil, fmt.Errorf("failed to load schema: %w", err)
	}
	compiled, err := c.Compile("device.schema.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	v.cache[key] = compiled
	return compiled, nil
}
