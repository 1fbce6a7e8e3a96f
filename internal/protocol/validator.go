package protocol

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas
var schemaFiles embed.FS

const schemaBaseURL = "https://quantummus.dev/schemas/"

// Validator checks inbound frames against the embedded JSON schemas.
type Validator struct {
	envelope *jsonschema.Schema
	payloads map[MessageType]*jsonschema.Schema
}

// NewValidator compiles every embedded schema.
func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	entries, err := schemaFiles.ReadDir("schemas")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema directory: %w", err)
	}
	for _, entry := range entries {
		data, err := schemaFiles.ReadFile("schemas/" + entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read schema %s: %w", entry.Name(), err)
		}
		if err := compiler.AddResource(schemaBaseURL+entry.Name(), strings.NewReader(string(data))); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", entry.Name(), err)
		}
	}

	compile := func(name string) (*jsonschema.Schema, error) {
		s, err := compiler.Compile(schemaBaseURL + name + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to compile schema %s: %w", name, err)
		}
		return s, nil
	}

	v := &Validator{payloads: make(map[MessageType]*jsonschema.Schema)}
	if v.envelope, err = compile("message"); err != nil {
		return nil, err
	}
	for _, t := range []MessageType{MessageTypeJoin, MessageTypeAction, MessageTypeDiscard, MessageTypeDeclare} {
		s, err := compile(string(t))
		if err != nil {
			return nil, err
		}
		v.payloads[t] = s
	}
	return v, nil
}

// Parse validates a raw client frame and returns its envelope.
func (v *Validator) Parse(frame []byte) (*Message, error) {
	var doc any
	if err := json.Unmarshal(frame, &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if err := v.envelope.Validate(doc); err != nil {
		return nil, fmt.Errorf("message format validation failed: %w", err)
	}

	var msg Message
	if err := json.Unmarshal(frame, &msg); err != nil {
		return nil, fmt.Errorf("invalid message: %w", err)
	}
	schema, ok := v.payloads[msg.Type]
	if !ok {
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
	var data any
	if err := json.Unmarshal(msg.Data, &data); err != nil {
		return nil, fmt.Errorf("invalid %s payload: %w", msg.Type, err)
	}
	if err := schema.Validate(data); err != nil {
		return nil, fmt.Errorf("%s validation failed: %w", msg.Type, err)
	}
	return &msg, nil
}
