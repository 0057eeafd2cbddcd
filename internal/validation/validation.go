// Package validation checks request bodies against embedded JSON schemas.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names one of the embedded request schemas.
type Schema string

const (
	Register       Schema = "register.json"
	Login          Schema = "login.json"
	Google         Schema = "google.json"
	Profile        Schema = "profile.json"
	PasswordChange Schema = "password.json"
	TodoCreate     Schema = "todo_create.json"
	TodoUpdate     Schema = "todo_update.json"
	DueCheck       Schema = "due_check.json"
)

var allSchemas = []Schema{Register, Login, Google, Profile, PasswordChange, TodoCreate, TodoUpdate, DueCheck}

// messages replaces the schema library's wording for fields users see.
var messages = map[string]string{
	"/email":           "Invalid email format",
	"/password":        "Password must be at least 6 characters",
	"/name":            "Name must be at least 2 characters",
	"/dob":             "Invalid date format",
	"/phone":           "Invalid phone number",
	"/bio":             "Bio cannot exceed 500 characters",
	"/gender":          "Invalid gender selection",
	"/currentPassword": "Current password must be at least 6 characters",
	"/newPassword":     "Password must be at least 6 characters and contain at least one uppercase letter, one lowercase letter, and one number",
	"/confirmPassword": "Confirm password must be at least 6 characters",
	"/title":           "Title is required",
	"/description":     "Description cannot exceed 100 characters",
	"/dueDate":         "Invalid date format",
	"/dueTime":         "Due time must be HH:MM",
	"/priority":        "Priority must be low, normal, high, or urgent",
	"/completed":       "Completed must be a boolean",
	"/credential":      "Google credential is required",
	"/telegramChatId":  "Telegram chat id must be a number",
}

// FieldError describes one invalid field.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Error is returned for any request that fails validation.
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	if len(e.Fields) == 0 {
		return "validation error"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		if f.Path == "" {
			parts = append(parts, f.Message)
			continue
		}
		parts = append(parts, f.Path+": "+f.Message)
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Fail builds an Error for a single field.
func Fail(path, message string) *Error {
	return &Error{Fields: []FieldError{{Path: path, Message: message}}}
}

// Validator holds compiled schemas. It is safe for concurrent use.
type Validator struct {
	schemas map[Schema]*jsonschema.Schema
}

// New compiles every embedded schema.
func New() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true

	for _, name := range allSchemas {
		data, err := schemaFS.ReadFile("schemas/" + string(name))
		if err != nil {
			return nil, fmt.Errorf("read schema %s: %w", name, err)
		}
		if err := compiler.AddResource(string(name), bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("add schema %s: %w", name, err)
		}
	}

	v := &Validator{schemas: make(map[Schema]*jsonschema.Schema, len(allSchemas))}
	for _, name := range allSchemas {
		schema, err := compiler.Compile(string(name))
		if err != nil {
			return nil, fmt.Errorf("compile schema %s: %w", name, err)
		}
		v.schemas[name] = schema
	}
	return v, nil
}

// Validate checks a raw JSON body against the named schema.
func (v *Validator) Validate(name Schema, body []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema %q", name)
	}

	doc, err := decodeDocument(body)
	if err != nil {
		return Fail("", "Request body must be valid JSON")
	}

	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("validate %s: %w", name, err)
		}
		return toError(ve)
	}
	return nil
}

// decodeDocument reads a single JSON value, keeping numbers as
// json.Number so integer checks see the literal.
func decodeDocument(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return doc, nil
}

func toError(ve *jsonschema.ValidationError) *Error {
	seen := make(map[string]bool)
	var fields []FieldError
	var walk func(*jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) > 0 {
			for _, cause := range e.Causes {
				walk(cause)
			}
			return
		}
		msg, ok := messages[e.InstanceLocation]
		if !ok {
			msg = e.Message
		}
		path := strings.ReplaceAll(strings.TrimPrefix(e.InstanceLocation, "/"), "/", ".")
		key := path + "\x00" + msg
		if seen[key] {
			return
		}
		seen[key] = true
		fields = append(fields, FieldError{Path: path, Message: msg})
	}
	walk(ve)

	sort.SliceStable(fields, func(i, j int) bool { return fields[i].Path < fields[j].Path })
	return &Error{Fields: fields}
}
