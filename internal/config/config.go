// Package config reads the JSON key-value documents that describe a tracing
// run. Lookups never fall back silently: a missing key or a wrongly typed
// value is an error the caller must handle.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

var (
	// ErrKeyMissing matches every *KeyMissingError.
	ErrKeyMissing = errors.New("config key missing")
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("config parse error")
	// ErrType matches every *TypeError.
	ErrType = errors.New("config value has wrong type")
)

// KeyMissingError reports a lookup of a key the document does not define.
type KeyMissingError struct {
	Source string
	Key    string
}

func (e *KeyMissingError) Error() string {
	return fmt.Sprintf("%s: key %q does not exist", e.Source, e.Key)
}

func (e *KeyMissingError) Is(target error) bool { return target == ErrKeyMissing }

// ParseError reports a document that is not a JSON object.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: parse config: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// TypeError reports a key whose value cannot be read as the requested type.
type TypeError struct {
	Source string
	Key    string
	Want   string
	Err    error
}

func (e *TypeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: key %q is not %s: %v", e.Source, e.Key, e.Want, e.Err)
	}
	return fmt.Sprintf("%s: key %q is not %s", e.Source, e.Key, e.Want)
}

func (e *TypeError) Unwrap() error { return e.Err }

func (e *TypeError) Is(target error) bool { return target == ErrType }

// Document is an immutable JSON object with typed accessors. Nested objects
// are reached through Section; their keys are reported with a dotted path.
type Document struct {
	source string
	prefix string
	values map[string]json.RawMessage
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Parse(f, path)
}

// Parse reads a document from r. source names it in error messages.
func Parse(r io.Reader, source string) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	values := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return &Document{source: source, values: values}, nil
}

// Source returns the name the document was loaded from.
func (d *Document) Source() string { return d.source }

// Has reports whether key is defined (a JSON null counts as undefined).
func (d *Document) Has(key string) bool {
	raw, ok := d.values[key]
	return ok && !bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Keys returns the document's keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (d *Document) path(key string) string {
	if d.prefix == "" {
		return key
	}
	return d.prefix + "." + key
}

func (d *Document) lookup(key string, into any, want string) error {
	if !d.Has(key) {
		return &KeyMissingError{Source: d.source, Key: d.path(key)}
	}
	if err := json.Unmarshal(d.values[key], into); err != nil {
		return &TypeError{Source: d.source, Key: d.path(key), Want: want, Err: err}
	}
	return nil
}

// Float returns key as a float64.
func (d *Document) Float(key string) (float64, error) {
	var v float64
	if err := d.lookup(key, &v, "a number"); err != nil {
		return 0, err
	}
	return v, nil
}

// Int returns key as an int. Integral values written in exponent form
// (3.39e6) are accepted.
func (d *Document) Int(key string) (int, error) {
	v, err := d.Float(key)
	if err != nil {
		var te *TypeError
		if errors.As(err, &te) {
			te.Want = "an integer"
		}
		return 0, err
	}
	if v != math.Trunc(v) || math.Abs(v) > math.MaxInt32*float64(1<<31) {
		return 0, &TypeError{Source: d.source, Key: d.path(key), Want: "an integer"}
	}
	return int(v), nil
}

// String returns key as a string.
func (d *Document) String(key string) (string, error) {
	var v string
	if err := d.lookup(key, &v, "a string"); err != nil {
		return "", err
	}
	return v, nil
}

// Bool returns key as a bool.
func (d *Document) Bool(key string) (bool, error) {
	var v bool
	if err := d.lookup(key, &v, "a boolean"); err != nil {
		return false, err
	}
	return v, nil
}

// Floats returns key as an array of numbers.
func (d *Document) Floats(key string) ([]float64, error) {
	var v []float64
	if err := d.lookup(key, &v, "an array of numbers"); err != nil {
		return nil, err
	}
	return v, nil
}

// Section returns the nested object under key.
func (d *Document) Section(key string) (*Document, error) {
	values := make(map[string]json.RawMessage)
	if err := d.lookup(key, &values, "an object"); err != nil {
		return nil, err
	}
	return &Document{source: d.source, prefix: d.path(key), values: values}, nil
}

// Sections returns the array of objects under key.
func (d *Document) Sections(key string) ([]*Document, error) {
	var raw []map[string]json.RawMessage
	if err := d.lookup(key, &raw, "an array of objects"); err != nil {
		return nil, err
	}
	out := make([]*Document, 0, len(raw))
	for i, values := range raw {
		out = append(out, &Document{
			source: d.source,
			prefix: fmt.Sprintf("%s[%d]", d.path(key), i),
			values: values,
		})
	}
	return out, nil
}

// FloatOr returns key as a float64, or def when the key is absent. A present
// but malformed value is still an error.
func (d *Document) FloatOr(key string, def float64) (float64, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Float(key)
}

// IntOr is the optional form of Int.
func (d *Document) IntOr(key string, def int) (int, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Int(key)
}

// StringOr is the optional form of String.
func (d *Document) StringOr(key string, def string) (string, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.String(key)
}

// BoolOr is the optional form of Bool.
func (d *Document) BoolOr(key string, def bool) (bool, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.Bool(key)
}
