package serializer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/prn-tf/marketplace/internal/domain"
)

// ParseError is returned for a request body that is not valid JSON.
type ParseError struct {
	Err error
}

// Error implements the error interface. The text is returned to clients.
func (e *ParseError) Error() string {
	return "JSON parse error - " + e.Err.Error()
}

// Unwrap returns the underlying decoding error.
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Meta describes how a body was read.
type Meta struct {
	// Discarded lists supplied fields the profile does not accept, sorted.
	Discarded []string
}

// payload is a decoded JSON object restricted to a profile's writable fields.
type payload struct {
	profile Profile
	partial bool
	fields  map[string]json.RawMessage
	errs    *domain.ValidationError
	meta    Meta
}

func decode(op Operation, body []byte, partial bool) (*payload, error) {
	profile, ok := ProfileFor(op)
	if !ok {
		return nil, fmt.Errorf("serializer: no profile for operation %d", op)
	}

	supplied := make(map[string]json.RawMessage)
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 {
		if !json.Valid(trimmed) {
			var scratch any
			err := json.Unmarshal(trimmed, &scratch)
			return nil, &ParseError{Err: err}
		}
		switch trimmed[0] {
		case '{':
			if err := json.Unmarshal(trimmed, &supplied); err != nil {
				return nil, &ParseError{Err: err}
			}
		case 'n':
			return nil, domain.FieldError(domain.NonFieldErrorsKey, "No data provided")
		default:
			return nil, domain.FieldError(domain.NonFieldErrorsKey,
				fmt.Sprintf("Invalid data. Expected a dictionary, but got %s.", jsonTypeName(trimmed)))
		}
	}

	p := &payload{
		profile: profile,
		partial: partial,
		fields:  make(map[string]json.RawMessage, len(supplied)),
		errs:    domain.NewValidationError(),
	}
	for name, raw := range supplied {
		if profile.IsWritable(name) {
			p.fields[name] = raw
			continue
		}
		p.meta.Discarded = append(p.meta.Discarded, name)
	}
	sort.Strings(p.meta.Discarded)
	return p, nil
}

func jsonTypeName(raw []byte) string {
	switch raw[0] {
	case '[':
		return "list"
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	}
	if bytes.ContainsAny(raw, ".eE") {
		return "float"
	}
	return "int"
}

// lookup returns the raw value of a supplied, non-null field. A missing
// required field on a full write and an explicit null are recorded as errors.
func (p *payload) lookup(name string) (json.RawMessage, bool) {
	raw, ok := p.fields[name]
	if !ok {
		if !p.partial && p.profile.IsRequired(name) {
			p.errs.Add(name, domain.MsgRequired)
		}
		return nil, false
	}
	if string(raw) == "null" {
		p.errs.Add(name, domain.MsgNull)
		return nil, false
	}
	return raw, true
}

// String reads a text field. JSON numbers are accepted as their literal text.
// Surrounding whitespace is trimmed when trim is set.
func (p *payload) String(name string, trim bool) (string, bool) {
	raw, ok := p.lookup(name)
	if !ok {
		return "", false
	}

	var value string
	switch {
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &value); err != nil {
			p.errs.Add(name, domain.MsgInvalidString)
			return "", false
		}
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
		value = string(raw)
	default:
		p.errs.Add(name, domain.MsgInvalidString)
		return "", false
	}

	if trim {
		value = strings.TrimSpace(value)
	}
	return value, true
}

var (
	trueValues  = map[string]bool{"true": true, "True": true, "TRUE": true, "1": true, "yes": true, "Yes": true, "YES": true, "y": true, "Y": true, "on": true, "On": true, "ON": true}
	falseValues = map[string]bool{"false": true, "False": true, "FALSE": true, "0": true, "no": true, "No": true, "NO": true, "n": true, "N": true, "off": true, "Off": true, "OFF": true}
)

// Bool reads a boolean field. Besides JSON booleans it accepts 1/0 and the
// usual textual spellings.
func (p *payload) Bool(name string) (bool, bool) {
	raw, ok := p.lookup(name)
	if !ok {
		return false, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			p.errs.Add(name, domain.MsgInvalidBoolean)
			return false, false
		}
		text = strings.TrimSpace(text)
	}

	switch {
	case trueValues[text]:
		return true, true
	case falseValues[text]:
		return false, true
	}
	p.errs.Add(name, domain.MsgInvalidBoolean)
	return false, false
}

var integerPattern = regexp.MustCompile(`^[-+]?\d+(\.0*)?$`)

// Int reads an integer field from a JSON number or numeric string. A value
// too large for int64 saturates so range validation reports the bound.
func (p *payload) Int(name string) (int64, bool) {
	raw, ok := p.lookup(name)
	if !ok {
		return 0, false
	}

	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			p.errs.Add(name, domain.MsgInvalidInteger)
			return 0, false
		}
		text = strings.TrimSpace(text)
	}
	if !integerPattern.MatchString(text) {
		p.errs.Add(name, domain.MsgInvalidInteger)
		return 0, false
	}
	if i := strings.IndexByte(text, '.'); i >= 0 {
		text = text[:i]
	}

	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		if strings.HasPrefix(text, "-") {
			return math.MinInt64, true
		}
		return math.MaxInt64, true
	}
	return n, true
}

// Price reads a decimal field from a JSON number or numeric string.
func (p *payload) Price(name string) (domain.Price, bool) {
	raw, ok := p.lookup(name)
	if !ok {
		return 0, false
	}

	text := string(raw)
	switch {
	case raw[0] == '"':
		if err := json.Unmarshal(raw, &text); err != nil {
			p.errs.Add(name, domain.MsgInvalidNumber)
			return 0, false
		}
	case raw[0] == '-' || (raw[0] >= '0' && raw[0] <= '9'):
	default:
		p.errs.Add(name, domain.MsgInvalidNumber)
		return 0, false
	}

	price, err := domain.ParsePrice(text)
	if err != nil {
		p.errs.Add(name, err.Error())
		return 0, false
	}
	return price, true
}

// addAll records every message for a field.
func (p *payload) addAll(name string, msgs []string) {
	for _, msg := range msgs {
		p.errs.Add(name, msg)
	}
}

// err returns the collected validation errors, or nil.
func (p *payload) err() error {
	return p.errs.OrNil()
}
