package message

import (
	"bytes"
	"encoding/json"
	"fmt"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"csvsink/pkg/errors"
)

const (
	TypeSchema = "SCHEMA"
	TypeRecord = "RECORD"
	TypeState  = "STATE"
)

// Fields holds a record's columns in the order they appeared on the
// wire. Header inference depends on that order, so a plain map will
// not do.
type Fields = orderedmap.OrderedMap[string, interface{}]

type Message interface {
	messageType() string
}

type Schema struct {
	Stream        string
	Schema        json.RawMessage
	KeyProperties []string
}

type Record struct {
	Stream string
	Fields *Fields
	// Raw is the record payload exactly as received, fed to the
	// validator so validation sees what the producer sent.
	Raw json.RawMessage
}

type State struct {
	Value json.RawMessage
}

type Unknown struct {
	Type string
	Raw  string
}

func (Schema) messageType() string { return TypeSchema }
func (Record) messageType() string { return TypeRecord }
func (State) messageType() string  { return TypeState }
func (m Unknown) messageType() string { return m.Type }

type envelope struct {
	Type          string          `json:"type"`
	Stream        string          `json:"stream,omitempty"`
	Schema        json.RawMessage `json:"schema,omitempty"`
	Record        json.RawMessage `json:"record,omitempty"`
	Value         json.RawMessage `json:"value,omitempty"`
	KeyProperties []string        `json:"key_properties,omitempty"`
}

// Decode parses one input line into a typed message. Malformed lines
// are fatal; an unrecognized type tag is not, it comes back as Unknown
// for the caller to log and skip.
func Decode(line string) (Message, error) {
	var env envelope
	if err := json.Unmarshal([]byte(line), &env); err != nil {
		return nil, errors.ErrDecode.WithDetail("line", line).WithCause(err)
	}

	switch env.Type {
	case TypeSchema:
		return Schema{
			Stream:        env.Stream,
			Schema:        env.Schema,
			KeyProperties: env.KeyProperties,
		}, nil
	case TypeRecord:
		fields, err := DecodeFields(env.Record)
		if err != nil {
			return nil, errors.ErrDecode.
				WithMessage("unable to parse record for stream %s", env.Stream).
				WithCause(err)
		}
		return Record{
			Stream: env.Stream,
			Fields: fields,
			Raw:    env.Record,
		}, nil
	case TypeState:
		return State{Value: env.Value}, nil
	default:
		return Unknown{Type: env.Type, Raw: line}, nil
	}
}

// DecodeFields parses a record payload into ordered fields. The stock
// ordered-map unmarshaler leaves nested objects as plain maps, which
// loses their key order, so the payload is walked token by token:
// nested objects come back as *Fields, arrays as []interface{}, and
// numbers as json.Number so cells render exactly as sent.
func DecodeFields(data []byte) (*Fields, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("record payload must be an object, got %v", tok)
	}

	return decodeObject(dec)
}

func decodeObject(dec *json.Decoder) (*Fields, error) {
	fields := orderedmap.New[string, interface{}]()

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}

		value, err := decodeValue(dec)
		if err != nil {
			return nil, err
		}
		fields.Set(key, value)
	}

	// Closing brace.
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	return fields, nil
}

func decodeValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		// string, json.Number, bool, or nil.
		return tok, nil
	}

	switch delim {
	case '{':
		return decodeObject(dec)
	case '[':
		var values []interface{}
		for dec.More() {
			v, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
		return values, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}
