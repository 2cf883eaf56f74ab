package handlers

import (
	"bytes"
	"encoding/json"
	"reflect"

	"github.com/budgettabs/budgettabs/internal/apperr"
	"github.com/shopspring/decimal"
)

var jsonNull = []byte("null")

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// jsonKind names the JSON type expected for a Go kind.
func jsonKind(k reflect.Kind) string {
	switch k {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "whole number"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Slice, reflect.Array:
		return "list"
	default:
		return "value of the expected type"
	}
}

// decodeAmount reads a JSON number token into a decimal. Absent fields yield nil;
// strings, null and other tokens are rejected naming field.
func decodeAmount(field string, raw json.RawMessage) (*decimal.Decimal, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if c := trimmed[0]; c != '-' && (c < '0' || c > '9') {
		return nil, apperr.Validation(field, field+" must be a number")
	}
	amount, errParse := decimal.NewFromString(string(trimmed))
	if errParse != nil {
		return nil, apperr.Validation(field, field+" must be a number")
	}
	return &amount, nil
}

// decodeClearableText reads an optional text field where an explicit null clears
// the value. Cleared fields come back as a pointer to "", which the services store
// as NULL.
func decodeClearableText(field string, raw json.RawMessage) (*string, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	if isNull(raw) {
		empty := ""
		return &empty, nil
	}
	var text string
	if errDecode := json.Unmarshal(raw, &text); errDecode != nil {
		return nil, apperr.Validation(field, field+" must be a string or null")
	}
	return &text, nil
}
