// Package dto decodes request payloads into typed inputs and encodes stored
// records into response bodies. Every entity lists its fields explicitly in
// both directions.
package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"notebook-loans-backend/internal/apperr"
	"notebook-loans-backend/internal/parse"
)

// NonFieldErrors is the key used for errors not tied to a single field.
const NonFieldErrors = "non_field_errors"

const (
	msgRequired     = "Este campo é obrigatório."
	msgBlank        = "Este campo não pode estar em branco."
	msgNull         = "Este campo não pode ser nulo."
	msgUnknown      = "Campo desconhecido."
	msgString       = "Um texto válido é necessário."
	msgBool         = "Deve ser um valor booleano válido."
	msgDate         = "Formato inválido para data. Use um dos formatos a seguir: YYYY-MM-DD."
	msgNotList      = "Esperado uma lista de itens mas recebeu tipo \"%s\"."
	msgPkType       = "Tipo incorreto. Esperado valor pk, recebeu %s."
	msgNotObject    = "Dados inválidos. Esperado um dicionário, mas recebeu %s."
	msgMalformed    = "JSON malformado."
	msgMaxLength    = "Certifique-se de que este campo não tenha mais de %s caracteres."
	msgMinLength    = "Certifique-se de que este campo tenha no mínimo %s caracteres."
	msgEmptyList    = "Esta lista não pode estar vazia."
	msgChoice       = "\"%v\" não é um escolha válido."
	msgEmail        = "Insira um endereço de email válido."
	msgUsername     = "Informe um nome de usuário válido. Este valor pode conter apenas letras, números e os seguintes caracteres @/./+/-/_."
	msgInvalidValue = "Valor inválido."
)

// Mode tells how a payload relates to the record it writes.
type Mode int

const (
	// Create builds a new record; required fields must be present.
	Create Mode = iota
	// Replace is a full update (PUT); required fields must be present.
	Replace
	// Patch is a partial update; only present fields are validated for blankness.
	Patch
)

// Partial reports whether missing required fields are tolerated.
func (m Mode) Partial() bool { return m == Patch }

// setter decodes one raw value into its destination and returns a
// client-facing message on failure.
type setter func(raw json.RawMessage) string

type fieldSet map[string]setter

// schema describes how one entity payload is bound.
type schema struct {
	fields   fieldSet
	required []string
	readOnly []string
}

// fieldMask is the set of writable keys a payload carried.
type fieldMask map[string]bool

// decode binds body onto the destinations captured by s.fields, then runs
// struct validation on target. In Patch mode only the keys present in body
// are validated. It returns an *apperr.ValidationError on failure.
func decode(body []byte, target any, s schema, mode Mode) (fieldMask, error) {
	verr := apperr.NewValidationError()

	obj, err := decodeObject(body)
	if err != nil {
		return nil, err
	}

	present := make(fieldMask, len(obj))
	for key, raw := range obj {
		if set, ok := s.fields[key]; ok {
			present[key] = true
			if msg := set(raw); msg != "" {
				verr.Add(key, msg)
			}
			continue
		}
		if slices.Contains(s.readOnly, key) {
			continue
		}
		verr.Add(key, msgUnknown)
	}

	if !mode.Partial() {
		for _, name := range s.required {
			if !present[name] && !verr.Has(name) {
				verr.Add(name, msgRequired)
			}
		}
	}

	var only fieldMask
	if mode.Partial() {
		only = present
	}
	validateStruct(target, only, verr)
	return present, verr.OrNil()
}

func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return map[string]json.RawMessage{}, nil
	}
	if !json.Valid(body) {
		return nil, apperr.FieldError(NonFieldErrors, msgMalformed)
	}
	if kind := jsonKind(body); kind != "dict" {
		return nil, apperr.FieldError(NonFieldErrors, fmt.Sprintf(msgNotObject, kind))
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, apperr.FieldError(NonFieldErrors, msgMalformed)
	}
	return obj, nil
}

// jsonKind names the JSON type of raw for error messages.
func jsonKind(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return "null"
	}
	switch raw[0] {
	case '{':
		return "dict"
	case '[':
		return "list"
	case '"':
		return "str"
	case 't', 'f':
		return "bool"
	case 'n':
		return "null"
	}
	if bytes.ContainsAny(raw, ".eE") {
		return "float"
	}
	return "int"
}

func isNull(raw json.RawMessage) bool {
	return jsonKind(raw) == "null"
}

// text accepts strings and numbers; numbers keep their literal form.
func text(raw json.RawMessage) (string, string) {
	switch jsonKind(raw) {
	case "null":
		return "", msgNull
	case "str":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", msgString
		}
		return s, ""
	case "int", "float":
		return string(bytes.TrimSpace(raw)), ""
	}
	return "", msgString
}

func str(dst *string) setter {
	return func(raw json.RawMessage) string {
		s, msg := text(raw)
		if msg == "" {
			*dst = strings.TrimSpace(s)
		}
		return msg
	}
}

// rawStr keeps surrounding whitespace (passwords).
func rawStr(dst *string) setter {
	return func(raw json.RawMessage) string {
		s, msg := text(raw)
		if msg == "" {
			*dst = s
		}
		return msg
	}
}

func choice[T ~string](dst *T) setter {
	return func(raw json.RawMessage) string {
		s, msg := text(raw)
		if msg == "" {
			*dst = T(strings.TrimSpace(s))
		}
		return msg
	}
}

func date(dst *time.Time) setter {
	return func(raw json.RawMessage) string {
		if isNull(raw) {
			return msgNull
		}
		t, msg := dateValue(raw)
		if msg == "" {
			*dst = t
		}
		return msg
	}
}

func nullableDate(dst **time.Time) setter {
	return func(raw json.RawMessage) string {
		if isNull(raw) {
			*dst = nil
			return ""
		}
		t, msg := dateValue(raw)
		if msg == "" {
			*dst = &t
		}
		return msg
	}
}

func dateValue(raw json.RawMessage) (time.Time, string) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return time.Time{}, msgDate
	}
	t, err := parse.Date(s)
	if err != nil {
		return time.Time{}, msgDate
	}
	return t, ""
}

func boolean(dst *bool) setter {
	return func(raw json.RawMessage) string {
		switch jsonKind(raw) {
		case "null":
			return msgNull
		case "bool":
			return boolMsg(json.Unmarshal(raw, dst))
		case "str", "int":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				s = string(bytes.TrimSpace(raw))
			}
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "true", "1":
				*dst = true
				return ""
			case "false", "0":
				*dst = false
				return ""
			}
		}
		return msgBool
	}
}

func boolMsg(err error) string {
	if err != nil {
		return msgBool
	}
	return ""
}

// ids decodes a list of primary keys. Numeric strings are accepted and
// duplicates are collapsed keeping first-seen order.
func ids(dst *[]int64) setter {
	return func(raw json.RawMessage) string {
		kind := jsonKind(raw)
		if kind == "null" {
			return msgNull
		}
		if kind != "list" {
			return fmt.Sprintf(msgNotList, kind)
		}
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err != nil {
			return fmt.Sprintf(msgNotList, kind)
		}
		out := make([]int64, 0, len(items))
		for _, item := range items {
			id, ok := pk(item)
			if !ok {
				return fmt.Sprintf(msgPkType, jsonKind(item))
			}
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
		*dst = out
		return ""
	}
}

func pk(raw json.RawMessage) (int64, bool) {
	switch jsonKind(raw) {
	case "int":
		var n int64
		if err := json.Unmarshal(raw, &n); err != nil {
			return 0, false
		}
		return n, true
	case "str":
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return 0, false
		}
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	return 0, false
}
