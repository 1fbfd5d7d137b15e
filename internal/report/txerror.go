package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// FormatTxError renders a node TxExecutionError. The node encodes it as
// nested externally tagged enums, for example
// {"ActionError":{"index":0,"kind":{"AddKeyAlreadyExists":{...}}}}.
func FormatTxError(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "Error: transaction failed without details"
	}
	var top map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &top); err != nil || len(top) != 1 {
		return "Error: " + string(trimmed)
	}
	for tag, body := range top {
		switch tag {
		case "ActionError":
			var actionErr struct {
				Index *int            `json:"index"`
				Kind  json.RawMessage `json:"kind"`
			}
			if err := json.Unmarshal(body, &actionErr); err != nil {
				break
			}
			where := "an action"
			if actionErr.Index != nil {
				where = fmt.Sprintf("action #%d", *actionErr.Index)
			}
			return fmt.Sprintf("Error: An error occurred while executing %s: %s", where, describe(actionErr.Kind))
		case "InvalidTxError":
			return "Error: Transaction is invalid: " + describe(body)
		}
		return fmt.Sprintf("Error: %s: %s", tag, describe(body))
	}
	return "Error: " + string(trimmed)
}

// describe flattens the tag path of an enum value and appends its fields.
func describe(raw json.RawMessage) string {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		return name
	}
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil || len(tagged) == 0 {
		return string(bytes.TrimSpace(raw))
	}
	if len(tagged) == 1 {
		for tag, body := range tagged {
			if !isEnumTag(tag) {
				break
			}
			inner := describeFields(body)
			if inner == "" {
				return tag
			}
			return tag + " " + inner
		}
	}
	return describeFields(raw)
}

func describeFields(raw json.RawMessage) string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		var name string
		if json.Unmarshal(raw, &name) == nil {
			return name
		}
		return ""
	}
	if len(fields) == 1 {
		for k, v := range fields {
			if isEnumTag(k) {
				return describe(raw)
			}
			return "{" + k + ": " + scalar(v) + "}"
		}
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+scalar(fields[k]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// isEnumTag reports whether a key looks like a variant tag (UpperCamel)
// rather than a snake_case field.
func isEnumTag(k string) bool {
	return k != "" && k[0] >= 'A' && k[0] <= 'Z'
}

func scalar(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(bytes.TrimSpace(raw))
}
