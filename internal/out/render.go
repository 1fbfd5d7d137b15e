// Package out renders result envelopes for data commands and errors.
package out

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ggonzalez94/near-cli/internal/config"
	"github.com/ggonzalez94/near-cli/internal/model"
)

// Render writes env in the configured output mode. JSON mode writes the
// envelope, or only its data with ResultsOnly. Plain mode writes one line per
// data item on success and "Error: <message>" on failure.
func Render(w io.Writer, env model.Envelope, settings config.Settings) error {
	data := generic(env.Data)
	if len(settings.SelectFields) > 0 {
		data = selectFields(data, settings.SelectFields)
	}

	if settings.OutputMode == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if settings.ResultsOnly && env.Success {
			return enc.Encode(data)
		}
		env.Data = data
		return enc.Encode(env)
	}

	if !env.Success {
		message := "unknown error"
		if env.Error != nil {
			message = env.Error.Message
		}
		_, err := fmt.Fprintf(w, "Error: %s\n", message)
		return err
	}
	for _, line := range plainLines(data) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// generic round-trips v through JSON so struct tags decide field names.
func generic(v any) any {
	if v == nil {
		return nil
	}
	buf, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(buf, &out); err != nil {
		return v
	}
	return out
}

func selectFields(data any, fields []string) any {
	pick := func(m map[string]any) map[string]any {
		out := make(map[string]any, len(fields))
		for _, f := range fields {
			if v, ok := m[f]; ok {
				out[f] = v
			}
		}
		return out
	}
	switch t := data.(type) {
	case map[string]any:
		return pick(t)
	case []any:
		items := make([]any, 0, len(t))
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				items = append(items, pick(m))
			}
		}
		return items
	}
	return data
}

func plainLines(data any) []string {
	switch t := data.(type) {
	case nil:
		return []string{"null"}
	case []any:
		if len(t) == 0 {
			return []string{"[]"}
		}
		lines := make([]string, 0, len(t))
		for _, item := range t {
			lines = append(lines, plainLine(item))
		}
		return lines
	}
	return []string{plainLine(data)}
}

// plainLine renders a map as sorted key=value pairs. Nested values stay JSON.
func plainLine(v any) string {
	m, ok := v.(map[string]any)
	if !ok {
		return scalar(v)
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(scalar(m[k]))
	}
	return b.String()
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return "null"
	case map[string]any, []any:
		buf, _ := json.Marshal(t)
		return string(buf)
	}
	return fmt.Sprint(v)
}
