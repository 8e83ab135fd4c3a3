package prompt

import (
	"fmt"
	"sort"
	"strings"
)

// MissingValueError reports a placeholder the caller supplied no value for.
type MissingValueError struct {
	Name string
}

func (e *MissingValueError) Error() string {
	return fmt.Sprintf("prompt formatting failed: no value for placeholder {%s}", e.Name)
}

// Format substitutes {name} placeholders with values. "{{" and "}}" produce literal braces,
// which is how templates embed JSON schemas. Values not referenced by the template are ignored.
func Format(template string, values map[string]string) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); i++ {
		ch := template[i]
		switch ch {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("prompt formatting failed: unterminated placeholder at offset %d", i)
			}
			name := strings.TrimSpace(template[i+1 : i+1+end])
			if name == "" {
				return "", fmt.Errorf("prompt formatting failed: empty placeholder at offset %d", i)
			}
			v, ok := values[name]
			if !ok {
				return "", &MissingValueError{Name: name}
			}
			b.WriteString(v)
			i += end + 1
		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				i++
			}
			b.WriteByte('}')
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), nil
}

// Placeholders lists the distinct placeholder names in a template, sorted.
func Placeholders(template string) []string {
	seen := map[string]struct{}{}
	for i := 0; i < len(template); i++ {
		if template[i] != '{' {
			continue
		}
		if i+1 < len(template) && template[i+1] == '{' {
			i++
			continue
		}
		end := strings.IndexByte(template[i+1:], '}')
		if end < 0 {
			break
		}
		if name := strings.TrimSpace(template[i+1 : i+1+end]); name != "" {
			seen[name] = struct{}{}
		}
		i += end + 1
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Check reports the first formatting error the template would produce when every
// placeholder it names is supplied.
func Check(template string) error {
	values := map[string]string{}
	for _, name := range Placeholders(template) {
		values[name] = ""
	}
	_, err := Format(template, values)
	return err
}
