package marker

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

func assignPattern(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+|const[ \t]+|var[ \t]+)?` +
		regexp.QuoteMeta(key) +
		`(?:[ \t]*:[ \t]*[A-Za-z_][A-Za-z0-9_.]*[ \t]*=|(?:[ \t]+[A-Za-z_][A-Za-z0-9_]*)?[ \t]*(?::=|=|:))[ \t]*` +
		`(?:"([^"\n]*)"|'([^'\n]*)'|([0-9A-Za-z.+-]+))`)
}

func locateAssign(data []byte, key string) (location, error) {
	if key == "" {
		return location{}, errors.New("marker key must be set")
	}
	matches := assignPattern(key).FindAllSubmatchIndex(data, -1)
	var hits []location
	for _, m := range matches {
		for group := 1; group <= 3; group++ {
			if start := m[2*group]; start >= 0 {
				hits = append(hits, location{start: start, end: m[2*group+1]})
				break
			}
		}
	}
	return single(hits, key)
}

func single(hits []location, key string) (location, error) {
	switch len(hits) {
	case 0:
		return location{}, fmt.Errorf("%w for %q", ErrMarkerNotFound, key)
	case 1:
		return hits[0], nil
	default:
		return location{}, fmt.Errorf("%w: %q appears %d times", ErrMarkerAmbiguous, key, len(hits))
	}
}

func splitKey(key string) ([]string, error) {
	path := strings.Split(key, ".")
	for _, seg := range path {
		if seg == "" {
			return nil, fmt.Errorf("invalid marker key %q", key)
		}
	}
	return path, nil
}

func locateYAML(data []byte, key string) (location, error) {
	path, err := splitKey(key)
	if err != nil {
		return location{}, err
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return location{}, fmt.Errorf("parse yaml: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return location{}, fmt.Errorf("%w for %q", ErrMarkerNotFound, key)
	}

	node := doc.Content[0]
	for _, seg := range path {
		next, err := yamlChild(node, seg, key)
		if err != nil {
			return location{}, err
		}
		node = next
	}
	if node.Kind != yaml.ScalarNode {
		return location{}, fmt.Errorf("%q is not a scalar", key)
	}

	start, err := lineColumnOffset(data, node.Line, node.Column)
	if err != nil {
		return location{}, err
	}
	switch node.Style {
	case yaml.DoubleQuotedStyle, yaml.SingleQuotedStyle:
		start++
	case 0:
	default:
		return location{}, fmt.Errorf("%q uses an unsupported yaml scalar style", key)
	}
	end := start + len(node.Value)
	if end > len(data) || string(data[start:end]) != node.Value {
		return location{}, fmt.Errorf("%q value could not be located in the source", key)
	}
	return location{start: start, end: end}, nil
}

func yamlChild(node *yaml.Node, seg, key string) (*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w for %q", ErrMarkerNotFound, key)
	}
	var found *yaml.Node
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != seg {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: %q", ErrMarkerAmbiguous, key)
		}
		found = node.Content[i+1]
	}
	if found == nil {
		return nil, fmt.Errorf("%w for %q", ErrMarkerNotFound, key)
	}
	return found, nil
}

// lineColumnOffset converts a 1-based yaml line/column (counted in
// characters) into a byte offset.
func lineColumnOffset(data []byte, line, column int) (int, error) {
	offset := 0
	for l := 1; l < line; l++ {
		i := bytes.IndexByte(data[offset:], '\n')
		if i < 0 {
			return 0, fmt.Errorf("line %d out of range", line)
		}
		offset += i + 1
	}
	for c := 1; c < column; c++ {
		if offset >= len(data) || data[offset] == '\n' {
			return 0, fmt.Errorf("column %d out of range on line %d", column, line)
		}
		_, size := utf8.DecodeRune(data[offset:])
		offset += size
	}
	return offset, nil
}

func locateJSON(data []byte, key string) (location, error) {
	path, err := splitKey(key)
	if err != nil {
		return location{}, err
	}
	// jsonc blanks out comments and trailing commas without shifting offsets.
	clean := jsonc.ToJSON(data)
	if len(clean) != len(data) {
		return location{}, errors.New("json marker: comment stripping changed offsets")
	}

	w := &jsonWalker{dec: json.NewDecoder(bytes.NewReader(clean)), data: clean, path: path}
	if err := w.value(nil); err != nil {
		return location{}, fmt.Errorf("parse json: %w", err)
	}
	if _, err := w.dec.Token(); err != io.EOF {
		return location{}, errors.New("parse json: trailing data after document")
	}
	if w.err != nil {
		return location{}, w.err
	}
	return single(w.hits, key)
}

type jsonWalker struct {
	dec  *json.Decoder
	data []byte
	path []string
	hits []location
	err  error
}

func (w *jsonWalker) value(prefix []string) error {
	tok, err := w.dec.Token()
	if err != nil {
		return err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			for w.dec.More() {
				keyTok, err := w.dec.Token()
				if err != nil {
					return err
				}
				name, _ := keyTok.(string)
				if err := w.value(appendPath(prefix, name)); err != nil {
					return err
				}
			}
		case '[':
			for w.dec.More() {
				if err := w.value(appendPath(prefix, "")); err != nil {
					return err
				}
			}
		}
		_, err := w.dec.Token()
		return err
	case string:
		if w.matches(prefix) {
			w.recordString(t)
		}
	default:
		if w.matches(prefix) && w.err == nil {
			w.err = fmt.Errorf("%q is not a string", strings.Join(w.path, "."))
		}
	}
	return nil
}

// recordString notes the span of the string token the decoder just read.
func (w *jsonWalker) recordString(s string) {
	end := int(w.dec.InputOffset()) - 1
	start := end - len(s)
	if start < 1 || w.data[start-1] != '"' || w.data[end] != '"' || string(w.data[start:end]) != s {
		if w.err == nil {
			w.err = fmt.Errorf("%q value uses escapes that cannot be rewritten", strings.Join(w.path, "."))
		}
		return
	}
	w.hits = append(w.hits, location{start: start, end: end})
}

func (w *jsonWalker) matches(prefix []string) bool {
	if len(prefix) != len(w.path) {
		return false
	}
	for i := range prefix {
		if prefix[i] != w.path[i] {
			return false
		}
	}
	return true
}

func appendPath(prefix []string, seg string) []string {
	out := make([]string, len(prefix)+1)
	copy(out, prefix)
	out[len(prefix)] = seg
	return out
}
