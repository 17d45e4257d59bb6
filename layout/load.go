package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// ErrEmptyLayout is returned for a layout document without content.
var ErrEmptyLayout = errors.New("layout: empty document")

// DuplicateKeyError reports a duplicate key found in a mapping. YAML sources
// carry the positions of both occurrences; JSON sources carry none.
type DuplicateKeyError struct {
	Key       string
	FirstLine int
	FirstCol  int
	Line      int
	Col       int
}

func (e *DuplicateKeyError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("duplicate key %q", e.Key)
	}
	return fmt.Sprintf("duplicate YAML key %q at %d:%d (first at %d:%d)", e.Key, e.Line, e.Col, e.FirstLine, e.FirstCol)
}

// LoadYAML reads one layout document. Duplicate keys and unknown fields are
// rejected.
func LoadYAML(r io.Reader) (*Layout, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, ErrEmptyLayout
	}
	if err := checkYAMLDuplicates(&root); err != nil {
		return nil, err
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return &l, nil
}

func checkYAMLDuplicates(n *yaml.Node) error {
	switch n.Kind {
	case yaml.DocumentNode, yaml.SequenceNode:
		for _, c := range n.Content {
			if err := checkYAMLDuplicates(c); err != nil {
				return err
			}
		}
	case yaml.MappingNode:
		first := make(map[string][2]int, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k := n.Content[i]
			if pos, dup := first[k.Value]; dup {
				return &DuplicateKeyError{Key: k.Value, FirstLine: pos[0], FirstCol: pos[1], Line: k.Line, Col: k.Column}
			}
			first[k.Value] = [2]int{k.Line, k.Column}
			if err := checkYAMLDuplicates(n.Content[i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}

// LoadJSON decodes one layout document. Duplicate keys and unknown fields are
// rejected.
func LoadJSON(data []byte) (*Layout, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyLayout
	}
	if err := checkJSONDuplicates(data); err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var l Layout
	if err := dec.Decode(&l); err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	return &l, nil
}

type jsonFrame struct {
	object       bool
	keys         map[string]struct{}
	expectingKey bool
}

// checkJSONDuplicates walks the token stream and fails on the first key
// repeated within one object.
func checkJSONDuplicates(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	var stack []jsonFrame
	// valueDone marks the enclosing object as ready for its next key.
	valueDone := func() {
		if len(stack) > 0 {
			if top := &stack[len(stack)-1]; top.object {
				top.expectingKey = true
			}
		}
	}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("layout: %w", err)
		}
		switch v := tok.(type) {
		case json.Delim:
			switch v {
			case '{':
				stack = append(stack, jsonFrame{object: true, keys: map[string]struct{}{}, expectingKey: true})
			case '[':
				stack = append(stack, jsonFrame{})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				if top := &stack[len(stack)-1]; top.object && top.expectingKey {
					if _, dup := top.keys[v]; dup {
						return &DuplicateKeyError{Key: v}
					}
					top.keys[v] = struct{}{}
					top.expectingKey = false
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
}

// LoadFile loads a layout from a .yaml, .yml or .json file.
func LoadFile(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(bytes.NewReader(data))
	case ".json":
		return LoadJSON(data)
	}
	return nil, fmt.Errorf("layout: unsupported file type %q", filepath.Ext(path))
}
