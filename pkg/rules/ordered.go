// Package rules parses the JSON rule files that drive file emission while keeping the
// order keys appear in.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Kind of a rule tree node
type Kind int

const (
	KindString Kind = iota
	KindList
	KindObject
)

// Node is one value of a rule tree. Lists hold file names; objects hold nested rules.
type Node struct {
	Kind   Kind
	String string
	List   []string
	Object []Entry
}

// Entry is one key of an object node, in document order
type Entry struct {
	Key   string
	Value *Node
}

// ParseTree parses a rule tree. The top level must be an object.
func ParseTree(data []byte) (*Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	node, err := parseValue(dec)
	if err != nil {
		return nil, err
	}
	if node.Kind != KindObject {
		return nil, fmt.Errorf("top-level rule value must be an object")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after the top-level object")
	}
	return node, nil
}

func parseValue(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case string:
		return &Node{Kind: KindString, String: t}, nil
	case json.Delim:
		switch t {
		case '[':
			return parseList(dec)
		case '{':
			return parseObject(dec)
		}
	}
	return nil, fmt.Errorf("unexpected value %v at offset %d", tok, dec.InputOffset())
}

func parseList(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindList}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		s, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("list entries must be file names, got %v at offset %d", tok, dec.InputOffset())
		}
		node.List = append(node.List, s)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

func parseObject(dec *json.Decoder) (*Node, error) {
	node := &Node{Kind: KindObject}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key expected at offset %d", dec.InputOffset())
		}
		value, err := parseValue(dec)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
		node.Object = append(node.Object, Entry{Key: key, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return node, nil
}

// OrderedObject splits a top-level JSON object into its keys, in document order, and their
// raw values
func OrderedObject(data []byte) ([]string, map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, fmt.Errorf("top-level value must be an object")
	}

	var keys []string
	values := make(map[string]json.RawMessage)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", key, err)
		}
		if _, dup := values[key]; !dup {
			keys = append(keys, key)
		}
		values[key] = raw
	}
	return keys, values, nil
}
