package xmltree

import (
	"bytes"
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"
)

// Group is an ordered tag -> text mapping collected from sibling leaf elements.
// Keys keep the position of their first occurrence, values are last-write-wins.
type Group struct {
	keys   []string
	values map[string]string
}

func NewGroup() *Group {
	return &Group{values: map[string]string{}}
}

func (g *Group) Set(key, value string) {
	if _, ok := g.values[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.values[key] = value
}

func (g *Group) Get(key string) (string, bool) {
	if g == nil {
		return "", false
	}
	v, ok := g.values[key]
	return v, ok
}

func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.keys)
}

// Keys returns the tags in document order.
func (g *Group) Keys() []string {
	if g == nil {
		return nil
	}
	return append([]string(nil), g.keys...)
}

// Map returns an unordered copy of the group.
func (g *Group) Map() map[string]string {
	m := make(map[string]string, g.Len())
	if g == nil {
		return m
	}
	for k, v := range g.values {
		m[k] = v
	}
	return m
}

// Clone returns an independent copy of the group.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	c := &Group{keys: append([]string(nil), g.keys...), values: make(map[string]string, len(g.values))}
	for k, v := range g.values {
		c.values[k] = v
	}
	return c
}

// String joins the entries as "key=value" pairs separated by ", ".
func (g *Group) String() string {
	if g == nil {
		return ""
	}
	parts := make([]string, 0, len(g.keys))
	for _, k := range g.keys {
		parts = append(parts, k+"="+g.values[k])
	}
	return strings.Join(parts, ", ")
}

func (g *Group) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range g.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(g.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (g *Group) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range g.Keys() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: g.values[k]},
		)
	}
	return node, nil
}

// Value is a normalized XML response. It holds either a single group, which
// callers see as a bare mapping, or several groups in document order.
// A nil *Value stands for a response that was not XML.
type Value struct {
	groups []*Group
}

// IsList reports whether the value is a sequence of groups rather than a single mapping.
func (v *Value) IsList() bool {
	return v != nil && len(v.groups) > 1
}

// Group returns the single mapping. ok is false for nil values and sequences.
func (v *Value) Group() (g *Group, ok bool) {
	if v == nil || len(v.groups) > 1 {
		return nil, false
	}
	if len(v.groups) == 0 {
		return NewGroup(), true
	}
	return v.groups[0], true
}

// Groups returns every group, a single mapping yields a one-element slice.
func (v *Value) Groups() []*Group {
	if v == nil {
		return nil
	}
	return append([]*Group(nil), v.groups...)
}

// Clone returns a deep copy of the value. A nil value stays nil.
func (v *Value) Clone() *Value {
	if v == nil {
		return nil
	}
	c := &Value{groups: make([]*Group, len(v.groups))}
	for i, g := range v.groups {
		c.groups[i] = g.Clone()
	}
	return c
}

// Find returns the single mapping, or the first group of a sequence that
// holds key.
func (v *Value) Find(key string) (*Group, bool) {
	if g, ok := v.Group(); ok {
		return g, true
	}
	for _, g := range v.Groups() {
		if _, ok := g.Get(key); ok {
			return g, true
		}
	}
	return nil, false
}

// Get looks up key in a single-mapping value.
func (v *Value) Get(key string) (string, bool) {
	g, ok := v.Group()
	if !ok {
		return "", false
	}
	return g.Get(key)
}

func (v *Value) shape() interface{} {
	if v == nil {
		return nil
	}
	if g, ok := v.Group(); ok {
		return g
	}
	return v.groups
}

func (v *Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.shape())
}

func (v *Value) MarshalYAML() (interface{}, error) {
	return v.shape(), nil
}
