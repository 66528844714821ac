// Package xmltree converts arbitrary camera XML replies into a uniform
// structure: one ordered tag -> text mapping, or a sequence of them.
//
// Sibling leaf elements that share a parent merge into one group. Groups that
// arise from different branches of the tree stay separate, in document order:
//
//	<a><b>1</b><c>2</c></a>                  -> {b: 1, c: 2}
//	<a><x><b>1</b></x><y><b>2</b></y></a>    -> [{b: 1}, {b: 2}]
package xmltree

import (
	"mime"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

// Normalize converts a parsed element tree. When no group is produced the
// top-level mapping is returned, which is empty unless root itself is a leaf.
func Normalize(root *etree.Element) *Value {
	top := NewGroup()
	if root == nil {
		return &Value{groups: []*Group{top}}
	}
	groups := collect(root, top)
	if len(groups) == 0 {
		return &Value{groups: []*Group{top}}
	}
	return &Value{groups: groups}
}

// collect adds el to parent when el is a leaf, otherwise returns the groups
// found below el followed by el's own group of leaf children.
func collect(el *etree.Element, parent *Group) []*Group {
	if text := strings.TrimSpace(el.Text()); text != "" {
		parent.Set(el.Tag, text)
		return nil
	}
	var results []*Group
	own := NewGroup()
	for _, child := range el.ChildElements() {
		results = append(results, collect(child, own)...)
	}
	if own.Len() > 0 {
		results = append(results, own)
	}
	return results
}

// Parse reads an XML document and normalizes its root element.
func Parse(body []byte) (*Value, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(err, "parse xml")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("parse xml: document has no root element")
	}
	return Normalize(root), nil
}

// IsXML reports whether a Content-Type header announces an XML payload.
func IsXML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && err != mime.ErrInvalidMediaParameter {
		return false
	}
	return mediaType == "text/xml" || mediaType == "application/xml"
}

// FromResponse normalizes body when contentType is XML and returns nil otherwise.
func FromResponse(contentType string, body []byte) (*Value, error) {
	if !IsXML(contentType) {
		return nil, nil
	}
	return Parse(body)
}
