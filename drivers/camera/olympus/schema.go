package olympus

import (
	"strings"
)

// Method is the HTTP method a command must be sent with.
type Method string

const (
	MethodGet  Method = "get"
	MethodPost Method = "post"
)

func parseMethod(s string) Method {
	return Method(strings.ToLower(strings.TrimSpace(s)))
}

// Token is a key of a Node: a literal parameter name or value, or the wildcard.
type Token struct {
	Name     string
	Wildcard bool
}

// Wildcard matches any literal that has no entry of its own.
var Wildcard = Token{Wildcard: true}

func Literal(name string) Token {
	return Token{Name: name}
}

func (t Token) String() string {
	if t.Wildcard {
		return "*"
	}
	return t.Name
}

// Node is one level of a command's argument grammar. Levels alternate between
// parameter names and parameter values. A nil *Node accepts nothing further.
type Node struct {
	order []Token
	next  map[Token]*Node
}

// NewNode returns an empty node. Until an entry is added it behaves as the
// wildcard-accepts-anything node.
func NewNode() *Node {
	return &Node{next: map[Token]*Node{}}
}

// set adds or replaces the entry for tok.
func (n *Node) set(tok Token, next *Node) *Node {
	if _, ok := n.next[tok]; !ok {
		n.order = append(n.order, tok)
	}
	n.next[tok] = next
	return n
}

// Tokens returns the accepted tokens in declaration order.
func (n *Node) Tokens() []Token {
	if n == nil {
		return nil
	}
	if len(n.order) == 0 {
		return []Token{Wildcard}
	}
	return append([]Token(nil), n.order...)
}

// Next returns the child stored under tok.
func (n *Node) Next(tok Token) (*Node, bool) {
	if n == nil {
		return nil, false
	}
	if len(n.order) == 0 {
		return nil, tok.Wildcard
	}
	next, ok := n.next[tok]
	return next, ok
}

// Match descends on a literal token. An exact entry wins over the wildcard.
func (n *Node) Match(literal string) (*Node, bool) {
	if next, ok := n.Next(Literal(literal)); ok {
		return next, true
	}
	return n.Next(Wildcard)
}

func (n *Node) names() []string {
	toks := n.Tokens()
	names := make([]string, len(toks))
	for i, t := range toks {
		names[i] = t.String()
	}
	return names
}

// CommandDescriptor describes one command the camera advertised.
type CommandDescriptor struct {
	Method Method
	Args   *Node // nil when the command takes no arguments
}

// Schema maps command names to their descriptors, in discovery order.
type Schema struct {
	order    []string
	commands map[string]CommandDescriptor
}

// NewSchema returns a schema seeded with the discovery command.
func NewSchema() *Schema {
	s := &Schema{commands: map[string]CommandDescriptor{}}
	s.add(CommandList, CommandDescriptor{Method: MethodGet})
	return s
}

func (s *Schema) add(name string, descr CommandDescriptor) {
	if _, ok := s.commands[name]; !ok {
		s.order = append(s.order, name)
	}
	s.commands[name] = descr
}

func (s *Schema) Lookup(name string) (CommandDescriptor, bool) {
	d, ok := s.commands[name]
	return d, ok
}

// Commands returns every known command name in discovery order.
func (s *Schema) Commands() []string {
	return append([]string(nil), s.order...)
}

func (s *Schema) Len() int {
	return len(s.order)
}
