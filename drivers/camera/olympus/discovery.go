package olympus

import (
	"sort"
	"strings"

	"github.com/beevik/etree"
	"github.com/pkg/errors"
)

// CommandList is the discovery command every camera answers.
const CommandList = "get_commandlist"

// Parameter names and values are declared by elements whose tag starts with
// this prefix (cmd1, cmd2, ...); values are declared by param1, param2, ...
const commandTagPrefix = "cmd"

// Discovery is the parsed reply to get_commandlist.
type Discovery struct {
	Schema    *Schema
	Versions  map[string]string
	Supported map[string]struct{}
}

// SupportedFeatures returns the advertised feature identifiers, sorted.
func (d *Discovery) SupportedFeatures() []string {
	features := make([]string, 0, len(d.Supported))
	for f := range d.Supported {
		features = append(features, f)
	}
	sort.Strings(features)
	return features
}

// ParseCommandList builds the command schema and device metadata from the
// body of a get_commandlist reply.
//
//	<oishare>
//	  <version>4.20</version>
//	  <support func="web"/>
//	  <cgi name="switch_cammode">
//	    <http_method type="get">
//	      <cmd1 name="mode">
//	        <param1 name="rec"/>
//	        <param1 name="play"/>
//	      </cmd1>
//	    </http_method>
//	  </cgi>
//	</oishare>
func ParseCommandList(body []byte) (*Discovery, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, errors.Wrap(err, "parse command list")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New("parse command list: empty document")
	}

	d := &Discovery{
		Schema:    NewSchema(),
		Versions:  map[string]string{},
		Supported: map[string]struct{}{},
	}
	for _, el := range root.ChildElements() {
		switch el.Tag {
		case "cgi":
			name, err := requiredAttr(el, "name")
			if err != nil {
				return nil, err
			}
			for _, method := range el.ChildElements() {
				if method.Tag != "http_method" {
					continue
				}
				typ, err := requiredAttr(method, "type")
				if err != nil {
					return nil, err
				}
				args, err := parseCommands(method)
				if err != nil {
					return nil, errors.Wrapf(err, "command %s", name)
				}
				d.Schema.add(name, CommandDescriptor{Method: parseMethod(typ), Args: args})
			}
		case "support":
			feature, err := requiredAttr(el, "func")
			if err != nil {
				return nil, err
			}
			d.Supported[feature] = struct{}{}
		case "version":
			d.Versions[el.Tag] = strings.TrimSpace(el.Text())
		}
	}
	return d, nil
}

// parseParams maps each declared value to the parameters that may follow it.
// A nested command declaration among the values means any value is accepted
// and the nested command is the only parameter allowed after it.
func parseParams(parent *etree.Element) (*Node, error) {
	node := NewNode()
	for _, param := range parent.ChildElements() {
		if strings.HasPrefix(param.Tag, commandTagPrefix) {
			name, err := requiredAttr(param, "name")
			if err != nil {
				return nil, err
			}
			sub, err := parseParams(param)
			if err != nil {
				return nil, err
			}
			return NewNode().set(Wildcard, NewNode().set(Literal(name), sub)), nil
		}
		tok := Wildcard
		if attr := param.SelectAttr("name"); attr != nil {
			tok = Literal(strings.TrimSpace(attr.Value))
		}
		next, err := parseCommands(param)
		if err != nil {
			return nil, err
		}
		node.set(tok, next)
	}
	if len(node.order) == 0 {
		node.set(Wildcard, nil)
	}
	return node, nil
}

// parseCommands maps each declared parameter name to its accepted values.
// It returns nil when nothing is declared.
func parseCommands(parent *etree.Element) (*Node, error) {
	children := parent.ChildElements()
	if len(children) == 0 {
		return nil, nil
	}
	node := NewNode()
	for _, cmd := range children {
		if !strings.HasPrefix(cmd.Tag, commandTagPrefix) {
			return nil, errors.Errorf("unexpected <%s> where a command declaration was expected", cmd.Tag)
		}
		name, err := requiredAttr(cmd, "name")
		if err != nil {
			return nil, err
		}
		params, err := parseParams(cmd)
		if err != nil {
			return nil, err
		}
		node.set(Literal(name), params)
	}
	return node, nil
}

func requiredAttr(el *etree.Element, key string) (string, error) {
	attr := el.SelectAttr(key)
	if attr == nil {
		return "", errors.Errorf("element <%s> has no %q attribute", el.Tag, key)
	}
	return strings.TrimSpace(attr.Value), nil
}
