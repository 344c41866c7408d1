package sdk

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Param is a single request parameter.
type Param struct {
	Name  string
	Value string
}

// Params is an ordered list of request parameters. Order is preserved on
// the wire for both query strings and form bodies.
//
// Example:
//
//	params := sdk.Params{}.
//	    Add("name", "Acme").
//	    Add("state", "CA").
//	    Optional("zip", zip) // dropped when zip == ""
type Params []Param

// Add appends a required parameter. It is always sent, even when empty.
func (p Params) Add(name, value string) Params {
	return append(p, Param{Name: name, Value: value})
}

// Optional appends the parameter only when value is non-empty.
func (p Params) Optional(name, value string) Params {
	if value == "" {
		return p
	}
	return p.Add(name, value)
}

// Get returns the first value stored under name.
func (p Params) Get(name string) (string, bool) {
	for _, param := range p {
		if param.Name == name {
			return param.Value, true
		}
	}
	return "", false
}

// Has reports whether name is present.
func (p Params) Has(name string) bool {
	_, ok := p.Get(name)
	return ok
}

// Names returns the parameter names in order.
func (p Params) Names() []string {
	names := make([]string, len(p))
	for i, param := range p {
		names[i] = param.Name
	}
	return names
}

// Without returns a copy of p with every entry named name removed.
func (p Params) Without(name string) Params {
	out := make(Params, 0, len(p))
	for _, param := range p {
		if param.Name != name {
			out = append(out, param)
		}
	}
	return out
}

// Encode encodes the parameters in "URL encoded" form in insertion order.
func (p Params) Encode() string {
	if len(p) == 0 {
		return ""
	}
	var buf strings.Builder
	for i, param := range p {
		if i > 0 {
			buf.WriteByte('&')
		}
		buf.WriteString(url.QueryEscape(param.Name))
		buf.WriteByte('=')
		buf.WriteString(url.QueryEscape(param.Value))
	}
	return buf.String()
}

// Values converts the parameters to url.Values.
func (p Params) Values() url.Values {
	v := make(url.Values, len(p))
	for _, param := range p {
		v.Add(param.Name, param.Value)
	}
	return v
}

// MarshalJSON encodes the parameters as a flat JSON object. A later
// entry with the same name wins.
func (p Params) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(p))
	for _, param := range p {
		m[param.Name] = param.Value
	}
	return json.Marshal(m)
}
