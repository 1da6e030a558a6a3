// Package endpoint describes every Shaarli REST API operation the client
// supports. The table drives both the generated command line and request
// construction.
package endpoint

import "net/http"

// Params maps parameter names to values for one request.
type Params map[string]interface{}

// Kind selects how a parameter is parsed from the command line and
// normalized before it is sent.
type Kind int

const (
	// KindString is a plain string value.
	KindString Kind = iota
	// KindInteger is converted to int.
	KindInteger
	// KindChoice is a string restricted to ParamSpec.Choices.
	KindChoice
	// KindJoin accepts several tokens and sends them joined by spaces.
	KindJoin
	// KindList accepts several tokens and sends them as a list.
	KindList
	// KindFlag is a boolean switch.
	KindFlag
)

// String returns the name of the kind.
func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindChoice:
		return "choice"
	case KindJoin:
		return "join"
	case KindList:
		return "list"
	case KindFlag:
		return "flag"
	default:
		return "unknown"
	}
}

// ParamSpec describes one parameter accepted by an endpoint.
type ParamSpec struct {
	Name    string
	Help    string
	Kind    Kind
	Choices []string
}

// ResourceKind tells how a path resource is converted.
type ResourceKind int

const (
	// ResourceString is used verbatim, e.g. a tag name.
	ResourceString ResourceKind = iota
	// ResourceID must be a non-negative integer, e.g. a link ID.
	ResourceID
)

// ResourceSpec describes the path-embedded identifier of an endpoint.
type ResourceSpec struct {
	Name string
	Help string
	Kind ResourceKind
}

// Descriptor is the static metadata record for one endpoint.
type Descriptor struct {
	Name     string
	Method   string
	Path     string
	Help     string
	Resource *ResourceSpec
	Params   []ParamSpec
}

// Param returns the spec of the named parameter.
func (d Descriptor) Param(name string) (ParamSpec, bool) {
	for _, p := range d.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamSpec{}, false
}

// HasResource reports whether the endpoint addresses a single resource.
func (d Descriptor) HasResource() bool {
	return d.Resource != nil
}

// UsesQuery reports whether parameters travel in the query string rather
// than in a JSON body.
func (d Descriptor) UsesQuery() bool {
	return d.Method == http.MethodGet
}
