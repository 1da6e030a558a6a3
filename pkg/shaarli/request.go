package shaarli

import (
	"github.com/shaarli/shaarli-client-go/internal/endpoint"
	"github.com/shaarli/shaarli-client-go/internal/errors"
)

// Call is a built request: method, path relative to the API root and the
// parameters sent as query string (GET) or JSON body (other methods).
type Call struct {
	Method string
	Path   string
	Params Params
}

// Build maps an endpoint name, an optional resource and a parameter bag to
// a Call. Only parameters declared by the endpoint are forwarded; undeclared
// keys are ignored here and rejected by Request. Build performs no I/O.
func Build(name string, resource interface{}, params Params) (*Call, error) {
	d, err := endpoint.Lookup(name)
	if err != nil {
		return nil, err
	}

	path := d.Path
	switch {
	case d.HasResource():
		if resource == nil {
			return nil, errors.NewValueError(name, "missing "+d.Resource.Name)
		}
		segment, err := endpoint.ResourceSegment(d, resource)
		if err != nil {
			return nil, err
		}
		path += "/" + segment
	case resource != nil:
		return nil, errors.NewValueError(name, "endpoint takes no resource")
	}

	out := Params{}
	for _, spec := range d.Params {
		value, ok := params[spec.Name]
		if !ok || value == nil {
			continue
		}
		v, err := endpoint.Normalize(name, spec, value)
		if err != nil {
			return nil, err
		}
		out[spec.Name] = v
	}

	return &Call{
		Method: d.Method,
		Path:   path,
		Params: out,
	}, nil
}

// ParseResourcePath returns the resource addressed by a path built for the
// named endpoint.
func ParseResourcePath(name, path string) (interface{}, error) {
	d, err := endpoint.Lookup(name)
	if err != nil {
		return nil, err
	}
	return endpoint.ResourceFromPath(d, path)
}

// Endpoints lists the names of every supported endpoint.
func Endpoints() []string {
	return endpoint.Names()
}
