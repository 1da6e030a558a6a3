package endpoint

import (
	"net/http"

	"github.com/shaarli/shaarli-client-go/internal/errors"
)

var (
	visibilityChoices = []string{"all", "private", "public"}

	linkIDResource = &ResourceSpec{
		Name: "id",
		Help: "Link ID",
		Kind: ResourceID,
	}

	tagNameResource = &ResourceSpec{
		Name: "name",
		Help: "Tag name",
		Kind: ResourceString,
	}

	paginationParams = []ParamSpec{
		{Name: "offset", Help: "Offset from which to start listing items", Kind: KindInteger},
		{Name: "limit", Help: "Number of items to retrieve or 'all'", Kind: KindString},
	}

	linkParams = []ParamSpec{
		{Name: "description", Help: "Link description", Kind: KindJoin},
		{Name: "private", Help: "Link visibility", Kind: KindFlag},
		{Name: "tags", Help: "List of tags associated with the link", Kind: KindList},
		{Name: "title", Help: "Link title", Kind: KindJoin},
		{Name: "url", Help: "Link URL", Kind: KindString},
	}
)

// descriptors is the single source of truth for every supported operation.
var descriptors = []Descriptor{
	{
		Name:   "get-info",
		Method: http.MethodGet,
		Path:   "info",
		Help:   "Get information about this instance",
	},
	{
		Name:   "get-links",
		Method: http.MethodGet,
		Path:   "links",
		Help:   "Get a collection of links ordered by creation date",
		Params: concat(paginationParams, []ParamSpec{
			{Name: "searchtags", Help: "List of tags", Kind: KindJoin},
			{Name: "searchterm", Help: "Search terms across all links fields", Kind: KindJoin},
			{Name: "visibility", Help: "Filter links by visibility", Kind: KindChoice, Choices: visibilityChoices},
		}),
	},
	{
		Name:   "post-link",
		Method: http.MethodPost,
		Path:   "links",
		Help:   "Create a new link or note",
		Params: linkParams,
	},
	{
		Name:     "put-link",
		Method:   http.MethodPut,
		Path:     "links",
		Help:     "Update an existing link or note",
		Resource: linkIDResource,
		Params:   linkParams,
	},
	{
		Name:     "delete-link",
		Method:   http.MethodDelete,
		Path:     "links",
		Help:     "Delete a link",
		Resource: linkIDResource,
	},
	{
		Name:   "get-tags",
		Method: http.MethodGet,
		Path:   "tags",
		Help:   "Get all tags",
		Params: concat(paginationParams, []ParamSpec{
			{Name: "visibility", Help: "Filter tags by visibility", Kind: KindChoice, Choices: visibilityChoices},
		}),
	},
	{
		Name:     "get-tag",
		Method:   http.MethodGet,
		Path:     "tags",
		Help:     "Get a single tag",
		Resource: tagNameResource,
	},
	{
		Name:     "put-tag",
		Method:   http.MethodPut,
		Path:     "tags",
		Help:     "Rename an existing tag",
		Resource: tagNameResource,
		Params: []ParamSpec{
			{Name: "name", Help: "New tag name", Kind: KindString},
		},
	},
	{
		Name:     "delete-tag",
		Method:   http.MethodDelete,
		Path:     "tags",
		Help:     "Delete a tag from every link where it is being used",
		Resource: tagNameResource,
	},
	{
		Name:   "get-history",
		Method: http.MethodGet,
		Path:   "history",
		Help:   "Get the latest actions done on this instance",
		Params: concat(paginationParams, []ParamSpec{
			{Name: "since", Help: "Only list events since this ISO 8601 datetime", Kind: KindString},
		}),
	},
}

func concat(specs ...[]ParamSpec) []ParamSpec {
	var out []ParamSpec
	for _, s := range specs {
		out = append(out, s...)
	}
	return out
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, error) {
	for _, d := range descriptors {
		if d.Name == name {
			return d.clone(), nil
		}
	}
	return Descriptor{}, errors.NewValueError(name, "unknown endpoint")
}

// All returns every descriptor in declaration order.
func All() []Descriptor {
	out := make([]Descriptor, len(descriptors))
	for i, d := range descriptors {
		out[i] = d.clone()
	}
	return out
}

// Names returns the name of every endpoint in declaration order.
func Names() []string {
	names := make([]string, len(descriptors))
	for i, d := range descriptors {
		names[i] = d.Name
	}
	return names
}

func (d Descriptor) clone() Descriptor {
	c := d
	if d.Resource != nil {
		r := *d.Resource
		c.Resource = &r
	}
	if d.Params != nil {
		c.Params = make([]ParamSpec, len(d.Params))
		for i, p := range d.Params {
			p.Choices = append([]string(nil), p.Choices...)
			c.Params[i] = p
		}
	}
	return c
}
