package endpoint

import (
	"sort"

	"github.com/shaarli/shaarli-client-go/internal/errors"
)

// Validate checks that every key of params is declared by the named
// endpoint. Empty or nil params always pass. Unknown keys are reported in
// sorted order since maps carry no insertion order.
func Validate(name string, params Params) error {
	d, err := Lookup(name)
	if err != nil {
		return err
	}

	if len(params) == 0 {
		return nil
	}

	var invalid []string
	for key := range params {
		if _, ok := d.Param(key); !ok {
			invalid = append(invalid, key)
		}
	}

	if len(invalid) > 0 {
		sort.Strings(invalid)
		return errors.NewValidationError(name, invalid)
	}
	return nil
}
