package shaarli

import "context"

// GetInfo gets information about the instance.
func (c *Client) GetInfo(ctx context.Context) (*Response, error) {
	return c.Request(ctx, "get-info", nil, nil)
}

// GetLinks lists links ordered by creation date. Accepted params: offset,
// limit, searchtags, searchterm, visibility.
func (c *Client) GetLinks(ctx context.Context, params Params) (*Response, error) {
	return c.Request(ctx, "get-links", nil, params)
}

// PostLink creates a link.
func (c *Client) PostLink(ctx context.Context, params Params) (*Response, error) {
	return c.Request(ctx, "post-link", nil, params)
}

// PutLink updates the link with the given ID.
func (c *Client) PutLink(ctx context.Context, id int, params Params) (*Response, error) {
	return c.Request(ctx, "put-link", id, params)
}

// DeleteLink deletes the link with the given ID.
func (c *Client) DeleteLink(ctx context.Context, id int) (*Response, error) {
	return c.Request(ctx, "delete-link", id, nil)
}

// GetTags lists tags. Accepted params: offset, limit, visibility.
func (c *Client) GetTags(ctx context.Context, params Params) (*Response, error) {
	return c.Request(ctx, "get-tags", nil, params)
}

// GetTag gets a single tag.
func (c *Client) GetTag(ctx context.Context, name string) (*Response, error) {
	return c.Request(ctx, "get-tag", name, nil)
}

// PutTag renames a tag. The new name goes in params["name"].
func (c *Client) PutTag(ctx context.Context, name string, params Params) (*Response, error) {
	return c.Request(ctx, "put-tag", name, params)
}

// DeleteTag removes a tag from every link.
func (c *Client) DeleteTag(ctx context.Context, name string) (*Response, error) {
	return c.Request(ctx, "delete-tag", name, nil)
}

// GetHistory lists recent operations on the instance. Accepted params:
// offset, limit, since.
func (c *Client) GetHistory(ctx context.Context, params Params) (*Response, error) {
	return c.Request(ctx, "get-history", nil, params)
}
