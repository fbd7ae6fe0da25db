package givehub

import (
	"context"
	"net/http"
)

type Campaigns struct {
	client *Client
}

func (c *Campaigns) Create(ctx context.Context, campaign any) (Response, error) {
	return c.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/campaigns",
		Body:     campaign,
	})
}

func (c *Campaigns) Get(ctx context.Context, campaignID string) (Response, error) {
	return c.client.Request(ctx, Request{
		Method:     http.MethodGet,
		Endpoint:   "/campaigns/{id}",
		PathParams: map[string]string{"id": campaignID},
	})
}

// List returns campaigns matching filters such as category, status, page and
// limit. Filters are sent unchanged.
func (c *Campaigns) List(ctx context.Context, filters Params) (Response, error) {
	return c.client.Request(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: "/campaigns",
		Query:    filters,
	})
}

func (c *Campaigns) Update(ctx context.Context, campaignID string, changes any) (Response, error) {
	return c.client.Request(ctx, Request{
		Method:     http.MethodPut,
		Endpoint:   "/campaigns/{id}",
		PathParams: map[string]string{"id": campaignID},
		Body:       changes,
	})
}

// UploadMedia uploads the file at path as the campaign's "media" field.
func (c *Campaigns) UploadMedia(ctx context.Context, campaignID, path string) (Response, error) {
	return c.client.Request(ctx, Request{
		Method:     http.MethodPost,
		Endpoint:   "/campaigns/{id}/media",
		PathParams: map[string]string{"id": campaignID},
		File:       &File{Field: "media", Path: path},
	})
}
