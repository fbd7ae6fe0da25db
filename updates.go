package givehub

import (
	"context"
	"net/http"
)

// Updates are progress posts attached to a campaign.
type Updates struct {
	client *Client
}

func (u *Updates) Create(ctx context.Context, update any) (Response, error) {
	return u.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/updates",
		Body:     update,
	})
}

func (u *Updates) List(ctx context.Context, filters Params) (Response, error) {
	return u.client.Request(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: "/updates",
		Query:    filters,
	})
}

func (u *Updates) UploadMedia(ctx context.Context, updateID, path string) (Response, error) {
	return u.client.Request(ctx, Request{
		Method:     http.MethodPost,
		Endpoint:   "/updates/{id}/media",
		PathParams: map[string]string{"id": updateID},
		File:       &File{Field: "media", Path: path},
	})
}
