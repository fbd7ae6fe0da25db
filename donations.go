package givehub

import (
	"context"
	"net/http"
)

type Donations struct {
	client *Client
}

func (d *Donations) Create(ctx context.Context, donation any) (Response, error) {
	return d.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/donations",
		Body:     donation,
	})
}

func (d *Donations) List(ctx context.Context, filters Params) (Response, error) {
	return d.client.Request(ctx, Request{
		Method:   http.MethodGet,
		Endpoint: "/donations",
		Query:    filters,
	})
}

func (d *Donations) CreateRecurring(ctx context.Context, donation any) (Response, error) {
	return d.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/donations/recurring",
		Body:     donation,
	})
}

func (d *Donations) CancelRecurring(ctx context.Context, subscriptionID string) (Response, error) {
	return d.client.Request(ctx, Request{
		Method:     http.MethodDelete,
		Endpoint:   "/donations/recurring/{id}",
		PathParams: map[string]string{"id": subscriptionID},
	})
}
