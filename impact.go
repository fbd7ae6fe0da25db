package givehub

import (
	"context"
	"net/http"
)

type Impact struct {
	client *Client
}

// CreateMetrics records impact metrics for a campaign. The campaign id is
// sent as "campaignId" alongside the fields of metrics; a "campaignId" key in
// metrics takes precedence.
func (i *Impact) CreateMetrics(ctx context.Context, campaignID string, metrics map[string]any) (Response, error) {
	body := make(map[string]any, len(metrics)+1)
	body["campaignId"] = campaignID

	for k, v := range metrics {
		body[k] = v
	}

	return i.client.Request(ctx, Request{
		Method:   http.MethodPost,
		Endpoint: "/impact/metrics",
		Body:     body,
	})
}

func (i *Impact) UpdateMetrics(ctx context.Context, metricID string, changes any) (Response, error) {
	return i.client.Request(ctx, Request{
		Method:     http.MethodPut,
		Endpoint:   "/impact/metrics/{id}",
		PathParams: map[string]string{"id": metricID},
		Body:       changes,
	})
}

func (i *Impact) GetMetrics(ctx context.Context, campaignID string, filters Params) (Response, error) {
	return i.client.Request(ctx, Request{
		Method:     http.MethodGet,
		Endpoint:   "/impact/metrics/{id}",
		PathParams: map[string]string{"id": campaignID},
		Query:      filters,
	})
}
