// Package givehub provides a client for the GiveHub fundraising API:
// authentication, campaigns, donations, impact metrics, campaign updates
// and real-time notifications.
//
// The HTTP side wraps [github.com/go-resty/resty/v2]; the notification
// channel is a [github.com/gorilla/websocket] connection.
//
// # Basic Usage
//
//	c, err := givehub.New(givehub.Config{
//	    BaseURL: "https://api.thegivehub.com",
//	    APIKey:  "my-api-key",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if _, err := c.Auth.Login(ctx, "user@example.com", "secret"); err != nil {
//	    log.Fatal(err)
//	}
//
//	campaigns, err := c.Campaigns.List(ctx, givehub.Params{"status": "active"})
//
// # Configuration
//
// Connection settings and initial credentials live in [Config]. Tuning is
// supplied as [Option] functions passed to [New]. Invalid option values are
// silently ignored and the default is retained; the resulting options are
// validated by [New].
//
// # Authentication
//
// Every request carries the X-API-Key header. Once [Auth.Login] succeeds, or
// when tokens are supplied in [Config], requests also carry a Bearer access
// token. A request rejected with 401 while a refresh token is held triggers
// one token refresh and is then re-issued exactly once. Concurrent requests
// that hit 401 together share a single refresh.
//
// # Retry Behaviour
//
// Apart from the refresh path nothing is retried by default. [WithRetryCount]
// enables resty's retries for responses matched by [DefaultRetryPolicy] (429,
// 5xx and transient connection errors) or a policy set with [WithRetryPolicy].
//
// # Notifications
//
// [Notifications.Connect] opens the push channel and authenticates it.
// Handlers are registered per event type with [Notifications.On] using a
// [Listener] handle; registering the same handle twice has no extra effect.
// A dropped connection is re-established following the [ReconnectPolicy]
// configured with [WithReconnectPolicy]. [Notifications.Disconnect] is the
// only way to stop the channel without it reconnecting.
//
// # Errors
//
// HTTP failures are returned as [*RequestError] carrying the status code,
// transport failures as [*ConnectionError], and missing credentials as
// [ErrAuthRequired]. Use [StatusCode] and [IsUnauthorized] to branch.
//
// # Logging
//
// Implement [RequestLogger] and supply it via [WithRequestLogger], or wrap a
// [log/slog] logger with [NewSlogLogger]. The default [NoopLogger] discards
// all log output.
package givehub
