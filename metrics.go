package givehub

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "givehub_client"

// metrics is nil when no registerer was supplied; every method is a no-op on
// a nil receiver.
type metrics struct {
	requests      *prometheus.CounterVec
	refreshes     *prometheus.CounterVec
	reconnects    prometheus.Counter
	notifications *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "requests_total",
			Help:      "API requests by method and response status (0 when no response was received).",
		}, []string{"method", "status"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "token_refreshes_total",
			Help:      "Access token refresh attempts by result.",
		}, []string{"result"}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_reconnects_total",
			Help:      "Notification channel reconnect attempts.",
		}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notifications_received_total",
			Help:      "Notifications received by event type.",
		}, []string{"type"}),
	}

	var err error

	if m.requests, err = register(reg, m.requests); err != nil {
		return nil, err
	}

	if m.refreshes, err = register(reg, m.refreshes); err != nil {
		return nil, err
	}

	if m.reconnects, err = register(reg, m.reconnects); err != nil {
		return nil, err
	}

	if m.notifications, err = register(reg, m.notifications); err != nil {
		return nil, err
	}

	return m, nil
}

// register reuses an identical collector already registered by another
// client sharing reg.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}

		return c, err
	}

	return c, nil
}

func (m *metrics) observeRequest(method string, status int) {
	if m == nil {
		return
	}

	m.requests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *metrics) observeRefresh(ok bool) {
	if m == nil {
		return
	}

	result := "success"
	if !ok {
		result = "failure"
	}

	m.refreshes.WithLabelValues(result).Inc()
}

func (m *metrics) observeReconnect() {
	if m == nil {
		return
	}

	m.reconnects.Inc()
}

func (m *metrics) observeNotification(eventType string) {
	if m == nil {
		return
	}

	m.notifications.WithLabelValues(eventType).Inc()
}
