// Package metrics exposes connection and sync outcomes as prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/blinky-companion/sync-agent/internal/models"
)

const namespace = "sync_agent"

var states = []models.ConnectionStateType{
	models.ConnectionStateConnecting,
	models.ConnectionStateInitializing,
	models.ConnectionStateReady,
	models.ConnectionStateDisconnecting,
	models.ConnectionStateDisconnected,
}

// Recorder owns its registry so several recorders can coexist in tests.
type Recorder struct {
	registry      *prometheus.Registry
	notifications *prometheus.CounterVec
	state         *prometheus.GaugeVec
	syncs         *prometheus.CounterVec
	credentials   *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connectivity_notifications_total",
			Help:      "Connectivity lost/restored notifications emitted by the coordinator.",
		}, []string{"type"}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connection_state",
			Help:      "1 for the current connection state, 0 for the others.",
		}, []string{"state"}),
		syncs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "syncs_total",
			Help:      "Sync payloads handed to the transport, by outcome.",
		}, []string{"status"}),
		credentials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "credential_writes_total",
			Help:      "Credential file writes made during sync, by outcome.",
		}, []string{"result"}),
	}

	r.registry.MustRegister(r.notifications, r.state, r.syncs, r.credentials)
	r.setState(models.ConnectionStateDisconnected)
	return r
}

// OnNotification is a connection coordinator listener.
func (r *Recorder) OnNotification(n models.Notification) {
	r.notifications.WithLabelValues(string(n.Type)).Inc()
	r.setState(n.State.State)
}

func (r *Recorder) ObserveSync(result models.SyncResult) {
	r.syncs.WithLabelValues(string(result.Status)).Inc()
	if result.CredentialPersisted {
		r.credentials.WithLabelValues("ok").Inc()
	} else {
		r.credentials.WithLabelValues("error").Inc()
	}
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) setState(current models.ConnectionStateType) {
	for _, s := range states {
		v := 0.0
		if s == current {
			v = 1
		}
		r.state.WithLabelValues(string(s)).Set(v)
	}
}
