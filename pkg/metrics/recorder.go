package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder publica los resultados del motor de inventario como métricas Prometheus.
// Cumple inventory.MetricsRecorder.
type Recorder struct {
	registry       *prometheus.Registry
	operations     *prometheus.CounterVec
	durations      *prometheus.HistogramVec
	releasedUnits  *prometheus.CounterVec
	releasedVolume *prometheus.CounterVec
}

// NewRecorder crea un registro propio con los colectores del proceso y de Go.
// namespace vacío usa "bloodbank".
func NewRecorder(namespace string) *Recorder {
	if namespace == "" {
		namespace = "bloodbank"
	}
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Operaciones del inventario por resultado.",
		}, []string{"operation", "result"}),
		durations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duración de las operaciones del inventario.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		releasedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_units_total",
			Help:      "Unidades movidas al archivo de liberaciones.",
		}, []string{"category"}),
		releasedVolume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "released_volume_ml_total",
			Help:      "Volumen liberado en mililitros.",
		}, []string{"category"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.operations, r.durations, r.releasedUnits, r.releasedVolume,
	)
	return r
}

// Observe registra el resultado de una operación.
func (r *Recorder) Observe(_ context.Context, operation string, success bool, duration time.Duration) {
	if operation == "" {
		return
	}
	result := "error"
	if success {
		result = "success"
	}
	r.operations.WithLabelValues(operation, result).Inc()
	r.durations.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveRelease suma unidades y volumen liberados en la categoría.
func (r *Recorder) ObserveRelease(_ context.Context, category string, units, volumeMl int) {
	r.releasedUnits.WithLabelValues(category).Add(float64(units))
	r.releasedVolume.WithLabelValues(category).Add(float64(volumeMl))
}

// Handler expone el registro en formato de texto Prometheus.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry devuelve el registro subyacente (pruebas y colectores adicionales).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
