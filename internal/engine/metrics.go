package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Statement outcomes recorded per tick.
const (
	statementRan     = "ran"
	statementSkipped = "skipped"
	statementFailed  = "failed"
)

// Metrics counts engine activity. A nil *Metrics records nothing.
type Metrics struct {
	Commands    *prometheus.CounterVec
	Ticks       prometheus.Counter
	Statements  *prometheus.CounterVec
	Evaluations *prometheus.CounterVec
	Errors      *prometheus.CounterVec
	Saves       prometheus.Counter
}

// NewMetrics creates the engine collectors and registers them with reg.
// reg may be nil to create unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crapsbot_engine_commands_total",
				Help: "Engine commands handled, by command word",
			},
			[]string{"command"},
		),
		Ticks: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crapsbot_engine_ticks_total",
				Help: "Program ticks run",
			},
		),
		Statements: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crapsbot_engine_statements_total",
				Help: "Program statements visited during ticks, by outcome",
			},
			[]string{"result"},
		),
		Evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crapsbot_engine_evaluations_total",
				Help: "Expressions evaluated, by outcome",
			},
			[]string{"result"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crapsbot_engine_errors_total",
				Help: "Errors reported to players, by error code",
			},
			[]string{"code"},
		),
		Saves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "crapsbot_engine_state_saves_total",
				Help: "State snapshots written to the repository",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Commands, m.Ticks, m.Statements, m.Evaluations, m.Errors, m.Saves)
	}
	return m
}

func (m *Metrics) command(word string) {
	if m != nil {
		m.Commands.WithLabelValues(word).Inc()
	}
}

func (m *Metrics) tick() {
	if m != nil {
		m.Ticks.Inc()
	}
}

func (m *Metrics) statement(result string) {
	if m != nil {
		m.Statements.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) evaluation(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.Evaluations.WithLabelValues("error").Inc()
		return
	}
	m.Evaluations.WithLabelValues("ok").Inc()
}

func (m *Metrics) failure(code string) {
	if m != nil {
		m.Errors.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) saved() {
	if m != nil {
		m.Saves.Inc()
	}
}
