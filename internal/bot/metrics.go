package bot

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics counts chat traffic. A nil *Metrics records nothing.
type Metrics struct {
	Lines prometheus.Counter
	Sent  prometheus.Counter
	Rolls prometheus.Counter
}

// NewMetrics creates the bot collectors and registers them with reg.
// reg may be nil to create unregistered collectors.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crapsbot_chat_lines_total",
			Help: "Chat lines addressed to the bot",
		}),
		Sent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crapsbot_chat_messages_sent_total",
			Help: "Chat messages sent to the channel",
		}),
		Rolls: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crapsbot_table_rolls_total",
			Help: "Dice rolls, each followed by a program tick",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Lines, m.Sent, m.Rolls)
	}
	return m
}

func (m *Metrics) line() {
	if m != nil {
		m.Lines.Inc()
	}
}

func (m *Metrics) sent() {
	if m != nil {
		m.Sent.Inc()
	}
}

func (m *Metrics) roll() {
	if m != nil {
		m.Rolls.Inc()
	}
}

// pushMetrics sends everything in g to a Prometheus Pushgateway.
func pushMetrics(url, job string, g prometheus.Gatherer) error {
	return push.New(url, job).Gatherer(g).Push()
}
