package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		botUpdatesTotal,
		conversationTransitionsTotal,
		callbackDecodeErrorsTotal,
		commandParseErrorsTotal,
		sessionsExpiredTotal,
	)
}

var (
	botUpdatesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bot_updates_total",
			Help: "Updates handled by the router, by input kind and engine outcome.",
		},
		[]string{"kind", "outcome"}, // kind: command|callback|text|photo
	)

	conversationTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_transitions_total",
			Help: "State changes written back to the session store.",
		},
		[]string{"from", "to"},
	)

	callbackDecodeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "callback_decode_errors_total",
			Help: "Button payloads that failed to decode.",
		},
		[]string{"reason"},
	)

	commandParseErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "command_parse_errors_total",
			Help: "Command lines rejected by the parser.",
		},
		[]string{"reason"},
	)
)

func IncUpdate(kind, outcome string) {
	botUpdatesTotal.WithLabelValues(norm(kind), norm(outcome)).Inc()
}

func IncTransition(from, to string) {
	conversationTransitionsTotal.WithLabelValues(norm(from), norm(to)).Inc()
}

func IncCallbackDecodeError(reason string) {
	callbackDecodeErrorsTotal.WithLabelValues(norm(reason)).Inc()
}

func IncCommandParseError(reason string) {
	commandParseErrorsTotal.WithLabelValues(norm(reason)).Inc()
}

var sessionsExpiredTotal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "sessions_expired_total",
		Help: "Conversations returned to idle by the sweeper.",
	},
)

func IncSessionsExpired(n int) {
	sessionsExpiredTotal.Add(float64(n))
}
