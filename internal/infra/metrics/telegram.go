package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		telegramRateLimitTriggeredTotal,
		telegramSendFailuresTotal,
	)
}

var (
	telegramRateLimitTriggeredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "telegram_rate_limit_triggered_total",
			Help: "Total number of times chats have been rate-limited.",
		},
	)

	telegramSendFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "telegram_send_failures_total",
			Help: "Outbound Telegram calls that failed, by operation.",
		},
		[]string{"op"}, // send_text|send_buttons|edit_message|answer_callback
	)
)

func IncRateLimitTriggered() {
	telegramRateLimitTriggeredTotal.Inc()
}

func IncSendFailure(op string) {
	telegramSendFailuresTotal.WithLabelValues(norm(op)).Inc()
}
