package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	OpSignup = "signup"
	OpLogin  = "login"
	OpLogout = "logout"
)

const (
	ResultOK           = "ok"
	ResultBadRequest   = "bad_request"
	ResultUnauthorized = "unauthorized"
	ResultConflict     = "conflict"
	ResultError        = "error"
)

var AuthAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "auth_attempts_total",
	Help: "Authentication requests by operation and outcome.",
}, []string{"op", "result"})

func Observe(op, result string) {
	AuthAttempts.WithLabelValues(op, result).Inc()
}
