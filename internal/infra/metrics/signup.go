package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		signupStartedTotal,
		signupStepAdvancedTotal,
		signupValidationFailuresTotal,
		signupSubmissionsTotal,
		signupPaymentCancelledTotal,
	)
}

var (
	signupStartedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signup_started_total",
			Help: "Signup wizard sessions started.",
		},
	)

	signupStepAdvancedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_step_advanced_total",
			Help: "Successful forward transitions, labelled by the step that was left.",
		},
		[]string{"step"},
	)

	signupValidationFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_validation_failures_total",
			Help: "Wizard actions rejected by a step guard.",
		},
		[]string{"step", "field"},
	)

	signupSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "signup_submissions_total",
			Help: "Account creation attempts by payment method and outcome.",
		},
		[]string{"method", "outcome"}, // outcome: created | service_unavailable | conflict | generic | rejected
	)

	signupPaymentCancelledTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "signup_payment_cancelled_total",
			Help: "Times the payment chooser was closed without paying.",
		},
	)
)

func IncSignupStarted() { signupStartedTotal.Inc() }

func IncStepAdvanced(step int) {
	signupStepAdvancedTotal.WithLabelValues(strconv.Itoa(step)).Inc()
}

func IncValidationFailure(step int, field string) {
	signupValidationFailuresTotal.WithLabelValues(strconv.Itoa(step), norm(field)).Inc()
}

func IncSubmission(method, outcome string) {
	signupSubmissionsTotal.WithLabelValues(norm(method), norm(outcome)).Inc()
}

func IncPaymentCancelled() { signupPaymentCancelledTotal.Inc() }
