package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const Namespace = "birthdays"

const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
)

var BirthdayMutations = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "birthday_mutations_total",
		Help:      "Total birthday mutations by operation",
		Namespace: Namespace,
	},
	[]string{"operation"},
)

var ImageUploads = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "image_uploads_total",
		Help:      "Total image uploads by result",
		Namespace: Namespace,
	},
	[]string{"result"},
)

var TokenVerifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name:      "token_verifications_total",
		Help:      "Total identity token verifications by result",
		Namespace: Namespace,
	},
	[]string{"result"},
)

var InvalidBirthDates = promauto.NewCounter(
	prometheus.CounterOpts{
		Name:      "invalid_birth_dates_total",
		Help:      "Stored records whose birth date could not be parsed while ranking",
		Namespace: Namespace,
	},
)
