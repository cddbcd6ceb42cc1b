package sermons

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var orphanedAssets = promauto.NewCounter(prometheus.CounterOpts{
	Name: "lectern_sermons_orphaned_assets_total",
	Help: "Audio assets uploaded whose sermon record could not be written.",
})
