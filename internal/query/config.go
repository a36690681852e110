package query

import "time"

type Config struct {
	RequestTimeout   time.Duration `envconfig:"KDINDEX_QUERY_REQUEST_TIMEOUT" default:"30s"`
	MaxBatchLen      int           `envconfig:"KDINDEX_QUERY_MAX_BATCH_LEN" default:"64"`
	MaxVerbosePoints int           `envconfig:"KDINDEX_QUERY_MAX_VERBOSE_POINTS" default:"10000"`
}
