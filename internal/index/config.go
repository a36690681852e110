package index

type Config struct {
	Dimensions int    `envconfig:"KDINDEX_DIMENSIONS" default:"3"`
	PointsFile string `envconfig:"KDINDEX_POINTS_FILE"`
	Dataset    string `envconfig:"KDINDEX_DATASET"`
	RadiusMode string `envconfig:"KDINDEX_RADIUS_MODE" default:"EXACT"`
}
