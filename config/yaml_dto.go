package config

type YAMLConfig struct {
	DegeneratePolicy string            `yaml:"degeneratePolicy"`
	RegionKinds      map[string]string `yaml:"regionKinds"`
	Log              YAMLLog           `yaml:"log"`
	Snapshot         YAMLSnapshot      `yaml:"snapshot"`
}

type YAMLLog struct {
	File  string `yaml:"file"`
	Level string `yaml:"level"`
}

type YAMLSnapshot struct {
	Compress bool `yaml:"compress"`
}
