package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel    string `yaml:"log-level" env-default:"info"`
	HTTPPort    string `yaml:"http-port" env-default:"9090"`
	SocketPort  string `yaml:"socket-port" env-default:"8080"`
	Redis       Redis  `yaml:"redis"`
	ArchivePath string `yaml:"archive-path" env-default:"hyperttt.db"`
	Board       Board  `yaml:"board"`
}

type Redis struct {
	Host string `yaml:"host" env-default:"localhost"`
	Port string `yaml:"port" env-default:"6379"`
}

// Board holds the default geometry for new games and the ceilings a
// client request may ask for. The direction catalog grows as 3^n, so
// dimensions need a hard cap.
type Board struct {
	SideLength    int `yaml:"side-length" env-default:"3"`
	Dimensions    int `yaml:"dimensions" env-default:"2"`
	MaxSideLength int `yaml:"max-side-length" env-default:"10"`
	MaxDimensions int `yaml:"max-dimensions" env-default:"5"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}
