package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const configFile = "data/config.yaml"

type config struct {
	App       AppConfig       `yaml:"app"`
	Server    ServerConfig    `yaml:"server"`
	Rates     RatesConfig     `yaml:"rates"`
	Storage   StorageConfig   `yaml:"storage"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Drive     DriveConfig     `yaml:"drive"`
}

type Service struct {
	config config
}

func New() (*Service, error) {
	s := &Service{}

	rawYAML, err := os.ReadFile(configFile)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}

	err = yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}

	return s, nil
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) Server() *ServerConfig {
	return &s.config.Server
}

func (s *Service) Rates() *RatesConfig {
	return &s.config.Rates
}

func (s *Service) Storage() *StorageConfig {
	return &s.config.Storage
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Drive() *DriveConfig {
	return &s.config.Drive
}
