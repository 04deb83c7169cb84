package config

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"

	defaultDataFile = "data/records.json"
)

type StorageConfig struct {
	StorageBackend string `yaml:"backend"`
	DataFilePath   string `yaml:"data-file"`
}

func (s *StorageConfig) Backend() string {
	if s.StorageBackend == "" {
		return BackendFile
	}
	return s.StorageBackend
}

func (s *StorageConfig) DataFile() string {
	if s.DataFilePath == "" {
		return defaultDataFile
	}
	return s.DataFilePath
}
