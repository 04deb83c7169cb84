package config

const (
	defaultPrimaryURL     = "https://api.frankfurter.app"
	defaultSecondaryURL   = "https://api.apilayer.com/fixer"
	defaultCacheTTLHours  = 24
	defaultTimeoutSeconds = 10
)

type RatesConfig struct {
	PrimaryBaseURL   string `yaml:"primary-url"`
	SecondaryBaseURL string `yaml:"secondary-url"`
	SecondaryKey     string `yaml:"secondary-api-key"`
	CacheTTLHrs      int64  `yaml:"cache-ttl-hours"`
	TimeoutSecs      int64  `yaml:"timeout-seconds"`
}

func (s *RatesConfig) PrimaryURL() string {
	if s.PrimaryBaseURL == "" {
		return defaultPrimaryURL
	}
	return s.PrimaryBaseURL
}

func (s *RatesConfig) SecondaryURL() string {
	if s.SecondaryBaseURL == "" {
		return defaultSecondaryURL
	}
	return s.SecondaryBaseURL
}

func (s *RatesConfig) SecondaryApiKey() string {
	return s.SecondaryKey
}

func (s *RatesConfig) CacheTTLHours() int64 {
	if s.CacheTTLHrs == 0 {
		return defaultCacheTTLHours
	}
	return s.CacheTTLHrs
}

func (s *RatesConfig) TimeoutSeconds() int64 {
	if s.TimeoutSecs == 0 {
		return defaultTimeoutSeconds
	}
	return s.TimeoutSecs
}
