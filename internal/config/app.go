package config

const defaultLocalCurrency = "JPY"

type AppConfig struct {
	LocalCurrencyCode string `yaml:"local-currency"`
}

func (s *AppConfig) LocalCurrency() string {
	if s.LocalCurrencyCode == "" {
		return defaultLocalCurrency
	}
	return s.LocalCurrencyCode
}
