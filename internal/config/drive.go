package config

type DriveConfig struct {
	OAuthClientID     string `yaml:"client-id"`
	OAuthClientSecret string `yaml:"client-secret"`
	OAuthRefreshToken string `yaml:"refresh-token"`
	UploadFolderID    string `yaml:"folder-id"`
}

func (s *DriveConfig) ClientID() string {
	return s.OAuthClientID
}

func (s *DriveConfig) ClientSecret() string {
	return s.OAuthClientSecret
}

func (s *DriveConfig) RefreshToken() string {
	return s.OAuthRefreshToken
}

func (s *DriveConfig) FolderID() string {
	return s.UploadFolderID
}

// Enabled reports whether Drive uploads are configured. Records can still
// be saved without attachments when it is false.
func (s *DriveConfig) Enabled() bool {
	return s.OAuthClientID != "" && s.OAuthRefreshToken != ""
}
