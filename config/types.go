package config

// Config represents the complete configuration structure
type Config struct {
	Zendesk ZendeskConfig `mapstructure:"zendesk"`
	OAuth   OAuthConfig   `mapstructure:"oauth"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Filter  FilterConfig  `mapstructure:"filter"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ZendeskConfig holds the account and credentials
type ZendeskConfig struct {
	Subdomain  string `mapstructure:"subdomain"`
	APIURL     string `mapstructure:"api_url"`
	Email      string `mapstructure:"email"`
	Token      string `mapstructure:"token"`
	Password   string `mapstructure:"password"`
	OAuthToken string `mapstructure:"oauth_token"`
}

// OAuthConfig holds the OAuth client used for the code exchange
type OAuthConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	TokenURL     string `mapstructure:"token_url"`
}

// HTTPConfig contains transport settings
type HTTPConfig struct {
	TimeoutSeconds     int    `mapstructure:"timeout"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	UserAgent          string `mapstructure:"user_agent"`
	Concurrency        int    `mapstructure:"concurrency"`
}

// FilterConfig contains named filter presets
type FilterConfig struct {
	Presets map[string]string `mapstructure:"presets"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
