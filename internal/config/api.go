package config

// APIConfig configures the REST backend client.
type APIConfig struct {
	BaseURL  string `yaml:"base_url"`
	Timeout  string `yaml:"timeout"`  // "0s" = rely on the transport
	Identity string `yaml:"identity"` // forwarded as x-rh-identity when set
}
