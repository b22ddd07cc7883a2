package types

import "time"

// HTTPConfig holds shared settings for outbound HTTP requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with every request. SSRN
	// answers non-browser clients with an HTML interstitial, so this is
	// a browser string.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// ProxyURL is an optional outbound proxy (http, https, or socks5
	// scheme) applied to every request. Empty means a direct connection.
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty"`
}

// FetchConfig holds settings for a batch fetch run. It is built once at
// startup and passed unchanged into the orchestrator.
type FetchConfig struct {
	HTTPConfig `yaml:",inline"`

	// InputFile is the JSON array of SSRN paper URLs to process.
	InputFile string `json:"input_file" yaml:"input_file"`

	// OutputDir is the directory receiving <abstract_id>.pdf files.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// FailedLogFile receives the failure records for the run as a JSON
	// array, replacing any log left by a previous run.
	FailedLogFile string `json:"failed_log_file" yaml:"failed_log_file"`

	// Delay is the pause between consecutive papers (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// MaxRetries is the number of direct-download attempts before the
	// landing-page fallback takes over (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}
