package types

// AppConfig represents the application configuration loaded from config file
type AppConfig struct {
	Host             string   `yaml:"host"`
	Port             int      `yaml:"port"`
	Protocol         string   `yaml:"protocol"` // http or https
	GifFolder        string   `yaml:"gifFolder"`        // every session gets <gifFolder>/<sessionId>/
	MaxUploadSize    int64    `yaml:"maxUploadSize"`    // compared against Content-Length, bytes
	MaxFileCount     int      `yaml:"maxFileCount"`     // accepted files per request
	AllowedMimeTypes []string `yaml:"allowedMimeTypes"` // e.g. image/gif
	CompressSuffix   string   `yaml:"compressSuffix"`   // <stem><suffix>.gif
	SessionTTL       int      `yaml:"sessionTTL"`       // seconds
	CleanupInterval  int      `yaml:"cleanupInterval"`  // seconds
	CompressWorkers  int      `yaml:"compressWorkers"`
	RateLimitPerSec  float64  `yaml:"rateLimitPerSec"` // POST /compress per client IP, 0 disables
	RateLimitBurst   int      `yaml:"rateLimitBurst"`
	NotifyWebsocket  bool     `yaml:"notifyWebsocket"`
	CertPEM          string   `yaml:"certPEM,omitempty"` // self-signed, generated on first https start
	KeyPEM           string   `yaml:"keyPEM,omitempty"`
}

// Config holds runtime overrides from CLI flags
type Config struct {
	Log           string
	UseConfigPath string
	UseGifFolder  string // overrides AppConfig.GifFolder
	UseHost       string
	UsePort       int
	UseHttps      bool
	SkipNotify    bool // if true, /notify-ws is not registered.
}
