package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const defaultPath = "."

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port     int `json:"port" yaml:"port"`
		Timeouts struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	// AI configuration for the external text-generation provider
	AI *AIConfig `json:"ai" yaml:"ai"`

	// Tracking configuration for the live tracking feed
	Tracking *TrackingConfig `json:"tracking" yaml:"tracking"`

	// PubSub configuration for the realtime position channel
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`

	// Firebase configuration for maintenance alert pushes
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// QRCode configuration for tracking share links
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// AIConfig defines the external generative-AI provider settings together
// with the local gates placed in front of it.
type AIConfig struct {
	// Model name passed to the provider, e.g. "gemini-2.0-flash"
	Model string `json:"model" yaml:"model"`

	// APIKey is the provider credential. Empty disables AI features;
	// every insight then degrades to a placeholder result.
	APIKey string `json:"apiKey" yaml:"apiKey"`

	// BaseURL overrides the provider endpoint, mainly for tests
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// CacheTTL bounds how long an identical request is served from cache
	CacheTTL time.Duration `json:"cacheTtl" yaml:"cacheTtl"`

	// MaxRequestsPerMinute caps outbound calls in a sliding 60s window
	MaxRequestsPerMinute int `json:"maxRequestsPerMinute" yaml:"maxRequestsPerMinute"`

	// Cooldown applied locally after a provider-reported rate limit
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`

	// Timeout for one provider round trip
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// TrackingConfig defines the live tracking feed settings
type TrackingConfig struct {
	// PollInterval is the fallback polling cadence against the position log
	PollInterval time.Duration `json:"pollInterval" yaml:"pollInterval"`
}

// PubSubConfig defines the realtime position channel settings
type PubSubConfig struct {
	// Provider type: "google" for Google Pub/Sub, "local" for the HTTP
	// push simulator, empty disables the channel
	Provider string `json:"provider" yaml:"provider"`

	// LocalEndpoint receives simulated push messages when Provider is "local"
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// PushPort is the port the push receiver listens on
	PushPort int `json:"pushPort" yaml:"pushPort"`

	// Google Cloud project ID
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Topic the position ingester publishes to
	TopicID string `json:"topicId" yaml:"topicId"`

	// Subscription the tracking feed consumes from
	SubscriptionID string `json:"subscriptionId" yaml:"subscriptionId"`
}

// FirebaseConfig defines Firebase settings for maintenance alert pushes
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// QRCodeConfig defines QR code generation settings for tracking share links
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
	BaseURL              string `json:"baseUrl" yaml:"baseUrl"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: AI_APIKEY -> ai.apiKey (not ai.apikey)
			key := canonicalizeEnvKey(k, existingConfigMap)

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults fills the local-gate settings the rest of the system
// relies on when the config file leaves them out.
func applyDefaults(cfg *Config) {
	if cfg.AI == nil {
		cfg.AI = &AIConfig{}
	}
	if cfg.AI.CacheTTL <= 0 {
		cfg.AI.CacheTTL = 5 * time.Minute
	}
	if cfg.AI.MaxRequestsPerMinute <= 0 {
		cfg.AI.MaxRequestsPerMinute = 5
	}
	if cfg.AI.Cooldown <= 0 {
		cfg.AI.Cooldown = time.Minute
	}
	if cfg.AI.Timeout <= 0 {
		cfg.AI.Timeout = 30 * time.Second
	}

	if cfg.Tracking == nil {
		cfg.Tracking = &TrackingConfig{}
	}
	if cfg.Tracking.PollInterval <= 0 {
		cfg.Tracking.PollInterval = 5 * time.Second
	}

	if cfg.PubSub != nil && cfg.PubSub.PushPort <= 0 {
		cfg.PubSub.PushPort = 8081
	}
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}
