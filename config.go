package fileio

import (
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/hupe1980/fileio/internal/resource"
)

// Options is the flat key/value store configuration handed to Configure.
type Options map[string]string

// Configuration keys.
const (
	KeyBackend             = "fileio.backend"
	KeyEndpoint            = "s3.endpoint"
	KeyBucket              = "s3.bucket"
	KeyAccessKey           = "s3.access-key"
	KeySecretKey           = "s3.secret-key"
	KeyRegion              = "s3.region"
	KeyPathStyleAccess     = "s3.path-style-access"
	KeyChecksum            = "s3.checksum"
	KeyPartSize            = "s3.part-size"
	KeyLocalRoot           = "local.root"
	KeyMaxInflightRequests = "fileio.max-inflight-requests"
	KeyIOLimitBytesPerSec  = "fileio.io-limit-bytes-per-sec"
	KeyMemoryLimitBytes    = "fileio.memory-limit-bytes"
)

// legacyPrefix is accepted in front of every s3.* key.
const legacyPrefix = "opendal."

// Defaults.
const (
	DefaultEndpoint = "https://s3.amazonaws.com"
	DefaultRegion   = "us-east-1"
	DefaultPartSize = 8 * 1024 * 1024
)

// Backend selects the store implementation.
type Backend string

const (
	BackendS3     Backend = "s3"
	BackendMinio  Backend = "minio"
	BackendMemory Backend = "memory"
	BackendLocal  Backend = "local"
)

// Config is the parsed and validated form of Options.
type Config struct {
	Backend Backend

	Endpoint        string
	Bucket          string
	AccessKey       string
	SecretKey       string
	Region          string
	PathStyleAccess bool
	Checksum        bool
	PartSize        int64

	LocalRoot string

	Limits resource.Config
}

// LogValue implements slog.LogValuer. Credentials are never logged.
func (c Config) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("backend", string(c.Backend))}
	switch c.Backend {
	case BackendS3, BackendMinio:
		attrs = append(attrs,
			slog.String("endpoint", c.Endpoint),
			slog.String("bucket", c.Bucket),
			slog.String("region", c.Region),
			slog.Bool("path_style", c.PathStyleAccess),
		)
	case BackendLocal:
		attrs = append(attrs, slog.String("root", c.LocalRoot))
	}
	if !c.Limits.Unlimited() {
		attrs = append(attrs,
			slog.Int64("max_inflight", c.Limits.MaxInflightRequests),
			slog.Int64("io_limit", c.Limits.IOLimitBytesPerSec),
			slog.Int64("memory_limit", c.Limits.MemoryLimitBytes),
		)
	}
	return slog.GroupValue(attrs...)
}

// ParseConfig validates opts and applies defaults. Unknown keys are ignored.
func ParseConfig(opts Options) (Config, error) {
	cfg := Config{
		Backend:  Backend(strings.ToLower(lookup(opts, KeyBackend, string(BackendS3)))),
		Endpoint: lookup(opts, KeyEndpoint, DefaultEndpoint),
		Bucket:   lookup(opts, KeyBucket, ""),
		Region:   lookup(opts, KeyRegion, DefaultRegion),

		AccessKey: lookup(opts, KeyAccessKey, ""),
		SecretKey: lookup(opts, KeySecretKey, ""),
		LocalRoot: lookup(opts, KeyLocalRoot, ""),
	}

	var err error
	if cfg.PathStyleAccess, err = parseBool(opts, KeyPathStyleAccess, false); err != nil {
		return Config{}, err
	}
	if cfg.Checksum, err = parseBool(opts, KeyChecksum, true); err != nil {
		return Config{}, err
	}
	if cfg.PartSize, err = parseSize(opts, KeyPartSize, DefaultPartSize); err != nil {
		return Config{}, err
	}
	if cfg.PartSize < manager.MinUploadPartSize {
		return Config{}, &ConfigError{Key: KeyPartSize, Reason: fmt.Sprintf("must be at least %d", manager.MinUploadPartSize)}
	}
	if cfg.Limits.MaxInflightRequests, err = parseSize(opts, KeyMaxInflightRequests, 0); err != nil {
		return Config{}, err
	}
	if cfg.Limits.IOLimitBytesPerSec, err = parseSize(opts, KeyIOLimitBytesPerSec, 0); err != nil {
		return Config{}, err
	}
	if cfg.Limits.MemoryLimitBytes, err = parseSize(opts, KeyMemoryLimitBytes, 0); err != nil {
		return Config{}, err
	}

	switch cfg.Backend {
	case BackendS3, BackendMinio:
		if err := validateEndpoint(cfg.Endpoint); err != nil {
			return Config{}, err
		}
		for _, req := range []struct{ key, value string }{
			{KeyBucket, cfg.Bucket},
			{KeyAccessKey, cfg.AccessKey},
			{KeySecretKey, cfg.SecretKey},
		} {
			if req.value == "" {
				return Config{}, &ConfigError{Key: req.key, Reason: "required"}
			}
		}
	case BackendLocal:
		if cfg.LocalRoot == "" {
			return Config{}, &ConfigError{Key: KeyLocalRoot, Reason: "required"}
		}
	case BackendMemory:
	default:
		return Config{}, &ConfigError{Key: KeyBackend, Reason: fmt.Sprintf("unknown backend %q", cfg.Backend)}
	}

	return cfg, nil
}

func lookup(opts Options, key, def string) string {
	if v, ok := opts[key]; ok {
		return strings.TrimSpace(v)
	}
	if strings.HasPrefix(key, "s3.") {
		if v, ok := opts[legacyPrefix+key]; ok {
			return strings.TrimSpace(v)
		}
	}
	return def
}

func parseBool(opts Options, key string, def bool) (bool, error) {
	raw := lookup(opts, key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &ConfigError{Key: key, Reason: fmt.Sprintf("not a boolean: %q", raw), cause: err}
	}
	return v, nil
}

func parseSize(opts Options, key string, def int64) (int64, error) {
	raw := lookup(opts, key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &ConfigError{Key: key, Reason: fmt.Sprintf("not an integer: %q", raw), cause: err}
	}
	if v < 0 {
		return 0, &ConfigError{Key: key, Reason: "must not be negative"}
	}
	return v, nil
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return &ConfigError{Key: KeyEndpoint, Reason: "malformed URL", cause: err}
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return &ConfigError{Key: KeyEndpoint, Reason: fmt.Sprintf("must be an absolute http(s) URL, got %q", endpoint)}
	}
	return nil
}
