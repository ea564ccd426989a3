package s3backup

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

const DefaultPrefix = "backups"

var prefixPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(/[A-Za-z0-9_-]+)*$`)

// Config describes where collection snapshots are written
type Config struct {
	Enabled         bool
	Bucket          string
	Prefix          string
	Region          string
	Endpoint        string // MinIO and other S3 compatible servers
	ForcePathStyle  bool
	CreateBucket    bool
	AccessKeyID     string
	SecretAccessKey string
}

// LoadConfig reads the S3_* variables. Credentials and bucket are only
// checked when backups are enabled.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Enabled:         env.GetEnvBool("S3_BACKUP_ENABLED", false),
		Bucket:          strings.TrimSpace(env.GetEnv("S3_BUCKET_NAME", "")),
		Prefix:          strings.Trim(strings.TrimSpace(env.GetEnv("S3_BACKUP_PREFIX", DefaultPrefix)), "/"),
		Region:          env.GetEnv("S3_REGION", "eu-central-1"),
		Endpoint:        strings.TrimRight(env.GetEnv("S3_ENDPOINT_URL", ""), "/"),
		AccessKeyID:     env.GetEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: env.GetEnv("S3_SECRET_ACCESS_KEY", ""),
		CreateBucket:    env.GetEnvBool("S3_CREATE_BUCKET", false),
	}
	cfg.ForcePathStyle = env.GetEnvBool("S3_FORCE_PATH_STYLE", cfg.Endpoint != "")

	if !cfg.Enabled {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports the first unusable setting
func (c *Config) Validate() error {
	var missing []string
	if c.Bucket == "" {
		missing = append(missing, "S3_BUCKET_NAME")
	}
	if c.AccessKeyID == "" {
		missing = append(missing, "S3_ACCESS_KEY_ID")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "S3_SECRET_ACCESS_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("s3 backup enabled but %s not set", strings.Join(missing, ", "))
	}
	if !prefixPattern.MatchString(c.Prefix) {
		return errors.New("S3_BACKUP_PREFIX must be slash separated segments of letters, digits, '-' or '_'")
	}
	return nil
}

// IsEnabled returns true if S3 backup is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// ObjectKey returns the key of a collection snapshot taken at t:
// <prefix>/YYYY/MM/DD/<kind>-<unix>.json
func (c *Config) ObjectKey(kind string, t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("%s/%04d/%02d/%02d/%s-%d.json", c.Prefix, t.Year(), int(t.Month()), t.Day(), kind, t.Unix())
}
