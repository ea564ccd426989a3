package imageprocessor

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2/log"
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
	_ "golang.org/x/image/webp"

	"github.com/ManuelReschke/NewsDesk/internal/pkg/env"
)

const (
	FormatJPEG = "jpeg"
	FormatWebP = "webp"

	DefaultMaxBytes = 5 * 1024 * 1024
	DefaultMaxWidth = 1600
)

var (
	ErrUndecodable = errors.New("image cannot be decoded")
	ErrTooLarge    = errors.New("image too large")
)

// re-encode qualities, tried in order until the result fits
var qualities = []int{85, 70, 55}

// Config controls how submitted news images are normalized
type Config struct {
	MaxBytes int
	MaxWidth int
	Format   string
}

// LoadConfig reads IMAGE_MAX_BYTES, IMAGE_MAX_WIDTH and IMAGE_FORMAT
func LoadConfig() Config {
	cfg := Config{
		MaxBytes: env.GetEnvInt("IMAGE_MAX_BYTES", DefaultMaxBytes),
		MaxWidth: env.GetEnvInt("IMAGE_MAX_WIDTH", DefaultMaxWidth),
		Format:   strings.ToLower(env.GetEnv("IMAGE_FORMAT", FormatJPEG)),
	}
	if cfg.Format != FormatWebP {
		cfg.Format = FormatJPEG
	}
	return cfg
}

// Normalizer shrinks oversized data URL images so they fit into a record
type Normalizer struct {
	cfg Config
}

func NewNormalizer(cfg Config) *Normalizer {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = DefaultMaxBytes
	}
	if cfg.MaxWidth <= 0 {
		cfg.MaxWidth = DefaultMaxWidth
	}
	if cfg.Format == "" {
		cfg.Format = FormatJPEG
	}
	return &Normalizer{cfg: cfg}
}

// Normalize returns the image as it should be stored. Images within the size
// limit are kept verbatim; larger data URL images are resized and re-encoded.
func (n *Normalizer) Normalize(ctx context.Context, img string) (string, error) {
	mime, payload, isDataURL := parseDataURL(img)
	if !isDataURL {
		if len(img) > n.cfg.MaxBytes {
			return "", fmt.Errorf("%w: %d bytes", ErrTooLarge, len(img))
		}
		return img, nil
	}

	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUndecodable, err)
	}

	if len(img) <= n.cfg.MaxBytes {
		if _, _, err := image.DecodeConfig(bytes.NewReader(raw)); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUndecodable, mime, err)
		}
		return img, nil
	}

	if err := ctx.Err(); err != nil {
		return "", err
	}

	decoded, err := imaging.Decode(bytes.NewReader(raw), imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrUndecodable, mime, err)
	}
	if decoded.Bounds().Dx() > n.cfg.MaxWidth {
		decoded = imaging.Resize(decoded, n.cfg.MaxWidth, 0, imaging.Lanczos)
	}

	for _, q := range qualities {
		out, err := n.encode(decoded, q)
		if err != nil {
			return "", err
		}
		if len(out) <= n.cfg.MaxBytes {
			log.Debugf("re-encoded %s image from %d to %d bytes (quality %d)", mime, len(img), len(out), q)
			return out, nil
		}
	}

	return "", fmt.Errorf("%w: still above %d bytes after re-encoding", ErrTooLarge, n.cfg.MaxBytes)
}

func (n *Normalizer) encode(img image.Image, quality int) (string, error) {
	var buf bytes.Buffer
	mime := "image/jpeg"

	switch n.cfg.Format {
	case FormatWebP:
		options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, float32(quality))
		if err != nil {
			return "", fmt.Errorf("error creating encoder options: %w", err)
		}
		if err := webp.Encode(&buf, img, options); err != nil {
			return "", fmt.Errorf("error encoding WebP image: %w", err)
		}
		mime = "image/webp"
	default:
		if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return "", fmt.Errorf("error encoding JPEG image: %w", err)
		}
	}

	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// parseDataURL splits "data:image/png;base64,<payload>"
func parseDataURL(s string) (mime, payload string, ok bool) {
	if !strings.HasPrefix(s, "data:") {
		return "", "", false
	}
	header, payload, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return "", "", false
	}
	mime, params, _ := strings.Cut(header, ";")
	if !strings.HasPrefix(mime, "image/") || !strings.Contains(params, "base64") {
		return "", "", false
	}
	return mime, strings.TrimSpace(payload), true
}
