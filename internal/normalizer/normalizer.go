package normalizer

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/url"
	"phishguard/pkg/domain"
	"phishguard/pkg/logger"
	"phishguard/pkg/qr"
	"phishguard/pkg/serrors"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	// registered image formats
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

const (
	// DefaultMaxImageBytes is used when no upload limit is configured.
	DefaultMaxImageBytes = 10 << 20
	// maxImagePixels guards against decompression bombs.
	maxImagePixels = 64 << 20

	invalidURLMessage   = "invalid URL format"
	invalidImageMessage = "could not decode a valid URL from the image"
)

// Schemes lists the URL schemes accepted by ValidateURL.
var Schemes = map[string]struct{}{
	"http":  {},
	"https": {},
	"ftp":   {},
	"ftps":  {},
}

type normalizer struct {
	decoder       qr.Decoder
	validate      *validator.Validate
	maxImageBytes int64
}

// ValidateURL accepts raw only if, after trimming surrounding whitespace, it is
// an absolute URL with a recognized scheme, a host that is a domain name or an
// IP literal and, when present, a port in 1-65535. Internationalized domain
// names are accepted in Unicode or punycode form. The returned CandidateURL is the trimmed input, not a
// re-serialized form, so cache keys stay textually identical to what was sent.
func (n *normalizer) ValidateURL(raw string) (domain.CandidateURL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", serrors.With(serrors.ErrBadRequest, invalidURLMessage)
	}
	if strings.ContainsFunc(raw, unicode.IsSpace) {
		return "", serrors.With(serrors.ErrBadRequest, invalidURLMessage)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, invalidURLMessage)
	}

	// url.Parse already lowercases the scheme
	if _, ok := Schemes[u.Scheme]; !ok || u.Opaque != "" {
		return "", serrors.With(serrors.ErrBadRequest, invalidURLMessage)
	}

	host := strings.TrimSuffix(u.Hostname(), ".")
	if host == "" {
		return "", serrors.With(serrors.ErrBadRequest, invalidURLMessage)
	}
	if err := n.validate.Var(host, "ip"); err != nil {
		if err := n.validateDomain(host); err != nil {
			return "", serrors.Wrap(serrors.ErrBadRequest, err, invalidURLMessage)
		}
	}
	if err := validatePort(u.Port()); err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, invalidURLMessage)
	}
	if err := n.validate.Var(raw, "url"); err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, invalidURLMessage)
	}

	return domain.CandidateURL(raw), nil
}

// validateDomain checks host in its ASCII form: every label must be an
// RFC 1123 label and the top-level label must not be all digits.
func (n *normalizer) validateDomain(host string) error {
	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return fmt.Errorf("invalid domain %q: %w", host, err)
	}
	if err := n.validate.Var(ascii, "hostname_rfc1123"); err != nil {
		return fmt.Errorf("invalid domain %q: %w", host, err)
	}

	labels := strings.Split(ascii, ".")
	if len(labels) < 2 {
		return fmt.Errorf("domain %q has no top-level label", host)
	}
	if tld := labels[len(labels)-1]; strings.Trim(tld, "0123456789") == "" {
		return fmt.Errorf("domain %q has a numeric top-level label", host)
	}

	return nil
}

func validatePort(port string) error {
	if port == "" {
		return nil
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("port %q out of range", port)
	}

	return nil
}

// ExtractURLFromImage decodes data as a still image, walks the QR payloads in
// the order the decoder reports them and returns the first one that passes
// ValidateURL. Payloads that are not valid UTF-8 are skipped.
func (n *normalizer) ExtractURLFromImage(ctx context.Context, data []byte) (domain.CandidateURL, error) {
	if len(data) == 0 {
		return "", serrors.With(serrors.ErrBadRequest, "image is empty")
	}
	if int64(len(data)) > n.maxImageBytes {
		return "", serrors.With(serrors.ErrBadRequest, "image exceeds %d bytes", n.maxImageBytes)
	}

	img, err := decodeImage(data)
	if err != nil {
		return "", serrors.Wrap(serrors.ErrBadRequest, err, invalidImageMessage)
	}

	skipped := 0
	for payload := range n.decoder.Payloads(img) {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("image scan interrupted: %w", err)
		}
		if !utf8.ValidString(payload) || strings.ContainsRune(payload, utf8.RuneError) {
			skipped++

			continue
		}

		candidate, err := n.ValidateURL(payload)
		if err != nil {
			skipped++

			continue
		}

		return candidate, nil
	}

	logger.Get(ctx).Debug("no QR payload is a valid URL", zap.Int("skipped", skipped))

	return "", serrors.With(serrors.ErrBadRequest, invalidImageMessage)
}

func decodeImage(data []byte) (image.Image, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read image header: %w", err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > maxImagePixels {
		return nil, fmt.Errorf("%s image is too large: %dx%d", format, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not decode %s image: %w", format, err)
	}

	return img, nil
}

// New creates a Normalizer that reads QR codes with decoder and rejects images
// larger than maxImageBytes. A non-positive limit falls back to
// DefaultMaxImageBytes.
func New(decoder qr.Decoder, maxImageBytes int64) Normalizer {
	if maxImageBytes <= 0 {
		maxImageBytes = DefaultMaxImageBytes
	}

	return &normalizer{
		decoder:       decoder,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
		maxImageBytes: maxImageBytes,
	}
}
