// Package vaulttotp implements secret parsing/normalisation and RFC
// 6238 code generation for login items that carry a TOTP secret, per
// spec.md §4.3.
package vaulttotp

import (
	"encoding/base32"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/securefoxd/securefox/vaulterrors"
)

// DefaultPeriod is the code validity window in seconds when a URI
// does not specify one.
const DefaultPeriod = 30

// DefaultDigits is the code length when a URI does not specify one.
const DefaultDigits = 6

// DefaultAlgorithm is the HMAC hash when a URI does not specify one.
const DefaultAlgorithm = otp.AlgorithmSHA1

// Config holds a normalised TOTP secret plus the parameters used to
// generate codes from it.
type Config struct {
	Secret      string // normalised, unpadded base32
	Issuer      string
	AccountName string
	Algorithm   otp.Algorithm
	Digits      otp.Digits
	Period      uint
}

// ParseSecret accepts either an otpauth:// URI or a bare Base32
// string and returns a normalised Config. Whitespace is stripped and
// the secret is upper-cased before validation; non-Base32 characters
// are rejected.
func ParseSecret(input string) (*Config, error) {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(trimmed, "otpauth://") {
		return parseURI(trimmed)
	}

	secret, err := normalizeSecret(trimmed)
	if err != nil {
		return nil, err
	}

	return &Config{
		Secret:    secret,
		Algorithm: DefaultAlgorithm,
		Digits:    otp.DigitsSix,
		Period:    DefaultPeriod,
	}, nil
}

// normalizeSecret strips whitespace, upper-cases, and validates that s
// decodes as Base32 (padding optional). It is idempotent:
// normalizeSecret(normalizeSecret(s)) == normalizeSecret(s).
func normalizeSecret(s string) (string, error) {
	cleaned := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	cleaned = strings.TrimRight(cleaned, "=")

	if cleaned == "" {
		return "", fmt.Errorf("%w: empty secret", vaulterrors.ErrInvalidTotp)
	}

	if _, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(cleaned); err != nil {
		return "", fmt.Errorf("%w: not valid base32: %v", vaulterrors.ErrInvalidTotp, err)
	}

	return cleaned, nil
}

func parseURI(raw string) (*Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid otpauth uri: %v", vaulterrors.ErrInvalidTotp, err)
	}

	if u.Scheme != "otpauth" || u.Host != "totp" {
		return nil, fmt.Errorf("%w: only otpauth://totp/ uris are supported", vaulterrors.ErrInvalidTotp)
	}

	q := u.Query()

	secret, err := normalizeSecret(q.Get("secret"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Secret:    secret,
		Issuer:    q.Get("issuer"),
		Algorithm: DefaultAlgorithm,
		Digits:    otp.DigitsSix,
		Period:    DefaultPeriod,
	}

	label := strings.TrimPrefix(u.Path, "/")
	if idx := strings.Index(label, ":"); idx >= 0 {
		if cfg.Issuer == "" {
			cfg.Issuer, _ = url.PathUnescape(label[:idx])
		}
		cfg.AccountName, _ = url.PathUnescape(label[idx+1:])
	} else {
		cfg.AccountName, _ = url.PathUnescape(label)
	}

	if alg := q.Get("algorithm"); alg != "" {
		switch strings.ToUpper(alg) {
		case "SHA1":
			cfg.Algorithm = otp.AlgorithmSHA1
		case "SHA256":
			cfg.Algorithm = otp.AlgorithmSHA256
		case "SHA512":
			cfg.Algorithm = otp.AlgorithmSHA512
		default:
			return nil, fmt.Errorf("%w: unsupported algorithm %q", vaulterrors.ErrInvalidTotp, alg)
		}
	}

	if d := q.Get("digits"); d != "" {
		n, err := strconv.Atoi(d)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid digits %q", vaulterrors.ErrInvalidTotp, d)
		}

		switch n {
		case 6:
			cfg.Digits = otp.DigitsSix
		case 8:
			cfg.Digits = otp.DigitsEight
		default:
			return nil, fmt.Errorf("%w: unsupported digit count %d", vaulterrors.ErrInvalidTotp, n)
		}
	}

	if p := q.Get("period"); p != "" {
		n, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid period %q", vaulterrors.ErrInvalidTotp, p)
		}

		cfg.Period = uint(n)
	}

	return cfg, nil
}

// ToURI renders cfg back as an otpauth:// URI, the inverse of
// ParseSecret for URI-form input. Supplementing the required parser
// with an emitter mirrors the original's totp.rs to_uri.
func (c *Config) ToURI() string {
	label := c.AccountName
	if c.Issuer != "" {
		label = c.Issuer + ":" + c.AccountName
	}

	q := url.Values{}
	q.Set("secret", c.Secret)

	if c.Issuer != "" {
		q.Set("issuer", c.Issuer)
	}

	q.Set("algorithm", algorithmName(c.Algorithm))
	q.Set("digits", strconv.Itoa(digitsValue(c.Digits)))
	q.Set("period", strconv.FormatUint(uint64(periodOrDefault(c.Period)), 10))

	u := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + url.PathEscape(label),
		RawQuery: q.Encode(),
	}

	return u.String()
}

// Generate returns the current TOTP code for the current wall-clock
// time.
func (c *Config) Generate() (string, error) {
	return c.GenerateAt(time.Now())
}

// GenerateAt returns the TOTP code valid at t, for testing against
// fixed timestamps.
func (c *Config) GenerateAt(t time.Time) (string, error) {
	code, err := totp.GenerateCodeCustom(c.Secret, t, totp.ValidateOpts{
		Period:    periodOrDefault(c.Period),
		Digits:    digitsOrDefault(c.Digits),
		Algorithm: c.Algorithm,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", vaulterrors.ErrInvalidTotp, err)
	}

	return code, nil
}

// TTL returns the number of seconds remaining until the code
// generated "now" expires: period - (now mod period), always in
// (0, period].
func (c *Config) TTL() time.Duration {
	return c.TTLAt(time.Now())
}

// TTLAt is TTL for an explicit timestamp.
func (c *Config) TTLAt(t time.Time) time.Duration {
	period := int64(periodOrDefault(c.Period))
	elapsed := t.Unix() % period

	remaining := period - elapsed
	if remaining <= 0 {
		remaining = period
	}

	return time.Duration(remaining) * time.Second
}

func periodOrDefault(p uint) uint {
	if p == 0 {
		return DefaultPeriod
	}

	return p
}

func digitsOrDefault(d otp.Digits) otp.Digits {
	if digitsValue(d) == 0 {
		return otp.DigitsSix
	}

	return d
}

func digitsValue(d otp.Digits) int {
	switch d {
	case otp.DigitsSix:
		return 6
	case otp.DigitsEight:
		return 8
	default:
		return 0
	}
}

func algorithmName(a otp.Algorithm) string {
	switch a {
	case otp.AlgorithmSHA256:
		return "SHA256"
	case otp.AlgorithmSHA512:
		return "SHA512"
	default:
		return "SHA1"
	}
}
