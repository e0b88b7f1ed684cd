package vaulttotp_test

import (
	"testing"
	"time"

	"github.com/securefoxd/securefox/vaulttotp"
)

func TestGenerateAtKnownAnswerVector(t *testing.T) {
	cfg, err := vaulttotp.ParseSecret("GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ")
	if err != nil {
		t.Fatalf("ParseSecret: %v", err)
	}

	got, err := cfg.GenerateAt(time.Unix(59, 0).UTC())
	if err != nil {
		t.Fatalf("GenerateAt: %v", err)
	}

	if got != "287082" {
		t.Fatalf("got %q want %q", got, "287082")
	}

	ttl := cfg.TTLAt(time.Unix(59, 0).UTC())
	if ttl != time.Second {
		t.Fatalf("got ttl %v want %v", ttl, time.Second)
	}
}

func TestNormalizeSecretIsIdempotent(t *testing.T) {
	cfg1, err := vaulttotp.ParseSecret(" jbswy3dpehpk3pxp ")
	if err != nil {
		t.Fatalf("ParseSecret: %v", err)
	}

	cfg2, err := vaulttotp.ParseSecret(cfg1.Secret)
	if err != nil {
		t.Fatalf("ParseSecret of normalized secret: %v", err)
	}

	if cfg1.Secret != cfg2.Secret {
		t.Fatalf("normalization is not idempotent: %q != %q", cfg1.Secret, cfg2.Secret)
	}
}

func TestParseSecretRejectsInvalidBase32(t *testing.T) {
	if _, err := vaulttotp.ParseSecret("not-base32!!!"); err == nil {
		t.Fatal("expected an error for invalid base32 input")
	}
}

func TestParseURIRoundTrip(t *testing.T) {
	uri := "otpauth://totp/Example:alice@example.com?secret=JBSWY3DPEHPK3PXP&issuer=Example&digits=6&period=30"

	cfg, err := vaulttotp.ParseSecret(uri)
	if err != nil {
		t.Fatalf("ParseSecret: %v", err)
	}

	if cfg.Issuer != "Example" {
		t.Fatalf("got issuer %q want %q", cfg.Issuer, "Example")
	}

	if cfg.AccountName != "alice@example.com" {
		t.Fatalf("got account %q want %q", cfg.AccountName, "alice@example.com")
	}

	reparsed, err := vaulttotp.ParseSecret(cfg.ToURI())
	if err != nil {
		t.Fatalf("ParseSecret(ToURI()): %v", err)
	}

	if reparsed.Secret != cfg.Secret {
		t.Fatalf("round trip changed secret: %q != %q", reparsed.Secret, cfg.Secret)
	}
}

func TestTTLNeverZero(t *testing.T) {
	cfg, err := vaulttotp.ParseSecret("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("ParseSecret: %v", err)
	}

	for sec := int64(0); sec < 90; sec++ {
		ttl := cfg.TTLAt(time.Unix(sec, 0).UTC())
		if ttl <= 0 || ttl > 30*time.Second {
			t.Fatalf("at t=%d got ttl %v, want in (0, 30s]", sec, ttl)
		}
	}
}
