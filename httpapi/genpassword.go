package httpapi

import (
	"github.com/nbutton23/zxcvbn-go"

	"github.com/securefoxd/securefox/randstring"
)

const (
	symbolCharset    = "!@#$%^&*()-_=+[]{}"
	defaultPwdLength = 20
)

// passwordOptions mirrors the "password options" body of
// POST /api/generate/password.
type passwordOptions struct {
	Length           int  `json:"length"`
	IncludeUppercase bool `json:"include_uppercase"`
	IncludeDigits    bool `json:"include_digits"`
	IncludeSymbols   bool `json:"include_symbols"`
}

func (o passwordOptions) normalized() passwordOptions {
	if o.Length <= 0 {
		o.Length = defaultPwdLength
	}

	return o
}

// generatePassword builds the requested alphabet from opts and draws
// a uniformly random password from it via randstring.
func generatePassword(opts passwordOptions) (string, error) {
	opts = opts.normalized()

	charset := randstring.Lower
	if opts.IncludeUppercase {
		charset += randstring.Upper
	}

	if opts.IncludeDigits {
		charset += randstring.Digits
	}

	if opts.IncludeSymbols {
		charset += symbolCharset
	}

	return randstring.NewWithAlphabet(opts.Length, charset)
}

// passwordStrength scores a password via zxcvbn, the same strength
// estimator the password-manager examples in the pack use for master
// password policy checks.
func passwordStrength(password string) int {
	return zxcvbn.PasswordStrength(password, nil).Score
}
