package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
)

const recaptchaVerifyURL = "https://www.google.com/recaptcha/api/siteverify"

// RecaptchaVerifier validates reCAPTCHA challenge tokens against Google's
// siteverify endpoint.
type RecaptchaVerifier struct {
	secret    string
	verifyURL string
	client    *http.Client
	logger    Logger
}

var _ ChallengeVerifier = (*RecaptchaVerifier)(nil)

// NewRecaptchaVerifier creates a verifier for the given shared secret.
func NewRecaptchaVerifier(secret string) *RecaptchaVerifier {
	return &RecaptchaVerifier{
		secret:    secret,
		verifyURL: recaptchaVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    defLogger{},
	}
}

// WithVerifyURL overrides the siteverify endpoint, used in tests.
func (v *RecaptchaVerifier) WithVerifyURL(u string) *RecaptchaVerifier {
	v.verifyURL = u
	return v
}

// WithLogger overrides the logger.
func (v *RecaptchaVerifier) WithLogger(logger Logger) *RecaptchaVerifier {
	if logger != nil {
		v.logger = logger
	}
	return v
}

// Verify posts the challenge token to siteverify. Any outcome other than
// an explicit success counts as a failed challenge.
func (v *RecaptchaVerifier) Verify(ctx context.Context, token string) error {
	if token == "" {
		return ErrChallengeFailed
	}

	form := url.Values{}
	form.Set("secret", v.secret)
	form.Set("response", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to build challenge verification request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := v.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "challenge verification request failed")
	}
	defer res.Body.Close()

	var body struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}

	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to decode challenge verification response")
	}

	if !body.Success {
		v.logger.Debug("challenge verification rejected", "codes", body.ErrorCodes)
		return ErrChallengeFailed
	}

	return nil
}

// NoopChallenge accepts every challenge token, for development and tests.
type NoopChallenge struct{}

func (NoopChallenge) Verify(context.Context, string) error { return nil }

func normalizeChallenge(c ChallengeVerifier) ChallengeVerifier {
	if c == nil {
		return NoopChallenge{}
	}
	return c
}
