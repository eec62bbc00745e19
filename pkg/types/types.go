package types

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

const bearerPrefix = "Bearer "

// IDToken is a jwt encoded ID token string.
// Signature is not verified, the token is only used to tell who the owner is
type IDToken string

// Value is an underlying string
func (t IDToken) Value() string {
	return string(t)
}

// IDTokenDetails represents details related to ID token
type IDTokenDetails struct {
	Email   string `json:"email"`
	Expires int64  `json:"exp"`
}

// IDTokenFromAuthorization takes the token from a bearer authorization header
func IDTokenFromAuthorization(header string) (IDToken, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return IDToken(token), token != ""
}

// ExtractIDTokenDetails will decode an ID token and get it's details
func (t IDToken) ExtractIDTokenDetails() (*IDTokenDetails, error) {
	parts := strings.Split(t.Value(), ".")
	if len(parts) != 3 {
		return nil, errors.Errorf("Unexpected ID token structure. Should have 3 segments, got: %v", len(parts))
	}
	payload := strings.TrimRight(parts[1], "=")
	decoder := json.NewDecoder(base64.NewDecoder(base64.RawURLEncoding, strings.NewReader(payload)))
	var details IDTokenDetails
	if err := decoder.Decode(&details); err != nil {
		return nil, errors.Wrap(err, "Failed to decode ID token payload")
	}
	return &details, nil
}

// Owner returns the email claim that identifies an owner of transactions
func (t IDToken) Owner() (string, error) {
	details, err := t.ExtractIDTokenDetails()
	if err != nil {
		return "", err
	}
	if email := strings.TrimSpace(details.Email); email != "" {
		return email, nil
	}
	return "", errors.New("ID token has no email claim")
}
