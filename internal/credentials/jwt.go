package credentials

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
)

var errMalformedToken = errors.New("malformed access token")

// userIDFromToken extracts the user id from the token's subject claim, which
// has the form "<issuer>|<id>". The signature is not verified: the token is
// only forwarded to the service that issued it.
func userIDFromToken(token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", errMalformedToken
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return "", errMalformedToken
	}

	var claims struct {
		Sub string `json:"sub"`
	}
	if err := json.Unmarshal(payload, &claims); err != nil {
		return "", errMalformedToken
	}

	fields := strings.Split(claims.Sub, "|")
	if len(fields) < 2 || fields[1] == "" {
		return "", errMalformedToken
	}
	return fields[1], nil
}
