package web

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/willemschots/newsroom/internal/auth"
)

// basicAuthCredentials extracts credentials from an HTTP Basic
// Authorization header. All failures are reported as
// auth.ErrInvalidCredentials, a malformed header and a wrong password
// get the same response.
func basicAuthCredentials(r *http.Request) (auth.Credentials, error) {
	header := r.Header.Get("Authorization")

	encoded, found := strings.CutPrefix(header, "Basic ")
	if !found {
		return auth.Credentials{}, fmt.Errorf("%w: missing basic authorization header", auth.ErrInvalidCredentials)
	}

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("%w: authorization header is not valid base64", auth.ErrInvalidCredentials)
	}

	username, password, found := strings.Cut(string(decoded), ":")
	if !found || username == "" {
		return auth.Credentials{}, fmt.Errorf("%w: malformed basic authorization header", auth.ErrInvalidCredentials)
	}

	c := auth.Credentials{
		Username: username,
	}

	if err := c.Password.UnmarshalText([]byte(password)); err != nil {
		return auth.Credentials{}, fmt.Errorf("%w: %s", auth.ErrInvalidCredentials, err)
	}

	return c, nil
}
