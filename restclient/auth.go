// Copyright 2026 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restclient

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// Credentials identify an OAuth2 client registered with a spinta
// server.
type Credentials struct {
	ClientID string
	Secret   string
	Scopes   []string

	// TokenURL is the token endpoint.  If empty, it is "auth/token"
	// relative to the server root.
	TokenURL string
}

// WithCredentials authorizes every request with a bearer token
// obtained through the client-credentials grant.  Tokens are fetched
// lazily and refreshed when they expire.  If WithHTTPClient is also
// given it must come first; its transport carries the token requests.
func WithCredentials(creds Credentials) Option {
	return func(c *Client) error {
		tokenURL := creds.TokenURL
		if tokenURL == "" {
			u, err := c.URL.Parse("auth/token")
			if err != nil {
				return err
			}
			tokenURL = u.String()
		}
		config := clientcredentials.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.Secret,
			TokenURL:     tokenURL,
			Scopes:       creds.Scopes,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.HTTP)
		c.HTTP = config.Client(ctx)
		return nil
	}
}

// HasCredentials returns true if creds name a client.
func (creds Credentials) HasCredentials() bool {
	return creds.ClientID != ""
}
