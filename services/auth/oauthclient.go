package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
)

var providerAuthEndpoints = map[string]string{
	"google":    "https://accounts.google.com/o/oauth2/v2/auth",
	"github":    "https://github.com/login/oauth/authorize",
	"microsoft": "https://login.microsoftonline.com/common/oauth2/v2.0/authorize",
}

// MockProviderClient simulates the provider leg of the OAuth flow for
// development and test environments. The authorization URLs are real; the
// code exchange derives a stable identity from the code instead of calling
// out.
type MockProviderClient struct{}

func NewMockProviderClient() *MockProviderClient {
	return &MockProviderClient{}
}

func (c *MockProviderClient) AuthorizationURL(provider, state, redirectURI string) (string, error) {
	endpoint, ok := providerAuthEndpoints[provider]
	if !ok {
		return "", ErrUnknownProvider
	}

	query := url.Values{}
	query.Set("response_type", "code")
	query.Set("state", state)
	query.Set("redirect_uri", redirectURI)
	return endpoint + "?" + query.Encode(), nil
}

func (c *MockProviderClient) Exchange(ctx context.Context, provider, code, redirectURI string) (*ProviderIdentity, error) {
	if code == "" {
		return nil, ErrInvalidCredentials
	}

	sum := sha256.Sum256([]byte(provider + ":" + code))
	subject := hex.EncodeToString(sum[:16])

	return &ProviderIdentity{
		Provider:       provider,
		ProviderUserID: subject,
		Email:          fmt.Sprintf("%s@%s.example.com", subject[:12], provider),
	}, nil
}
