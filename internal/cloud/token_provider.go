package cloud

import (
	"context"
	"time"
)

// TokenProvider abstracts cloud token acquisition for API and database
// endpoint authentication. This interface enables testability (mock
// providers) and extensibility across cloud platforms.
type TokenProvider interface {
	// GetToken acquires an authentication token.
	// For the management API the token is sent as a bearer credential;
	// for cloud-hosted PostgreSQL endpoints it is used as the password.
	// Returns the token string and its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a human-readable description for logging.
	// Should NOT include secrets. Example: "AzureServicePrincipal(tenant=xxx, client=yyy)"
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for PostgreSQL.
// This is the resource identifier that Azure AD uses to issue tokens for PostgreSQL access.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// AzureManagementScope is the OAuth scope for the Azure management plane,
// used when the migration API authenticates with Entra ID.
const AzureManagementScope = "https://management.azure.com/.default"

// StaticTokenProvider serves a pre-issued API token. The zero expiry
// means the token never needs refreshing from cloudmig's point of view.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider wraps a pre-issued token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

func (p *StaticTokenProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	return p.token, time.Time{}, nil
}

func (p *StaticTokenProvider) String() string {
	return "StaticToken"
}
