package cloud

import (
	"context"
	"fmt"
	"net"
	"os"
	"time"

	"cloud.google.com/go/cloudsqlconn"
	"github.com/jackc/pgx/v5"

	"github.com/avetrov-io/cloudmig/internal/logging"
	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// defaultProbeTimeout bounds a single connectivity probe.
const defaultProbeTimeout = 10 * time.Second

// defaultProbeUser is the database role probes connect as when none is
// configured.
const defaultProbeUser = "cloudmig_probe"

// ProberConfig configures endpoint connectivity probing.
type ProberConfig struct {
	// AuthMethod selects how probe connections authenticate.
	AuthMethod cloudmig.AuthMethod

	// Region is the AWS region, required for AuthMethodAWSIAM.
	Region string

	// GoogleInstance is the Cloud SQL instance connection name
	// (project:region:instance). When set, probes dial through the
	// Cloud SQL connector instead of plain TCP.
	GoogleInstance string

	// Azure Entra ID credentials, used with AuthMethodAzureEntraID.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// User is the database role to connect as.
	// Defaults to $CLOUDMIG_PROBE_USER, then "cloudmig_probe".
	User string

	// Timeout bounds each probe attempt.
	Timeout time.Duration

	Logger cloudmig.Logger
}

// Prober checks connectivity to database server endpoints.
//
// A probe establishes one authenticated connection, pings it, and closes
// it. Probes do not retry; the caller wraps Probe in a retry executor.
type Prober struct {
	cfg    ProberConfig
	logger cloudmig.Logger

	// dialer is created lazily for Google-hosted instances and reused
	// across probes.
	dialer *cloudsqlconn.Dialer
}

// NewProber creates a Prober. Close must be called when done to release
// any Cloud SQL dialer resources.
func NewProber(cfg ProberConfig) *Prober {
	if cfg.User == "" {
		cfg.User = os.Getenv("CLOUDMIG_PROBE_USER")
	}
	if cfg.User == "" {
		cfg.User = defaultProbeUser
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultProbeTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Prober{cfg: cfg, logger: logger}
}

// Probe connects to the server's endpoint, pings, and disconnects.
// Failures are returned wrapped so the caller's classifier can inspect
// the underlying pgconn/net error.
func (p *Prober) Probe(ctx context.Context, server cloudmig.ServerRecord) error {
	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	connConfig, err := p.connConfig(ctx, server)
	if err != nil {
		return err
	}

	p.logger.Verbose("probing %s (%s:%d) as %s", server.ServerID, server.Hostname, server.Port, p.cfg.User)

	conn, err := pgx.ConnectConfig(ctx, connConfig)
	if err != nil {
		return fmt.Errorf("probe %s (%s:%d): %w", server.ServerID, server.Hostname, server.Port, err)
	}
	defer conn.Close(context.Background())

	if err := conn.Ping(ctx); err != nil {
		return fmt.Errorf("probe %s (%s:%d): ping: %w", server.ServerID, server.Hostname, server.Port, err)
	}
	return nil
}

// Close releases the Cloud SQL dialer, if one was created.
func (p *Prober) Close() error {
	if p.dialer != nil {
		return p.dialer.Close()
	}
	return nil
}

func (p *Prober) connConfig(ctx context.Context, server cloudmig.ServerRecord) (*pgx.ConnConfig, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s dbname=postgres sslmode=prefer",
		server.Hostname, server.Port, p.cfg.User)

	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse probe config for %s: %w", server.ServerID, err)
	}

	password, err := p.password(ctx, server)
	if err != nil {
		return nil, err
	}
	connConfig.Password = password

	if p.cfg.GoogleInstance != "" {
		if p.dialer == nil {
			dialer, err := cloudsqlconn.NewDialer(ctx, cloudsqlconn.WithIAMAuthN())
			if err != nil {
				return nil, fmt.Errorf("create Cloud SQL dialer: %w", err)
			}
			p.dialer = dialer
		}
		instance := p.cfg.GoogleInstance
		connConfig.DialFunc = func(ctx context.Context, network, addr string) (net.Conn, error) {
			return p.dialer.Dial(ctx, instance)
		}
	}

	return connConfig, nil
}

// password resolves the probe credential for the configured auth method.
// Token-based methods use the short-lived cloud token as the password,
// the same convention cloud-hosted PostgreSQL uses for IAM and Entra ID
// authentication.
func (p *Prober) password(ctx context.Context, server cloudmig.ServerRecord) (string, error) {
	switch p.cfg.AuthMethod {
	case cloudmig.AuthMethodStatic:
		return os.Getenv("PGPASSWORD"), nil

	case cloudmig.AuthMethodAWSIAM:
		endpoint := fmt.Sprintf("%s:%d", server.Hostname, server.Port)
		provider, err := NewAWSIAMTokenProvider(endpoint, p.cfg.Region, p.cfg.User)
		if err != nil {
			return "", err
		}
		return p.token(ctx, provider)

	case cloudmig.AuthMethodAzureEntraID:
		provider, err := p.azureProvider()
		if err != nil {
			return "", err
		}
		return p.token(ctx, provider)

	default:
		return "", fmt.Errorf("%w: %s", cloudmig.ErrUnsupportedAuthMethod, p.cfg.AuthMethod)
	}
}

func (p *Prober) azureProvider() (TokenProvider, error) {
	if p.cfg.AzureTenantID != "" && p.cfg.AzureClientID != "" && p.cfg.AzureClientSecret != "" {
		return NewAzureServicePrincipalProvider(
			p.cfg.AzureTenantID, p.cfg.AzureClientID, p.cfg.AzureClientSecret, AzurePostgreSQLScope)
	}
	return NewAzureDefaultCredentialProvider(AzurePostgreSQLScope)
}

func (p *Prober) token(ctx context.Context, provider TokenProvider) (string, error) {
	token, expiresOn, err := provider.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to acquire token (%s): %w", provider, err)
	}
	if !expiresOn.IsZero() && time.Until(expiresOn) < 5*time.Minute {
		p.logger.Info("Warning: %s token expires in %v", provider, time.Until(expiresOn).Round(time.Second))
	}
	return token, nil
}
