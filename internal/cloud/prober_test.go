package cloud

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func TestNewProberDefaults(t *testing.T) {
	t.Setenv("CLOUDMIG_PROBE_USER", "")

	p := NewProber(ProberConfig{AuthMethod: cloudmig.AuthMethodStatic})

	assert.Equal(t, defaultProbeUser, p.cfg.User)
	assert.Equal(t, defaultProbeTimeout, p.cfg.Timeout)
	assert.NotNil(t, p.logger)
}

func TestNewProberUserFromEnv(t *testing.T) {
	t.Setenv("CLOUDMIG_PROBE_USER", "migrator")

	p := NewProber(ProberConfig{AuthMethod: cloudmig.AuthMethodStatic})

	assert.Equal(t, "migrator", p.cfg.User)
}

func TestProberPasswordStatic(t *testing.T) {
	t.Setenv("PGPASSWORD", "s3cret")

	p := NewProber(ProberConfig{AuthMethod: cloudmig.AuthMethodStatic})

	password, err := p.password(context.Background(), cloudmig.ServerRecord{
		ServerID: "srv-1",
		Hostname: "db.example.com",
		Port:     5432,
	})
	require.NoError(t, err)
	assert.Equal(t, "s3cret", password)
}

func TestProberPasswordUnsupportedMethod(t *testing.T) {
	p := NewProber(ProberConfig{AuthMethod: cloudmig.AuthMethod(99)})

	_, err := p.password(context.Background(), cloudmig.ServerRecord{ServerID: "srv-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, cloudmig.ErrUnsupportedAuthMethod)
}

func TestProberConnConfig(t *testing.T) {
	t.Setenv("PGPASSWORD", "s3cret")

	p := NewProber(ProberConfig{AuthMethod: cloudmig.AuthMethodStatic, User: "probe"})

	cfg, err := p.connConfig(context.Background(), cloudmig.ServerRecord{
		ServerID: "srv-1",
		Hostname: "db.example.com",
		Port:     5433,
	})
	require.NoError(t, err)
	assert.Equal(t, "db.example.com", cfg.Host)
	assert.Equal(t, uint16(5433), cfg.Port)
	assert.Equal(t, "probe", cfg.User)
	assert.Equal(t, "s3cret", cfg.Password)
	assert.Equal(t, "postgres", cfg.Database)
}

func TestProbeConnectionRefused(t *testing.T) {
	// Reserve a port and close the listener so nothing is accepting on it.
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := lis.Addr().(*net.TCPAddr).Port
	require.NoError(t, lis.Close())

	t.Setenv("PGPASSWORD", "")
	p := NewProber(ProberConfig{
		AuthMethod: cloudmig.AuthMethodStatic,
		User:       "probe",
		Timeout:    2 * time.Second,
	})

	err = p.Probe(context.Background(), cloudmig.ServerRecord{
		ServerID: "srv-1",
		Hostname: "127.0.0.1",
		Port:     port,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "probe srv-1")
}

func TestProberCloseWithoutDialer(t *testing.T) {
	p := NewProber(ProberConfig{AuthMethod: cloudmig.AuthMethodStatic})
	assert.NoError(t, p.Close())
}
