package explain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func TestDiagnoseNil(t *testing.T) {
	assert.Nil(t, Diagnose(nil))
}

func TestDiagnoseByStatus(t *testing.T) {
	err := &cloudmig.APIError{Status: 401, Message: "token expired"}

	d := Diagnose(err)
	require.NotNil(t, d)
	assert.Contains(t, d.Summary, "rejected the credentials")
	assert.Contains(t, d.Hint, "api.token")
}

func TestDiagnoseByStatusWrapped(t *testing.T) {
	err := fmt.Errorf("start replication for srv-1: %w",
		&cloudmig.APIError{Status: 404, Message: "server not found"})

	d := Diagnose(err)
	require.NotNil(t, d)
	assert.Contains(t, d.Summary, "does not know this server")
}

func TestDiagnoseByProviderCode(t *testing.T) {
	// Provider code matches before the generic 429 status row.
	err := &cloudmig.APIError{Status: 429, Code: "ThrottlingException", Message: "slow down"}

	d := Diagnose(err)
	require.NotNil(t, d)
	assert.Contains(t, d.Hint, "fewer servers per wave")
}

func TestDiagnoseByText(t *testing.T) {
	tests := []struct {
		err     string
		summary string
	}{
		{"dial tcp 10.0.0.5:5432: connect: connection refused", "nothing is listening"},
		{"lookup db.internal: no such host", "does not resolve"},
		{"pq: password authentication failed for user \"probe\"", "rejected the probe credentials"},
		{"context deadline exceeded", "timed out"},
		{"x509: certificate signed by unknown authority", "certificate verification failed"},
	}
	for _, tt := range tests {
		t.Run(tt.err, func(t *testing.T) {
			d := Diagnose(errors.New(tt.err))
			require.NotNil(t, d)
			assert.Contains(t, d.Summary, tt.summary)
		})
	}
}

func TestDiagnoseNoMatch(t *testing.T) {
	assert.Nil(t, Diagnose(errors.New("something novel happened")))
}

func TestFormatWithHint(t *testing.T) {
	err := &cloudmig.APIError{Status: 503, Message: "maintenance"}

	out := Format(err)
	assert.Contains(t, out, "status 503")
	assert.Contains(t, out, "Likely cause:")
	assert.Contains(t, out, "Hint:")
}

func TestFormatWithoutHint(t *testing.T) {
	err := errors.New("something novel happened")
	assert.Equal(t, err.Error(), Format(err))
}

func TestFormatNil(t *testing.T) {
	assert.Equal(t, "", Format(nil))
}
