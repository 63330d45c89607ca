// Package explain maps migration failures to actionable troubleshooting
// hints. It inspects the propagated error for structured fields (HTTP
// status, provider code) and falls back to message text, then looks the
// failure up in a built-in catalog.
package explain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

// Diagnosis is a catalog match for a failure.
type Diagnosis struct {
	Summary string // One-line description of what went wrong
	Hint    string // Actionable suggestion for fixing
}

// entry is one catalog row. A row matches when any of its criteria hit.
type entry struct {
	status     int      // HTTP status, 0 to skip
	code       string   // provider error code, "" to skip
	substrings []string // lowercase fragments of the error text
	diagnosis  Diagnosis
}

// catalog is checked in order; the first match wins, so specific rows
// come before generic ones.
var catalog = []entry{
	{
		code: "ThrottlingException",
		diagnosis: Diagnosis{
			Summary: "the management API is rate limiting this account",
			Hint: "Reduce concurrent migrations or migrate fewer servers per wave.\n" +
				"The built-in retry already backs off; persistent throttling means the\n" +
				"account-level request quota is too low for this inventory size.",
		},
	},
	{
		status: 429,
		diagnosis: Diagnosis{
			Summary: "the management API is rate limiting this account",
			Hint:    "Wait for the indicated retry-after interval, or request a quota increase.",
		},
	},
	{
		status: 401,
		diagnosis: Diagnosis{
			Summary: "the management API rejected the credentials",
			Hint: "Check the api.token value in cloudmig.yaml (or the token environment\n" +
				"variable it expands from). Tokens from cloud identity providers expire;\n" +
				"re-issue the token and try again.",
		},
	},
	{
		status: 403,
		diagnosis: Diagnosis{
			Summary: "the credentials lack permission for this operation",
			Hint: "The identity behind the token needs migration permissions on the\n" +
				"target project. Grant the migration role and retry.",
		},
	},
	{
		status: 404,
		diagnosis: Diagnosis{
			Summary: "the management API does not know this server",
			Hint: "Check the server_id column in servers.csv against the provider\n" +
				"console. Server IDs are region-scoped; confirm the configured region.",
		},
	},
	{
		status: 503,
		diagnosis: Diagnosis{
			Summary: "the management API is temporarily unavailable",
			Hint: "This is usually transient and already retried. If it persists,\n" +
				"check the provider's service health dashboard for the configured region.",
		},
	},
	{
		substrings: []string{"connection refused"},
		diagnosis: Diagnosis{
			Summary: "nothing is listening on the server endpoint",
			Hint: "Check the hostname and port columns in servers.csv, and confirm the\n" +
				"server is running. Cloud databases may pause when idle.",
		},
	},
	{
		substrings: []string{"no such host"},
		diagnosis: Diagnosis{
			Summary: "the server hostname does not resolve",
			Hint: "Check the hostname column in servers.csv for typos. Private endpoints\n" +
				"resolve only from inside the provider network or over a configured VPN.",
		},
	},
	{
		substrings: []string{"password authentication failed", "authentication failed"},
		diagnosis: Diagnosis{
			Summary: "the database endpoint rejected the probe credentials",
			Hint: "For static auth set PGPASSWORD for the probe user. For IAM or Entra ID\n" +
				"auth confirm the database role is provisioned for token login.",
		},
	},
	{
		substrings: []string{"context deadline exceeded", "i/o timeout", "timeout"},
		diagnosis: Diagnosis{
			Summary: "the operation timed out",
			Hint: "Check network reachability from this machine to the endpoint.\n" +
				"Security groups or firewall rules commonly block the database port.",
		},
	},
	{
		substrings: []string{"certificate"},
		diagnosis: Diagnosis{
			Summary: "TLS certificate verification failed",
			Hint: "The endpoint presented a certificate this machine does not trust.\n" +
				"Install the provider's CA bundle or verify the hostname matches the\n" +
				"certificate.",
		},
	},
}

// Diagnose looks the error up in the troubleshooting catalog.
// Returns nil when no row matches.
func Diagnose(err error) *Diagnosis {
	if err == nil {
		return nil
	}

	status := 0
	var sc cloudmig.StatusCoder
	if errors.As(err, &sc) {
		status = sc.StatusCode()
	}

	code := ""
	var ec cloudmig.ErrorCoder
	if errors.As(err, &ec) {
		code = ec.ErrorCode()
	}

	text := strings.ToLower(err.Error())

	for i := range catalog {
		e := &catalog[i]
		if e.status != 0 && e.status == status {
			return &e.diagnosis
		}
		if e.code != "" && e.code == code {
			return &e.diagnosis
		}
		for _, sub := range e.substrings {
			if strings.Contains(text, sub) {
				return &e.diagnosis
			}
		}
	}
	return nil
}

// Format renders the error followed by a hint block when the catalog
// has one. Errors without a catalog match render unchanged.
func Format(err error) string {
	if err == nil {
		return ""
	}
	d := Diagnose(err)
	if d == nil {
		return err.Error()
	}
	return fmt.Sprintf("%s\n\nLikely cause: %s.\nHint: %s", err.Error(), d.Summary, d.Hint)
}
