package cloudmig_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/avetrov-io/cloudmig/pkg/cloudmig"
)

func validConfig() cloudmig.MigrationConfig {
	return cloudmig.MigrationConfig{
		ProjectPath: "./prod-fleet",
		Provider:    cloudmig.ProviderAWS,
		Region:      "us-west-2",
		APIBaseURL:  "https://migration.api.example.com",
		AuthMethod:  cloudmig.AuthMethodStatic,
		APIToken:    "test-token",
		Timeout:     30 * time.Minute,
	}
}

func TestMigrationConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*cloudmig.MigrationConfig)
		wantError bool
	}{
		{"valid config", func(c *cloudmig.MigrationConfig) {}, false},
		{"missing project path", func(c *cloudmig.MigrationConfig) { c.ProjectPath = "" }, true},
		{"missing API base URL", func(c *cloudmig.MigrationConfig) { c.APIBaseURL = "" }, true},
		{"invalid auth method", func(c *cloudmig.MigrationConfig) { c.AuthMethod = cloudmig.AuthMethod(42) }, true},
		{"aws iam without region", func(c *cloudmig.MigrationConfig) {
			c.AuthMethod = cloudmig.AuthMethodAWSIAM
			c.Region = ""
		}, true},
		{"aws iam with region", func(c *cloudmig.MigrationConfig) {
			c.AuthMethod = cloudmig.AuthMethodAWSIAM
		}, false},
		{"negative wave", func(c *cloudmig.MigrationConfig) { c.Wave = -1 }, true},
		{"negative timeout", func(c *cloudmig.MigrationConfig) { c.Timeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantError {
				if err == nil {
					t.Fatal("expected validation error, got nil")
				}
				if !errors.Is(err, cloudmig.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got: %v", err)
				}
			} else if err != nil {
				t.Errorf("expected valid config, got: %v", err)
			}
		})
	}
}

func TestMigrationConfig_Validate_JoinsMultipleFailures(t *testing.T) {
	cfg := cloudmig.MigrationConfig{Wave: -1, Timeout: -time.Second}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"ProjectPath", "APIBaseURL", "wave", "timeout"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected joined error to mention %q, got: %v", want, err)
		}
	}
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    cloudmig.Provider
		wantErr bool
	}{
		{"aws", cloudmig.ProviderAWS, false},
		{"azure", cloudmig.ProviderAzure, false},
		{"google", cloudmig.ProviderGoogle, false},
		{"gcp", cloudmig.ProviderGoogle, false},
		{"ibm", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := cloudmig.ParseProvider(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.Is(err, cloudmig.ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseProvider(%q): %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseProvider(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAuthMethod_IsValid(t *testing.T) {
	for _, m := range []cloudmig.AuthMethod{
		cloudmig.AuthMethodStatic, cloudmig.AuthMethodAWSIAM, cloudmig.AuthMethodAzureEntraID,
	} {
		if !m.IsValid() {
			t.Errorf("expected %v to be valid", m)
		}
	}
	if cloudmig.AuthMethod(42).IsValid() {
		t.Error("expected AuthMethod(42) to be invalid")
	}
	if cloudmig.AuthMethod(-1).IsValid() {
		t.Error("expected AuthMethod(-1) to be invalid")
	}
}

func TestValidationReport_Passed(t *testing.T) {
	empty := &cloudmig.ValidationReport{}
	if empty.Passed() {
		t.Error("empty report must not pass")
	}

	ok := &cloudmig.ValidationReport{Servers: []cloudmig.ServerValidation{
		{Server: cloudmig.ServerRecord{ServerID: "srv-001"}, Reachable: true},
		{Server: cloudmig.ServerRecord{ServerID: "srv-002"}, Reachable: true},
	}}
	if !ok.Passed() {
		t.Error("expected report with no errors to pass")
	}
	if got := ok.Failed(); len(got) != 0 {
		t.Errorf("expected no failures, got %d", len(got))
	}

	mixed := &cloudmig.ValidationReport{Servers: []cloudmig.ServerValidation{
		{Server: cloudmig.ServerRecord{ServerID: "srv-001"}, Reachable: true},
		{Server: cloudmig.ServerRecord{ServerID: "srv-002"}, Err: cloudmig.ErrConnectionFailed},
	}}
	if mixed.Passed() {
		t.Error("report with a failed server must not pass")
	}
	failed := mixed.Failed()
	if len(failed) != 1 || failed[0].Server.ServerID != "srv-002" {
		t.Errorf("expected srv-002 in failures, got %+v", failed)
	}
}

func TestMigrationResult_Succeeded(t *testing.T) {
	empty := &cloudmig.MigrationResult{}
	if empty.Succeeded() {
		t.Error("empty result must not succeed")
	}

	ok := &cloudmig.MigrationResult{Servers: []cloudmig.ServerMigration{
		{Server: cloudmig.ServerRecord{ServerID: "srv-001"}, JobID: "job-1", CutOver: true},
	}}
	if !ok.Succeeded() {
		t.Error("expected result with no errors to succeed")
	}

	failed := &cloudmig.MigrationResult{Servers: []cloudmig.ServerMigration{
		{Server: cloudmig.ServerRecord{ServerID: "srv-001"}, Err: cloudmig.ErrMigrationFailed},
	}}
	if failed.Succeeded() {
		t.Error("result with a failed server must not succeed")
	}
}
