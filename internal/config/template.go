package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# cloudmig project configuration
provider: %s
region: %s

api:
  base_url: %s
  # static | aws_iam | azure_entra
  auth_method: static
  # token: set here or via $CLOUDMIG_API_TOKEN

# inventory: servers.csv

# retry:
#   max_attempts: 3
#   base_delay: 1s
#   max_delay: 60s

# params:
#   tier: standard-4
`

// WriteTemplate creates cloudmig.yaml in the project directory with the
// given provider, region, and API base URL filled in. It refuses to
// overwrite an existing config.
func WriteTemplate(projectPath, provider, region, apiBaseURL string) error {
	path := filepath.Join(projectPath, ConfigFileName)
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			return fmt.Errorf("config %s already exists", path)
		}
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, configTemplate, provider, region, apiBaseURL)
	return err
}
