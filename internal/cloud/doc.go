// Package cloud talks to the outside world: the migration management API
// and the database server endpoints being migrated.
//
// The Client is a thin JSON/HTTP client for the management API; it does
// no retrying of its own. Failures are returned as *cloudmig.APIError
// carrying the transport status, the provider's error code, and any
// Retry-After header, so the retry layer and the troubleshooting catalog
// can classify them.
//
// The Prober checks connectivity to individual server endpoints using
// the provider-appropriate authentication: password, AWS RDS IAM tokens,
// Azure Entra ID tokens, or the Cloud SQL connector for Google-hosted
// instances.
package cloud
