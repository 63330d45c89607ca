// Package params provides run parameter handling for cloudmig.
//
// Parameters come from the project config, optional .env-format files,
// and --param flags. They are substituted into inventory fields using
// ${NAME} placeholders before validation.
package params
