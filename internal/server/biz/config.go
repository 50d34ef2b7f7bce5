package biz

import (
	"time"

	"github.com/nriit/facultypubs/internal/pkg/watcher"
)

const (
	// OwnerPolicyClient keeps the owner email sent by the client.
	OwnerPolicyClient = "client"
	// OwnerPolicyPrincipal forces the owner email to the authenticated principal.
	OwnerPolicyPrincipal = "principal"
)

type AuthConfig struct {
	JWTSecret string        `conf:"jwt_secret" yaml:"jwt_secret" json:"jwt_secret"`
	TokenTTL  time.Duration `conf:"token_ttl" yaml:"token_ttl" json:"token_ttl"`
	// EmailClaim is the claim holding the principal email. "email" is tried as a fallback.
	EmailClaim string `conf:"email_claim" yaml:"email_claim" json:"email_claim"`
}

type AuditConfig struct {
	// Buffer is the number of entries queued for the writer before new ones are dropped.
	Buffer       int            `conf:"buffer" yaml:"buffer" json:"buffer"`
	WriteTimeout time.Duration  `conf:"write_timeout" yaml:"write_timeout" json:"write_timeout"`
	Feed         watcher.Config `conf:"feed" yaml:"feed" json:"feed"`
}

type PublicationsConfig struct {
	OwnerPolicy string `conf:"owner_policy" yaml:"owner_policy" json:"owner_policy"`
	// AllowedEmailDomains restricts owner emails, e.g. nriit.edu.in. Empty allows every domain.
	AllowedEmailDomains []string `conf:"allowed_email_domains" yaml:"allowed_email_domains" json:"allowed_email_domains"`
	// ImportErrorLimit caps the error summary of an import report.
	ImportErrorLimit int `conf:"import_error_limit" yaml:"import_error_limit" json:"import_error_limit"`
}
