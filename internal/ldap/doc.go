/*
Package ldap provides the directory access layer for bulk user imports.

The package is organized into a small number of components:

  - Client: pooled, retrying search client over go-ldap
  - IdentitySearcher: criteria-based identity lookup for the import pipeline
  - Handlers: GUID and SID conversion utilities
  - SRVDiscovery: DNS-based domain controller discovery

# Connection Management

The Client interface provides connection pooling with automatic failover:

  - SRV-based domain controller discovery with fixed-port fallback
  - Connection health checks and re-authentication of aged binds
  - Automatic retry with exponential backoff on transient failures
  - Simple bind and Kerberos GSSAPI authentication

Clients are created per import run and closed when the run completes, so no
directory connection state outlives a run.

# Identity Resolution

IdentitySearcher locates directory entries through a configurable filter
template with positional placeholders for last name, first name and email.
Empty criteria become wildcards, which lets the import pipeline search on
email alone. Entries without a usable identifier attribute are dropped;
entries with missing name or email attributes are kept with empty values.

# Error Handling

Errors are categorized through LDAPError (connection, authentication,
validation, server, ...) with retryable classification. IsCommunicationError
distinguishes unreachable-directory conditions from empty results.

# Example Usage

	config := ldap.DefaultConfig()
	config.Domain = "example.com"
	config.Username = "svc-import"
	config.Password = "password"

	client, err := ldap.NewClient(logger, config)
	if err != nil {
		return err
	}
	defer client.Close()

	searcher := ldap.NewIdentitySearcher(client, nil, logger)
	identities, err := searcher.SearchByEmail(ctx, "jane.doe@example.com")
*/
package ldap
