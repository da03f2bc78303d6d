package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/isometry/ad-user-import/internal/config"
	"github.com/isometry/ad-user-import/internal/ldap"
	"github.com/isometry/ad-user-import/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ad-user-import",
		Short: "Bulk-provision admin users from a feed, resolved against a directory",
	}
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newCheckCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the logger.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Config{Level: cfg.Log.Level, Dev: cfg.Log.Dev})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func connectionConfig(cfg *config.Config) *ldap.ConnectionConfig {
	conn := ldap.DefaultConfig()
	conn.Domain = cfg.LDAP.Domain
	conn.LDAPURLs = cfg.LDAP.URLs
	conn.Username = cfg.LDAP.BindDN
	conn.Password = cfg.LDAP.BindPassword
	conn.KerberosRealm = cfg.LDAP.KerberosRealm
	conn.KerberosKeytab = cfg.LDAP.KerberosKeytab
	conn.KerberosCCache = cfg.LDAP.KerberosCCache
	conn.KerberosConfig = cfg.LDAP.KerberosConfig
	conn.KerberosSPN = cfg.LDAP.KerberosSPN
	conn.UseTLS = cfg.LDAP.UseTLS
	conn.SkipTLS = cfg.LDAP.SkipTLS
	if cfg.LDAP.Timeout > 0 {
		conn.Timeout = cfg.LDAP.Timeout
	}
	return conn
}

func searchConfig(cfg *config.Config) *ldap.SearchConfig {
	search := ldap.DefaultSearchConfig()
	search.BaseDN = cfg.LDAP.UserBase
	search.Subtree = cfg.LDAP.UserSubtree
	if cfg.LDAP.CriteriaFilter != "" {
		search.CriteriaFilter = cfg.LDAP.CriteriaFilter
	}
	if cfg.LDAP.AttrGUID != "" {
		search.AttrGUID = cfg.LDAP.AttrGUID
	}
	if cfg.LDAP.AttrFamilyName != "" {
		search.AttrLastName = cfg.LDAP.AttrFamilyName
	}
	if cfg.LDAP.AttrGivenName != "" {
		search.AttrFirstName = cfg.LDAP.AttrGivenName
	}
	if cfg.LDAP.AttrEmail != "" {
		search.AttrEmail = cfg.LDAP.AttrEmail
	}
	return search
}

func separatorRune(s string) rune {
	if s == "" {
		return ';'
	}
	return []rune(s)[0]
}
