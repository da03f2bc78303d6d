package importer

import (
	"context"
	"testing"

	ldaplib "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/isometry/ad-user-import/internal/ldap"
)

func newTestResolver(client ldap.Client) *Resolver {
	searcher := ldap.NewIdentitySearcher(client, ldap.DefaultSearchConfig(), nil)
	return NewResolver(searcher, nil)
}

func TestResolve_Unique(t *testing.T) {
	client := &mockDirClient{}
	entry := personEntry("12345678-9abc-def0-1234-56789abcdef0", "Doe", "Jane", "jane@x.com")
	client.On("Search", mock.Anything, mock.Anything).
		Return(&ldap.SearchResult{Entries: []*ldaplib.Entry{entry}, Total: 1}, nil)

	res, err := newTestResolver(client).Resolve(context.Background(), "jane@x.com")
	require.NoError(t, err)

	assert.Equal(t, Unique, res.Outcome)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "12345678-9abc-def0-1234-56789abcdef0", res.Identity.GUID)
	assert.Equal(t, "jane@x.com", res.Identity.Email)
}

func TestResolve_NotFound(t *testing.T) {
	client := &mockDirClient{}
	client.On("Search", mock.Anything, mock.Anything).
		Return(&ldap.SearchResult{Entries: nil, Total: 0}, nil)

	res, err := newTestResolver(client).Resolve(context.Background(), "nobody@x.com")
	require.NoError(t, err)

	assert.Equal(t, NotFound, res.Outcome)
	assert.Nil(t, res.Identity)
}

func TestResolve_Ambiguous(t *testing.T) {
	client := &mockDirClient{}
	entries := []*ldaplib.Entry{
		personEntry("11111111-1111-1111-1111-111111111111", "Doe", "Jane", "jane@x.com"),
		personEntry("22222222-2222-2222-2222-222222222222", "Doe", "Janet", "jane@x.com"),
	}
	client.On("Search", mock.Anything, mock.Anything).
		Return(&ldap.SearchResult{Entries: entries, Total: 2}, nil)

	res, err := newTestResolver(client).Resolve(context.Background(), "jane@x.com")
	require.NoError(t, err)

	assert.Equal(t, Ambiguous, res.Outcome)
	assert.Equal(t, 2, res.Count)
	assert.Nil(t, res.Identity)
}

func TestResolve_CommunicationFailureTreatedAsNotFound(t *testing.T) {
	client := &mockDirClient{}
	client.On("Search", mock.Anything, mock.Anything).
		Return(nil, ldap.NewConnectionError("connection refused", true, nil))

	res, err := newTestResolver(client).Resolve(context.Background(), "jane@x.com")
	require.NoError(t, err)

	assert.Equal(t, NotFound, res.Outcome)
}
