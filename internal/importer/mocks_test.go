package importer

import (
	"context"

	ldaplib "github.com/go-ldap/ldap/v3"
	"github.com/stretchr/testify/mock"

	"github.com/isometry/ad-user-import/internal/attribute"
	"github.com/isometry/ad-user-import/internal/ldap"
	"github.com/isometry/ad-user-import/internal/store"
)

// mockDirClient is a testify mock for the ldap.Client interface.
type mockDirClient struct {
	mock.Mock
}

func (m *mockDirClient) Connect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockDirClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

func (m *mockDirClient) Search(ctx context.Context, req *ldap.SearchRequest) (*ldap.SearchResult, error) {
	args := m.Called(ctx, req)
	if result := args.Get(0); result != nil {
		return result.(*ldap.SearchResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDirClient) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockDirClient) Stats() ldap.PoolStats {
	args := m.Called()
	return args.Get(0).(ldap.PoolStats)
}

// personEntry builds a directory entry carrying the four identity
// attributes, with the guid in directory byte form.
func personEntry(guid, lastName, firstName, email string) *ldaplib.Entry {
	guidBytes, err := ldap.NewGUIDHandler().StringToGUIDBytes(guid)
	if err != nil {
		panic(err)
	}
	return &ldaplib.Entry{
		DN: "cn=" + firstName + " " + lastName + ",dc=example,dc=com",
		Attributes: []*ldaplib.EntryAttribute{
			{Name: "objectGUID", ByteValues: [][]byte{guidBytes}},
			{Name: "sn", Values: []string{lastName}},
			{Name: "givenName", Values: []string{firstName}},
			{Name: "mail", Values: []string{email}},
		},
	}
}

// mockUserStore is a testify mock for UserStore.
type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) IDByEmail(ctx context.Context, email string) (int64, bool, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockUserStore) GetByID(ctx context.Context, id int64) (*store.AdminUser, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*store.AdminUser), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) Create(ctx context.Context, u *store.AdminUser) (int64, error) {
	args := m.Called(ctx, u)
	id := args.Get(0).(int64)
	if id != 0 {
		u.ID = id
	}
	return id, args.Error(1)
}

func (m *mockUserStore) Update(ctx context.Context, u *store.AdminUser) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

// mockAssignmentStore is a testify mock for AssignmentStore.
type mockAssignmentStore struct {
	mock.Mock
}

func (m *mockAssignmentStore) DeleteRights(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockAssignmentStore) DeleteRoles(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockAssignmentStore) GrantRight(ctx context.Context, userID int64, rightCode string) error {
	args := m.Called(ctx, userID, rightCode)
	return args.Error(0)
}

func (m *mockAssignmentStore) GrantRole(ctx context.Context, userID int64, roleCode string) error {
	args := m.Called(ctx, userID, roleCode)
	return args.Error(0)
}

func (m *mockAssignmentStore) AddWorkgroupMember(ctx context.Context, workgroupKey string, userID int64) error {
	args := m.Called(ctx, workgroupKey, userID)
	return args.Error(0)
}

// mockFieldStore is a testify mock for FieldStore.
type mockFieldStore struct {
	mock.Mock
}

func (m *mockFieldStore) DeleteFields(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *mockFieldStore) CreateField(ctx context.Context, f attribute.FieldValue) error {
	args := m.Called(ctx, f)
	return args.Error(0)
}
