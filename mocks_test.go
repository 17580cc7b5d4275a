package auth_test

import (
	"context"
	"sync"

	auth "github.com/mukbit/acs-auth"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// MockAccounts implements auth.Accounts
type MockAccounts struct {
	mock.Mock
}

// Create echoes the input account when the test configures a nil return,
// mirroring a store that hands back the persisted document.
func (m *MockAccounts) Create(ctx context.Context, account *auth.Account) (*auth.Account, error) {
	args := m.Called(ctx, account)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	if args.Error(1) == nil {
		return account, nil
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByID(ctx context.Context, id string) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByEmail(ctx context.Context, email string) (*auth.Account, error) {
	args := m.Called(ctx, email)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByVerificationCode(ctx context.Context, code string) (*auth.Account, error) {
	args := m.Called(ctx, code)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) GetByResetToken(ctx context.Context, token string) (*auth.Account, error) {
	args := m.Called(ctx, token)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	return nil, args.Error(1)
}

// Update echoes the input account when the test configures a nil return.
func (m *MockAccounts) Update(ctx context.Context, account *auth.Account) (*auth.Account, error) {
	args := m.Called(ctx, account)
	if acc, ok := args.Get(0).(*auth.Account); ok {
		return acc, args.Error(1)
	}
	if args.Error(1) == nil {
		return account, nil
	}
	return nil, args.Error(1)
}

func (m *MockAccounts) TrackSuccessfulLogin(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccounts) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockNotifier implements auth.Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, recipient, name, code string) error {
	args := m.Called(ctx, recipient, name, code)
	return args.Error(0)
}

func (m *MockNotifier) SendWelcomeEmail(ctx context.Context, recipient, name string) error {
	args := m.Called(ctx, recipient, name)
	return args.Error(0)
}

func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, recipient, resetURL string) error {
	args := m.Called(ctx, recipient, resetURL)
	return args.Error(0)
}

func (m *MockNotifier) SendResetSuccessEmail(ctx context.Context, recipient string) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *MockNotifier) SendChangePasswordEmail(ctx context.Context, recipient string) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

// MockChallenge implements auth.ChallengeVerifier
type MockChallenge struct {
	mock.Mock
}

func (m *MockChallenge) Verify(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

// MockActivitySink implements auth.ActivitySink
type MockActivitySink struct {
	mock.Mock
}

func (m *MockActivitySink) Record(ctx context.Context, event auth.ActivityEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}

// memAccounts is an in-memory auth.Accounts used by end-to-end HTTP
// tests where mock choreography would obscure the flow under test.
type memAccounts struct {
	mu       sync.Mutex
	accounts map[string]*auth.Account
}

func newMemAccounts() *memAccounts {
	return &memAccounts{accounts: map[string]*auth.Account{}}
}

func (s *memAccounts) Create(_ context.Context, account *auth.Account) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return nil, auth.ErrDuplicateIdentity
		}
	}

	account.ID = bson.NewObjectID()
	s.accounts[account.ID.Hex()] = account
	return account, nil
}

func (s *memAccounts) GetByID(_ context.Context, id string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if acc, ok := s.accounts[id]; ok {
		return acc, nil
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memAccounts) GetByEmail(_ context.Context, email string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, acc := range s.accounts {
		if acc.Email == auth.NormalizeEmail(email) {
			return acc, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memAccounts) GetByVerificationCode(_ context.Context, code string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if code == "" {
		return nil, auth.ErrAccountNotFound
	}

	for _, acc := range s.accounts {
		if acc.VerificationCode == code {
			return acc, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memAccounts) GetByResetToken(_ context.Context, token string) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if token == "" {
		return nil, auth.ErrAccountNotFound
	}

	for _, acc := range s.accounts {
		if acc.ResetToken == token {
			return acc, nil
		}
	}
	return nil, auth.ErrAccountNotFound
}

func (s *memAccounts) Update(_ context.Context, account *auth.Account) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.ID.Hex()]; !ok {
		return nil, auth.ErrAccountNotFound
	}
	s.accounts[account.ID.Hex()] = account
	return account, nil
}

func (s *memAccounts) TrackSuccessfulLogin(context.Context, *auth.Account) error {
	return nil
}

func (s *memAccounts) EnsureIndexes(context.Context) error {
	return nil
}

// testConfig implements auth.Config
type testConfig struct {
	signingKey string
	cookieName string
}

func (c testConfig) GetSigningKey() string {
	if c.signingKey != "" {
		return c.signingKey
	}
	return "test-signing-key"
}

func (c testConfig) GetTokenExpiration() int { return 24 }
func (c testConfig) GetIssuer() string       { return "test-issuer" }
func (c testConfig) GetAudience() []string   { return []string{"test-audience"} }

func (c testConfig) GetCookieName() string {
	if c.cookieName != "" {
		return c.cookieName
	}
	return "token"
}

func (c testConfig) GetBcryptCost() int   { return 4 }
func (c testConfig) GetClientURL() string { return "http://localhost:5173" }
