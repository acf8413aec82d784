package credential_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openinv/invctl/internal/credential"
	"github.com/openinv/invctl/internal/serviceerr"
)

func signedToken(t *testing.T, expiry time.Time) string {
	t.Helper()

	key := []byte("0123456789abcdef0123456789abcdef")
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: key}, nil)
	require.NoError(t, err)

	claims := jwt.Claims{
		Subject: "1",
		Expiry:  jwt.NewNumericDate(expiry),
	}
	raw, err := jwt.Signed(signer).Claims(claims).Serialize()
	require.NoError(t, err)
	return raw
}

func TestCredential_ExpiresAt(t *testing.T) {
	expiry := time.Now().Add(30 * time.Minute).Truncate(time.Second)
	cred := credential.Credential{AccessToken: signedToken(t, expiry)}

	assert.Equal(t, expiry.UTC(), cred.ExpiresAt().UTC())
}

func TestCredential_ExpiresWithin(t *testing.T) {
	tests := []struct {
		name   string
		token  func(t *testing.T) string
		window time.Duration
		want   bool
	}{
		{
			name:   "Fresh token outside window",
			token:  func(t *testing.T) string { return signedToken(t, time.Now().Add(time.Hour)) },
			window: 5 * time.Minute,
			want:   false,
		},
		{
			name:   "Token inside window",
			token:  func(t *testing.T) string { return signedToken(t, time.Now().Add(2*time.Minute)) },
			window: 5 * time.Minute,
			want:   true,
		},
		{
			name:   "Already expired token",
			token:  func(t *testing.T) string { return signedToken(t, time.Now().Add(-time.Minute)) },
			window: 5 * time.Minute,
			want:   true,
		},
		{
			name:   "Opaque token treated as expiring",
			token:  func(*testing.T) string { return "not-a-jwt" },
			window: 5 * time.Minute,
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cred := credential.Credential{AccessToken: tt.token(t)}
			assert.Equal(t, tt.want, cred.ExpiresWithin(tt.window))
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := credential.NewFileStore(path, "https://inventory.example.com/api")

	// empty store has no credential
	_, err := store.Load(t.Context())
	assert.ErrorIs(t, err, serviceerr.ErrNoCredential)

	cred := credential.Credential{
		AccessToken:  "access",
		RefreshToken: "refresh",
		ObtainedAt:   time.Now().Truncate(time.Second),
	}
	require.NoError(t, store.Save(t.Context(), cred))

	got, err := store.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, cred.AccessToken, got.AccessToken)
	assert.Equal(t, cred.RefreshToken, got.RefreshToken)

	require.NoError(t, store.Clear(t.Context()))
	_, err = store.Load(t.Context())
	assert.ErrorIs(t, err, serviceerr.ErrNoCredential)
}

func TestFileStore_ScopedByBaseURL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")

	prod := credential.NewFileStore(path, "https://prod.example.com/api")
	staging := credential.NewFileStore(path, "https://staging.example.com/api")

	require.NoError(t, prod.Save(t.Context(), credential.Credential{AccessToken: "prod-token"}))
	require.NoError(t, staging.Save(t.Context(), credential.Credential{AccessToken: "staging-token"}))

	got, err := prod.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "prod-token", got.AccessToken)

	// clearing one deployment leaves the other alone
	require.NoError(t, prod.Clear(t.Context()))
	_, err = prod.Load(t.Context())
	assert.ErrorIs(t, err, serviceerr.ErrNoCredential)

	got, err = staging.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, "staging-token", got.AccessToken)
}

func TestFileStore_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	store := credential.NewFileStore(path, "https://inventory.example.com/api")

	require.NoError(t, writeFile(path, "{not json"))

	_, err := store.Load(t.Context())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, serviceerr.ErrNoCredential)
}
