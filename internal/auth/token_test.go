package auth

import (
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/grievance-service/internal/domain"
	apperrors "github.com/spec-kit/grievance-service/pkg/util/errorutil"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)

	token, expiresAt, err := tm.GenerateToken("agency-1", domain.KindAgency, "Helping Hands")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)

	session := claims.Session()
	assert.Equal(t, domain.KindAgency, session.Kind)
	assert.Equal(t, "agency-1", session.SubjectID)
	assert.Equal(t, "Helping Hands", session.Name)
	assert.WithinDuration(t, expiresAt, session.ExpiresAt, time.Second)
}

func TestTokenExpired(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	tm.now = func() time.Time { return issued }

	token, _, err := tm.GenerateToken("m1", domain.KindMigrant, "")
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).GenerateToken("m1", domain.KindMigrant, "")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ParseToken(token)
	assert.Error(t, err)
}

func TestTokenRejectsOtherSigningMethods(t *testing.T) {
	claims := &Claims{SubjectID: "m1", Kind: domain.KindMigrant}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ParseToken(unsigned)
	assert.Error(t, err)
}

func TestTokenRejectsUnknownKind(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	token, _, err := tm.GenerateToken("s1", domain.IdentityKind("STAFF"), "")
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("Secret@123", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "Secret@123", hash)
	assert.NoError(t, ComparePassword(hash, "Secret@123"))
	assert.Error(t, ComparePassword(hash, "secret@123"))
}

func TestPasswordTooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("a", 73), 4)
	var de *apperrors.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "VALIDATION_FAILED", de.Code)
}
