package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/gigboard/engine/internal/models"
	appErr "github.com/gigboard/engine/pkg/errors"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := NewTokenService([]byte("k"), time.Hour)
	token, exp, err := svc.Issue(&models.User{ID: 7, Username: "alice", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

	actor, err := svc.Parse(token)
	require.NoError(t, err)
	require.Equal(t, uint(7), actor.ID)
	require.Equal(t, models.RoleAdmin, actor.Role)
}

func TestTokenRejections(t *testing.T) {
	issuer := &tokenService{hmacSecret: []byte("k"), ttl: time.Minute, now: func() time.Time { return time.Now().Add(-time.Hour) }}
	expired, _, err := issuer.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	svc := NewTokenService([]byte("k"), time.Hour)
	_, err = svc.Parse(expired)
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	other, _, err := NewTokenService([]byte("other"), time.Hour).Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)
	_, err = svc.Parse(other)
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	_, err = svc.Parse("not-a-token")
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "1", "role": "superadmin", "exp": time.Now().Add(time.Hour).Unix()})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.Parse(unsigned)
	require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}
