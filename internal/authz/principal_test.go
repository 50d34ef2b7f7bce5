package authz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithPrincipal_SetOnce(t *testing.T) {
	ctx := context.Background()
	user := Principal{Type: PrincipalTypeUser, Email: "a@nriit.edu.in"}

	ctx, err := WithPrincipal(ctx, user)
	require.NoError(t, err)

	// Same principal is idempotent.
	_, err = WithPrincipal(ctx, user)
	require.NoError(t, err)

	_, err = WithPrincipal(ctx, Principal{Type: PrincipalTypeUser, Email: "b@nriit.edu.in"})
	require.Error(t, err)

	got, ok := GetPrincipal(ctx)
	require.True(t, ok)
	assert.Equal(t, user, got)
}

func TestUserEmail(t *testing.T) {
	email, err := UserEmail(NewUserContext(context.Background(), "a@nriit.edu.in"))
	require.NoError(t, err)
	assert.Equal(t, "a@nriit.edu.in", email)

	_, err = UserEmail(NewSystemContext(context.Background()))
	assert.ErrorIs(t, err, ErrNoPrincipal)

	_, err = UserEmail(context.Background())
	assert.ErrorIs(t, err, ErrNoPrincipal)
}

func TestPrincipal_String(t *testing.T) {
	assert.Equal(t, "user:a@nriit.edu.in", Principal{Type: PrincipalTypeUser, Email: "a@nriit.edu.in"}.String())
	assert.Equal(t, "system", Principal{Type: PrincipalTypeSystem}.String())
	assert.Equal(t, "unknown", Principal{}.String())
}
