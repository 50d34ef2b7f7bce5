package authz

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/nriit/facultypubs/internal/pkg/xcache"
)

func TestOracle_IsAdministrator(t *testing.T) {
	ctx := context.Background()

	t.Run("case-insensitive lookup", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		lookup.EXPECT().IsAdmin(gomock.Any(), "admin@nriit.edu.in").Return(true, nil)

		oracle := NewOracle(lookup, nil)
		assert.True(t, oracle.IsAdministrator(ctx, " Admin@NRIIT.edu.in "))
	})

	t.Run("lookup failure fails closed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		lookup.EXPECT().IsAdmin(gomock.Any(), "admin@nriit.edu.in").Return(true, errors.New("connection refused"))

		oracle := NewOracle(lookup, nil)
		assert.False(t, oracle.IsAdministrator(ctx, "admin@nriit.edu.in"))
	})

	t.Run("empty email never hits the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)

		oracle := NewOracle(lookup, nil)
		assert.False(t, oracle.IsAdministrator(ctx, "  "))
	})

	t.Run("results are cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		lookup.EXPECT().IsAdmin(gomock.Any(), "a@nriit.edu.in").Return(false, nil).Times(1)

		cache, err := xcache.NewFromConfig[bool](xcache.Config{Mode: xcache.ModeMemory}, nil)
		assert.NoError(t, err)

		oracle := NewOracle(lookup, cache)
		assert.False(t, oracle.IsAdministrator(ctx, "a@nriit.edu.in"))
		assert.False(t, oracle.IsAdministrator(ctx, "A@nriit.edu.in"))
	})

	t.Run("failures are not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		gomock.InOrder(
			lookup.EXPECT().IsAdmin(gomock.Any(), "a@nriit.edu.in").Return(false, errors.New("timeout")),
			lookup.EXPECT().IsAdmin(gomock.Any(), "a@nriit.edu.in").Return(true, nil),
		)

		cache, err := xcache.NewFromConfig[bool](xcache.Config{Mode: xcache.ModeMemory}, nil)
		assert.NoError(t, err)

		oracle := NewOracle(lookup, cache)
		assert.False(t, oracle.IsAdministrator(ctx, "a@nriit.edu.in"))
		assert.True(t, oracle.IsAdministrator(ctx, "a@nriit.edu.in"))
	})
}

func TestOracle_IsAuthorized(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		principal string
		owner     string
		admin     bool
		lookup    bool
		want      bool
	}{
		{name: "owner", principal: "a@nriit.edu.in", owner: "a@nriit.edu.in", want: true},
		{name: "owner match is case-sensitive", principal: "A@nriit.edu.in", owner: "a@nriit.edu.in", lookup: true, want: false},
		{name: "other user", principal: "b@nriit.edu.in", owner: "a@nriit.edu.in", lookup: true, want: false},
		{name: "admin overrides", principal: "b@nriit.edu.in", owner: "a@nriit.edu.in", lookup: true, admin: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			lookup := NewMockAdminLookup(ctrl)

			if tt.lookup {
				lookup.EXPECT().IsAdmin(gomock.Any(), gomock.Any()).Return(tt.admin, nil)
			}

			oracle := NewOracle(lookup, nil)
			assert.Equal(t, tt.want, oracle.IsAuthorized(ctx, tt.principal, tt.owner))
		})
	}
}

func TestOracle_Grant(t *testing.T) {
	ctx := context.Background()

	t.Run("admin grant covers any owner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		lookup.EXPECT().IsAdmin(gomock.Any(), "admin@nriit.edu.in").Return(true, nil).Times(1)

		grant := NewOracle(lookup, nil).Grant(ctx, "admin@nriit.edu.in")
		assert.True(t, grant.IsAuthorized("a@nriit.edu.in"))
		assert.True(t, grant.IsAuthorized("b@nriit.edu.in"))
	})

	t.Run("user grant covers own records only", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		lookup.EXPECT().IsAdmin(gomock.Any(), "a@nriit.edu.in").Return(false, nil).Times(1)

		grant := NewOracle(lookup, nil).Grant(ctx, "a@nriit.edu.in")
		assert.True(t, grant.IsAuthorized("a@nriit.edu.in"))
		assert.False(t, grant.IsAuthorized("A@nriit.edu.in"))
		assert.False(t, grant.IsAuthorized("b@nriit.edu.in"))
	})

	t.Run("failed lookup denies", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		lookup := NewMockAdminLookup(ctrl)
		lookup.EXPECT().IsAdmin(gomock.Any(), "b@nriit.edu.in").Return(true, errors.New("connection refused"))

		grant := NewOracle(lookup, nil).Grant(ctx, "b@nriit.edu.in")
		assert.False(t, grant.IsAuthorized("a@nriit.edu.in"))
	})
}
