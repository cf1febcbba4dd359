package starbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConstellationLifecycle tests create, modify and delete with the
// single-admin invariant
func TestConstellationLifecycle(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	owner := helper.CreateTestUser("const-owner")
	outsider := helper.CreateTestUser("const-outsider")

	t.Run("Create installs exactly one admin", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Andromeda", SharedTypeNonShared)
		assert.NotZero(t, constellation.ID)
		assert.Equal(t, 1, helper.AdminCount(constellation.ID))
		assert.Equal(t, RoleAdmin, helper.MemberRoleOf(constellation.ID, owner.ID))
	})

	t.Run("Create with invalid shared type", func(t *testing.T) {
		_, err := service.CreateConstellation(ctx, owner.Email, "Bad", SharedType("HALF_SHARED"), "")
		require.Error(t, err)
		assert.True(t, IsInvalidRequest(err))
	})

	t.Run("Modify by admin with optional fields", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Before", SharedTypeNonShared)

		name := "After"
		updated, err := service.ModifyConstellation(ctx, constellation.ID, owner.Email, &name, nil, "new description")
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Name)
		assert.Equal(t, SharedTypeNonShared, updated.Shared)
		assert.Equal(t, "new description", updated.Description)

		shared := SharedTypeShared
		updated, err = service.ModifyConstellation(ctx, constellation.ID, owner.Email, nil, &shared, "")
		require.NoError(t, err)
		assert.Equal(t, "After", updated.Name)
		assert.Equal(t, SharedTypeShared, updated.Shared)
		assert.Empty(t, updated.Description)
	})

	t.Run("Modify by non-admin denied", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Locked", SharedTypeShared)

		name := "Hijacked"
		_, err := service.ModifyConstellation(ctx, constellation.ID, outsider.Email, &name, nil, "")
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})

	t.Run("Delete by admin", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Doomed", SharedTypeShared)

		require.NoError(t, service.DeleteConstellation(ctx, constellation.ID, owner.Email))

		_, err := service.ConstellationDetail(ctx, constellation.ID, owner.Email)
		require.Error(t, err)
		assert.True(t, IsNotFound(err))
	})

	t.Run("Delete by non-admin denied", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Safe", SharedTypeShared)

		err := service.DeleteConstellation(ctx, constellation.ID, outsider.Email)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))
	})
}

// TestConstellationDetail tests the visibility gate and the hit counter
func TestConstellationDetail(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	owner := helper.CreateTestUser("cdetail-owner")
	member := helper.CreateTestUser("cdetail-member")
	outsider := helper.CreateTestUser("cdetail-outsider")

	t.Run("Shared is open to anyone and counts hits", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Open Cluster", SharedTypeShared)

		seen, err := service.ConstellationDetail(ctx, constellation.ID, outsider.Email)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seen.Hits)
	})

	t.Run("Non-shared is member-only", func(t *testing.T) {
		constellation := helper.CreateTestConstellation(owner, "Closed Cluster", SharedTypeNonShared)
		require.NoError(t, service.AddConstellationMember(ctx, constellation.ID, member.ID, owner.Email))

		_, err := service.ConstellationDetail(ctx, constellation.ID, outsider.Email)
		require.Error(t, err)
		assert.True(t, IsPermissionDenied(err))

		seen, err := service.ConstellationDetail(ctx, constellation.ID, member.Email)
		require.NoError(t, err)
		// The denied view above must not have counted.
		assert.Equal(t, int64(1), seen.Hits)
	})
}

// TestConstellationListings tests member and per-user constellation listings
func TestConstellationListings(t *testing.T) {
	helper := NewTestDataHelper(t)
	if helper == nil {
		return
	}
	service := helper.GetService()
	ctx := helper.GetContext()

	owner := helper.CreateTestUser("clist-owner")
	viewer := helper.CreateTestUser("clist-viewer")

	shared := helper.CreateTestConstellation(owner, "Public Sky", SharedTypeShared)
	private := helper.CreateTestConstellation(owner, "Private Sky", SharedTypeNonShared)

	contains := func(page Page[Constellation], id int64) bool {
		for _, c := range page.Items {
			if c.ID == id {
				return true
			}
		}
		return false
	}

	t.Run("ListConstellations shows only memberships", func(t *testing.T) {
		page, err := service.ListConstellations(ctx, owner.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, shared.ID))
		assert.True(t, contains(page, private.ID))

		page, err = service.ListConstellations(ctx, viewer.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.False(t, contains(page, shared.ID))
		assert.False(t, contains(page, private.ID))
	})

	t.Run("ListUserConstellations filters non-self to shared", func(t *testing.T) {
		page, err := service.ListUserConstellations(ctx, owner.ID, viewer.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, shared.ID))
		assert.False(t, contains(page, private.ID))

		page, err = service.ListUserConstellations(ctx, owner.ID, owner.Email, NewPageRequest(0).WithSize(MaxPageSize))
		require.NoError(t, err)
		assert.True(t, contains(page, shared.ID))
		assert.True(t, contains(page, private.ID))
	})
}
