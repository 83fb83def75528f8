package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestConditions(t *testing.T) {
	owner := uuid.MustParse("11111111-1111-1111-1111-111111111111")

	t.Run("owned active only", func(t *testing.T) {
		sql, args := Owned(owner).Conditions("user_id", "deleted_at", 3)
		assert.Equal(t, "user_id = $3 AND deleted_at IS NULL", sql)
		assert.Equal(t, []any{owner}, args)
	})

	t.Run("owned deleted only", func(t *testing.T) {
		sql, args := Owned(owner).Deleted(DeletedOnly).Conditions("t.user_id", "t.deleted_at", 1)
		assert.Equal(t, "t.user_id = $1 AND t.deleted_at IS NOT NULL", sql)
		assert.Len(t, args, 1)
	})

	t.Run("admin with deleted has no predicates", func(t *testing.T) {
		sql, args := Unrestricted().Deleted(WithDeleted).Conditions("user_id", "deleted_at", 1)
		assert.Equal(t, "TRUE", sql)
		assert.Empty(t, args)
	})

	t.Run("admin active only", func(t *testing.T) {
		sql, args := Unrestricted().Conditions("user_id", "deleted_at", 1)
		assert.Equal(t, "deleted_at IS NULL", sql)
		assert.Empty(t, args)
	})
}

func TestAllows(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	assert.True(t, Owned(owner).Allows(owner))
	assert.False(t, Owned(owner).Allows(other))
	assert.True(t, Unrestricted().Allows(other))
}
