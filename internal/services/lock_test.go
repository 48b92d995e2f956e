package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker(t *testing.T) {
	ctx := context.Background()
	locker := NewLocalLocker()

	release, err := locker.Acquire(ctx, "analysis:a")
	require.NoError(t, err)

	_, err = locker.Acquire(ctx, "analysis:a")
	assert.ErrorIs(t, err, ErrAnalysisInProgress)

	other, err := locker.Acquire(ctx, "analysis:b")
	require.NoError(t, err)
	other()

	release()
	release()

	again, err := locker.Acquire(ctx, "analysis:a")
	require.NoError(t, err)
	again()
}

func TestLockKeyScopesByUser(t *testing.T) {
	req := AnalysisRequest{UserID: "u1"}
	other := req
	other.UserID = "u2"

	assert.NotEqual(t, req.lockKey(), other.lockKey())
}
