package memory

import (
	"context"
	"testing"
	"time"

	"petpal/internal/ports/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	st := NewStore().WithClock(func() time.Time { return now })

	require.NoError(t, st.Save(ctx, session.Session{ID: "s-1", Token: "tok", UserID: "u-1", ExpiresAt: base.Add(time.Hour)}))

	got, err := st.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)

	require.NoError(t, st.Delete(ctx, "s-1"))
	_, err = st.Get(ctx, "s-1")
	assert.ErrorIs(t, err, session.ErrNotFound)

	// borrar algo que no existe no es error
	assert.NoError(t, st.Delete(ctx, "s-1"))
}

func TestStore_Expiry(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	now := base
	st := NewStore().WithClock(func() time.Time { return now })

	require.NoError(t, st.Save(ctx, session.Session{ID: "s-1", ExpiresAt: base.Add(time.Hour)}))

	now = base.Add(time.Hour)
	_, err := st.Get(ctx, "s-1")
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestStore_RequiresID(t *testing.T) {
	assert.Error(t, NewStore().Save(context.Background(), session.Session{}))
}
