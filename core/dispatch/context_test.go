package dispatch_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/appkit/core/dispatch"
)

func TestMetaFromContext(t *testing.T) {
	t.Parallel()

	t.Run("stamped by send", func(t *testing.T) {
		t.Parallel()

		d := dispatch.New()
		svc := &userService{name: "users"}

		var captured dispatch.Meta
		var found bool
		probe := dispatch.ReceiverFunc(func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
			captured, found = dispatch.MetaFromContext(ctx)
			return nil, nil
		})
		require.NoError(t, d.Connect("user.created", probe))

		_, err := d.Send(context.Background(), "user.created", svc, nil)
		require.NoError(t, err)

		require.True(t, found)
		assert.Equal(t, dispatch.Signal("user.created"), captured.Signal)
		assert.Equal(t, svc, captured.Sender)
		assert.False(t, captured.OccurredAt.IsZero())
		_, err = uuid.Parse(captured.ID)
		assert.NoError(t, err, "dispatch ID is a UUID")
	})

	t.Run("absent outside dispatch", func(t *testing.T) {
		t.Parallel()

		_, ok := dispatch.MetaFromContext(context.Background())
		assert.False(t, ok)
	})

	t.Run("distinct per send", func(t *testing.T) {
		t.Parallel()

		d := dispatch.New()
		var ids []string
		probe := dispatch.ReceiverFunc(func(ctx context.Context, sender dispatch.Sender, data dispatch.Data) (any, error) {
			meta, _ := dispatch.MetaFromContext(ctx)
			ids = append(ids, meta.ID)
			return nil, nil
		})
		require.NoError(t, d.Connect("tick", probe))

		_, err := d.Send(context.Background(), "tick", dispatch.Any, nil)
		require.NoError(t, err)
		_, err = d.Send(context.Background(), "tick", dispatch.Any, nil)
		require.NoError(t, err)

		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
	})
}
