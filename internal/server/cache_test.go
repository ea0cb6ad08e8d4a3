package server

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportCache(t *testing.T) {
	t.Parallel()

	t.Run("stores and returns entries", func(t *testing.T) {
		t.Parallel()

		rc, err := newReportCache(time.Minute)
		require.NoError(t, err)
		t.Cleanup(func() { _ = rc.close() })

		key := reportKey("acme", 7)
		assert.Equal(t, "report/acme/7", key)

		_, ok := rc.get(key)
		assert.False(t, ok)

		require.NoError(t, rc.set(key, []byte(`{"scanId":7}`)))
		data, ok := rc.get(key)
		require.True(t, ok)
		assert.JSONEq(t, `{"scanId":7}`, string(data))
		assert.Equal(t, 1, rc.len())
	})

	t.Run("stores reports of several megabytes", func(t *testing.T) {
		t.Parallel()

		rc, err := newReportCache(time.Minute)
		require.NoError(t, err)
		t.Cleanup(func() { _ = rc.close() })

		big := bytes.Repeat([]byte("x"), 6<<20)
		require.NoError(t, rc.set("big", big))
		data, ok := rc.get("big")
		require.True(t, ok)
		assert.Len(t, data, len(big))
	})

	t.Run("rejects reports above the limit", func(t *testing.T) {
		t.Parallel()

		rc, err := newReportCache(time.Minute)
		require.NoError(t, err)
		t.Cleanup(func() { _ = rc.close() })

		err = rc.set("huge", make([]byte, maxCachedReportBytes+1))
		require.ErrorIs(t, err, errReportTooLarge)
		_, ok := rc.get("huge")
		assert.False(t, ok)
	})

	t.Run("zero ttl disables caching", func(t *testing.T) {
		t.Parallel()

		rc, err := newReportCache(0)
		require.NoError(t, err)
		assert.Nil(t, rc)

		require.NoError(t, rc.set("k", []byte("v")))
		_, ok := rc.get("k")
		assert.False(t, ok)
		assert.Equal(t, 0, rc.len())
		assert.NoError(t, rc.close())
	})
}
