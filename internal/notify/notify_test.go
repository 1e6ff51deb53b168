package notify

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailure_BuildsDangerToast(t *testing.T) {
	c := NewCenter(5)
	Failure(c, errors.New("503 Service Unavailable"))
	Failure(c, nil)

	active := c.Active()
	require.Len(t, active, 1)
	n := active[0]
	assert.Equal(t, VariantDanger, n.Variant)
	assert.Equal(t, ErrorTitle, n.Title)
	assert.Equal(t, "503 Service Unavailable", n.Description)
	assert.True(t, n.Dismissable)
	assert.False(t, n.Timeout)
	assert.NotEmpty(t, n.ID)
}

func TestCenter_LimitDropsOldest(t *testing.T) {
	c := NewCenter(2)
	Success(c, "one")
	Success(c, "two")
	Success(c, "three")

	active := c.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "two", active[0].Title)
	assert.Equal(t, "three", active[1].Title)
}

func TestCenter_DismissAndExpire(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewCenter(5)
	c.now = func() time.Time { return now }

	Success(c, "saved")
	Failure(c, errors.New("boom"))

	now = now.Add(10 * time.Second)
	assert.Equal(t, 1, c.Expire(5*time.Second), "only self-expiring toasts expire")

	active := c.Active()
	require.Len(t, active, 1)
	assert.True(t, c.Dismiss(active[0].ID))
	assert.False(t, c.Dismiss(active[0].ID))
	assert.Empty(t, c.Active())
}

func TestCenter_Subscribe(t *testing.T) {
	c := NewCenter(5)
	var got []string
	unsubscribe := c.Subscribe(func(n Notification) { got = append(got, n.Title) })

	Success(c, "first")
	unsubscribe()
	Success(c, "second")

	assert.Equal(t, []string{"first"}, got)
}
