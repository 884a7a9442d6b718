package postbus_test

import (
	"testing"
	"time"

	"github.com/domonda/go-types/notnull"
	"github.com/domonda/go-types/nullable"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postbus/go-postbus"
)

func TestNewItem(t *testing.T) {
	t.Run("JSON string payload", func(t *testing.T) {
		// given
		payload := `{"amount":42}`

		// when
		item, err := postbus.NewItem("invoice.created", "billing", payload, nullable.TimeNow())

		// then
		require.NoError(t, err)
		assert.Equal(t, "invoice.created", item.Event)
		assert.Equal(t, "billing", item.Queue)
		assert.NotEmpty(t, item.Tid, "generated Tid")
		assert.Equal(t, notnull.JSON(payload), item.Payload)
		assert.False(t, item.Created.IsZero())
		assert.True(t, item.IsPending())
	})

	t.Run("struct payload is marshalled", func(t *testing.T) {
		// given
		payload := struct {
			Amount int `json:"amount"`
		}{Amount: 42}

		// when
		item, err := postbus.NewItem("invoice.created", "billing", payload, nullable.TimeNow())

		// then
		require.NoError(t, err)
		assert.JSONEq(t, `{"amount":42}`, string(item.Payload))
	})

	t.Run("byte slice payload", func(t *testing.T) {
		item, err := postbus.NewItem("invoice.created", "billing", []byte(`[1,2,3]`), nullable.TimeNow())
		require.NoError(t, err)
		assert.Equal(t, notnull.JSON(`[1,2,3]`), item.Payload)
	})

	t.Run("invalid JSON string payload", func(t *testing.T) {
		_, err := postbus.NewItem("invoice.created", "billing", `{invalid`, nullable.TimeNow())
		require.Error(t, err)
	})

	t.Run("empty event name", func(t *testing.T) {
		_, err := postbus.NewItem("", "billing", `{}`, nullable.TimeNow())
		require.EqualError(t, err, "empty event name")
	})

	t.Run("empty queue name", func(t *testing.T) {
		_, err := postbus.NewItem("invoice.created", "", `{}`, nullable.TimeNow())
		require.EqualError(t, err, "empty queue name")
	})

	t.Run("nil payload", func(t *testing.T) {
		_, err := postbus.NewItem("invoice.created", "billing", nil, nullable.TimeNow())
		require.EqualError(t, err, "nil item payload")
	})

	t.Run("null when parks the item", func(t *testing.T) {
		item, err := postbus.NewItem("invoice.created", "billing", `{}`, nullable.Time{})
		require.NoError(t, err)
		assert.False(t, item.IsPending())
		assert.False(t, item.IsClaimed())
	})
}

func TestNewItemWithTid(t *testing.T) {
	item, err := postbus.NewItemWithTid("invoice.created", "billing", "trace-1", `{}`, nullable.TimeNow())
	require.NoError(t, err)
	assert.Equal(t, "trace-1", item.Tid)
}

func TestItemState(t *testing.T) {
	t.Run("nil receiver", func(t *testing.T) {
		var item *postbus.Item
		assert.False(t, item.IsPending())
		assert.False(t, item.IsClaimed())
		assert.Equal(t, "nil Item", item.String())
	})

	t.Run("claimed item", func(t *testing.T) {
		item, err := postbus.NewItem("invoice.created", "billing", `{}`, nullable.TimeNow())
		require.NoError(t, err)

		item.When = nullable.Time{}
		item.Done.Set(time.Now())

		assert.False(t, item.IsPending())
		assert.True(t, item.IsClaimed())
	})
}
