package settings

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalList_AddDeduplicatesInOrder(t *testing.T) {
	var l OptionalList
	assert.False(t, l.Present())

	added := l.Add("b", "a", "b", "c", "a")
	assert.Equal(t, 3, added)
	assert.True(t, l.Present())
	assert.Equal(t, []string{"b", "a", "c"}, l.Items())

	assert.Equal(t, 0, l.Add("a"))
	assert.Equal(t, 3, l.Len())
}

func TestOptionalList_AddNothingStillPresent(t *testing.T) {
	var l OptionalList
	l.Add()
	assert.True(t, l.Present())

	data, err := json.Marshal(l)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestOptionalList_Remove(t *testing.T) {
	l := NewList("a", "b", "c")
	assert.Equal(t, 2, l.Remove("a", "c", "zzz"))
	assert.Equal(t, []string{"b"}, l.Items())
	assert.True(t, l.Present())

	assert.Equal(t, 0, l.Remove("zzz"))
}

func TestOptionalList_Clear(t *testing.T) {
	l := NewList("a")
	l.Clear()
	assert.False(t, l.Present())
	assert.True(t, l.IsZero())
	assert.Nil(t, l.Items())
}

func TestOptionalList_UnmarshalNullIsAbsent(t *testing.T) {
	var st Settings
	require.NoError(t, json.Unmarshal([]byte(`{"enabledMcpjsonServers": null, "disabledMcpjsonServers": []}`), &st))
	assert.False(t, st.Enabled.Present())
	assert.True(t, st.Disabled.Present())
	assert.Equal(t, 0, st.Disabled.Len())
}

func TestOptionalList_ItemsReturnsCopy(t *testing.T) {
	l := NewList("a", "b")
	items := l.Items()
	items[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, l.Items())
}
