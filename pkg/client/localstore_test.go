package client

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStore_SaveLoadClear(t *testing.T) {
	store, err := OpenLocalStore(t.TempDir())
	require.NoError(t, err)

	type bill struct {
		Vendor string `json:"vendor"`
		Amount string `json:"amount"`
	}
	bills := []bill{{Vendor: "Acme", Amount: "120.00"}, {Vendor: "Globex", Amount: "80.50"}}
	require.NoError(t, store.Save(KeyBills, bills))
	require.NoError(t, store.Save(KeyChartOfAccount, []string{"Cash", "Sales"}))

	var got []bill
	found, err := store.Load(KeyBills, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, bills, got)

	// whole-array replace
	require.NoError(t, store.Save(KeyBills, bills[:1]))
	found, err = store.Load(KeyBills, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Len(t, got, 1)

	require.NoError(t, store.Clear())
	var accounts []string
	found, err = store.Load(KeyChartOfAccount, &accounts)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalStore_RejectsPathKeys(t *testing.T) {
	store, err := OpenLocalStore(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"", "../escape", `a\b`, ".hidden"} {
		assert.Error(t, store.Save(key, 1), key)
	}
}

func TestSession_InitLoadsSavedTokens(t *testing.T) {
	dir := t.TempDir()
	store, err := OpenLocalStore(dir)
	require.NoError(t, err)
	require.NoError(t, NewSession(store).SetTokens("a1", "r1"))

	reopened, err := OpenLocalStore(dir)
	require.NoError(t, err)
	session := NewSession(reopened)
	require.NoError(t, session.Init())

	access, refresh := session.Tokens()
	assert.Equal(t, "a1", access)
	assert.Equal(t, "r1", refresh)

	require.NoError(t, session.Teardown())
	assert.False(t, session.Authenticated())
	found, err := reopened.Load(KeyAccessToken, new(string))
	require.NoError(t, err)
	assert.False(t, found)
}

func TestHandoff_TakeIsOneShot(t *testing.T) {
	h := NewHandoff()
	h.Set(SignalFormSuccess, "DC-001")

	v, ok := h.Peek(SignalFormSuccess)
	assert.True(t, ok)
	assert.Equal(t, "DC-001", v)

	v, ok = h.Take(SignalFormSuccess)
	assert.True(t, ok)
	assert.Equal(t, "DC-001", v)

	_, ok = h.Take(SignalFormSuccess)
	assert.False(t, ok)
	_, ok = h.Take(SignalReturnAfterCustomer)
	assert.False(t, ok)
}
