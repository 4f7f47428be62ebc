package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftCardID(t *testing.T) {
	id := NewDraftCardID()

	assert.True(t, id.IsDraft())
	assert.Empty(t, id.String())
	assert.False(t, id.Equals(NewDraftCardID()), "two drafts are never the same card")
}

func TestAssignIdentity(t *testing.T) {
	draft := NewDraftCardID()
	assigned := draft.AssignIdentity()

	assert.False(t, assigned.IsDraft())
	assert.NotEmpty(t, assigned.String())
	assert.True(t, draft.IsDraft(), "value object is immutable")

	again := assigned.AssignIdentity()
	assert.True(t, assigned.Equals(again), "assigning twice keeps the identity")
}

func TestPersistedCardID(t *testing.T) {
	assigned := NewDraftCardID().AssignIdentity()

	parsed, err := PersistedCardID(assigned.String())
	require.NoError(t, err)
	assert.True(t, parsed.Equals(assigned))

	_, err = PersistedCardID("")
	assert.Error(t, err)

	_, err = PersistedCardID("not-a-uuid")
	assert.Error(t, err)
}

func TestCardIDJSONRoundTrip(t *testing.T) {
	assigned := NewDraftCardID().AssignIdentity()

	data, err := json.Marshal(assigned)
	require.NoError(t, err)

	var decoded CardID
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(assigned))

	draftData, err := json.Marshal(NewDraftCardID())
	require.NoError(t, err)
	assert.Equal(t, "null", string(draftData))
}
