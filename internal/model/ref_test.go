package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRefUnmarshalBareString(t *testing.T) {
	var ref Ref
	require.NoError(t, json.Unmarshal([]byte(`"u1"`), &ref))

	assert.Equal(t, "u1", ref.Key())
	assert.False(t, ref.Resolved())
}

func TestRefUnmarshalObject(t *testing.T) {
	var ref Ref
	require.NoError(t, json.Unmarshal([]byte(`{"_id": "u1", "name": "Fade Factory"}`), &ref))

	assert.Equal(t, "u1", ref.Key())
	assert.Equal(t, "Fade Factory", ref.Name)
	assert.True(t, ref.Resolved())
}

func TestRefUnmarshalObjectWithPlainIDField(t *testing.T) {
	var ref Ref
	require.NoError(t, json.Unmarshal([]byte(`{"id": "u2"}`), &ref))

	assert.Equal(t, "u2", ref.Key())
}

func TestRefKeyMatchesAcrossRepresentations(t *testing.T) {
	var bare, nested Ref
	require.NoError(t, json.Unmarshal([]byte(`"u1"`), &bare))
	require.NoError(t, json.Unmarshal([]byte(`{"_id": "u1", "name": "Someone"}`), &nested))

	assert.Equal(t, bare.Key(), nested.Key())
}

func TestRefUnmarshalRejectsGarbage(t *testing.T) {
	var ref Ref
	assert.Error(t, json.Unmarshal([]byte(`42`), &ref))
}

func TestRefMarshalBareUnlessResolved(t *testing.T) {
	raw, err := json.Marshal(NewRef("u1"))
	require.NoError(t, err)
	assert.JSONEq(t, `"u1"`, string(raw))

	raw, err = json.Marshal(ResolvedRef("u1", "Fade Factory"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"_id": "u1", "name": "Fade Factory"}`, string(raw))
}

func TestRefScanAndValueRoundTrip(t *testing.T) {
	v, err := ResolvedRef("u1", "display only").Value()
	require.NoError(t, err)
	assert.Equal(t, "u1", v, "resolved names must not reach storage")

	var ref Ref
	require.NoError(t, ref.Scan("u1"))
	assert.Equal(t, "u1", ref.Key())
	assert.False(t, ref.Resolved())
}

func TestRefIsZero(t *testing.T) {
	assert.True(t, Ref{}.IsZero())
	assert.False(t, NewRef("u1").IsZero())
}
