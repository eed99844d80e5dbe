package api

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewJSON(t *testing.T) {
	type body struct {
		Name  string  `json:"name"`
		Color *int    `json:"color,omitempty"`
		Topic *string `json:"topic,omitempty"`
	}

	color := 0x3498db
	j := NewJSON(body{Name: "AdminOps", Color: &color})
	require.Equal(t, "AdminOps", j["name"])
	require.Contains(t, j, "color")
	require.NotContains(t, j, "topic")

	reader, contentType, err := j.ToReader()
	require.NoError(t, err)
	require.Equal(t, "application/json", contentType)

	raw, err := io.ReadAll(reader)
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"AdminOps","color":3447003}`, string(raw))
}

func TestJSON_GetArray(t *testing.T) {
	body, err := bytesToJSON([]byte(`{
		"id": "1",
		"permission_overwrites": [{"id": "2", "type": 0, "allow": "1024"}],
		"roles": ["3", "4"],
		"user": {"id": "5"}
	}`))
	require.NoError(t, err)

	overwrites, err := body.GetArray("permission_overwrites")
	require.NoError(t, err)
	require.Len(t, overwrites, 1)

	allow, err := overwrites[0].GetString("allow")
	require.NoError(t, err)
	require.Equal(t, "1024", allow)

	roles, err := body.GetStringArray("roles")
	require.NoError(t, err)
	require.Equal(t, []string{"3", "4"}, roles)

	userID, err := body.GetString("user.id")
	require.NoError(t, err)
	require.Equal(t, "5", userID)

	_, err = body.GetArray("id")
	require.Error(t, err)
}
