package publish

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/hcl/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSnapshot(t *testing.T) {
	// --- Arrange ---
	diags := hcl.Diagnostics{
		{
			Severity: hcl.DiagWarning,
			Summary:  "Duplicate property",
			Subject:  &hcl.Range{Filename: "a.bp", Start: hcl.Pos{Line: 3, Column: 5}},
			Extra:    "duplicate-property",
		},
		{Severity: hcl.DiagError, Summary: "Unclosed block"},
	}

	// --- Act ---
	snap := NewSnapshot(2, diags)
	payload, err := snap.Payload()

	// --- Assert ---
	require.NoError(t, err)
	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err)
	assert.NotEqual(t, snap.ID, NewSnapshot(2, diags).ID)

	assert.Equal(t, snap.ID, payload["id"])
	assert.Equal(t, float64(2), payload["files"])
	assert.Equal(t, float64(1), payload["errors"])
	assert.Equal(t, float64(1), payload["warnings"])
	entries, ok := payload["diagnostics"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, "warning", first["severity"])
	assert.Equal(t, "duplicate-property", first["rule"])
	assert.Equal(t, "a.bp", first["file"])
	assert.Equal(t, float64(3), first["line"])
	assert.NotContains(t, entries[1].(map[string]any), "file")
}

func TestDial_InvalidURL(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{name: "unparsable", url: "http://[::1", want: "failed to parse publish URL"},
		{name: "relative", url: "/socket.io", want: "must be absolute"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Dial(context.Background(), tc.url, Options{})
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestDial_NoServer(t *testing.T) {
	// Reserve a port and release it so nothing listens there.
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err = Dial(ctx, "http://"+addr+"/", Options{ConnectTimeout: time.Second})

	assert.Error(t, err)
}
