package apikey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScope(t *testing.T) {
	tests := []struct {
		raw     string
		want    Scope
		wantErr bool
	}{
		{raw: "read", want: Scope{Action: "read"}},
		{raw: "read:upload", want: Scope{Action: "read", Resource: "upload"}},
		{raw: "read:*", want: Scope{Action: "read", Wildcard: true}},
		{raw: "read:upload:*", want: Scope{Action: "read", Resource: "upload", Wildcard: true}},
		{raw: "*", want: Scope{Wildcard: true}},
		{raw: "  read  ", want: Scope{Action: "read"}},
		{raw: "", wantErr: true},
		{raw: "   ", wantErr: true},
		{raw: "read upload", wantErr: true},
		{raw: "re*ad", wantErr: true},
		{raw: "*:upload", wantErr: true},
		{raw: ":upload", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			scope, err := ParseScope(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidScope)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, scope)
		})
	}
}

func TestScopeString(t *testing.T) {
	for _, raw := range []string{"read", "read:upload", "read:*", "read:upload:*", "*"} {
		scope, err := ParseScope(raw)
		require.NoError(t, err)
		assert.Equal(t, raw, scope.String())
	}
}

func TestMatchAny(t *testing.T) {
	tests := []struct {
		name      string
		granted   []string
		requested string
		want      bool
	}{
		{name: "exact match", granted: []string{"read:upload"}, requested: "read:upload", want: true},
		{name: "exact mismatch", granted: []string{"read:upload"}, requested: "read:download", want: false},
		{name: "wildcard covers resource", granted: []string{"read:*"}, requested: "read:upload", want: true},
		{name: "wildcard covers nested resource", granted: []string{"read:*"}, requested: "read:x:y", want: true},
		{name: "wildcard wrong action", granted: []string{"read:*"}, requested: "write:upload", want: false},
		{name: "wildcard does not cover bare action", granted: []string{"read:*"}, requested: "read", want: false},
		{name: "prefix stops at separator", granted: []string{"read:*"}, requested: "readx:upload", want: false},
		{name: "global wildcard covers everything", granted: []string{"*"}, requested: "write:delete", want: true},
		{name: "empty grant list denies", granted: []string{}, requested: "read:upload", want: false},
		{name: "any grant suffices", granted: []string{"write:upload", "read:*"}, requested: "read:upload", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			granted, err := ParseScopes(tt.granted)
			require.NoError(t, err)
			requested, err := ParseScope(tt.requested)
			require.NoError(t, err)

			assert.Equal(t, tt.want, MatchAny(granted, requested))
		})
	}
}
