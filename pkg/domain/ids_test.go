package domain

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "onboard/pkg/domain-errors"
)

// TestParseID_TrustBoundary validates the parsing invariant: IDs must be
// valid, non-empty, non-nil UUIDs.
func TestParseID_TrustBoundary(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"empty string", "", true},
		{"not a uuid", "not-a-uuid", true},
		{"nil uuid", uuid.Nil.String(), true},
		{"sql injection attempt", "'; DROP TABLE identities;--", true},
		{"null byte injection", "550e8400\x00-e29b-41d4-a716-446655440000", true},
		{"oversized input", strings.Repeat("a", 1000), true},
		{"uppercase valid uuid", "550E8400-E29B-41D4-A716-446655440000", false},
		{"lowercase valid uuid", "550e8400-e29b-41d4-a716-446655440000", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIdentityID(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

// TestAllIDTypes_ConsistentBehavior ensures every ID type parses identically.
func TestAllIDTypes_ConsistentBehavior(t *testing.T) {
	validUUID := uuid.New().String()
	invalidInputs := []string{"", "invalid", uuid.Nil.String()}

	t.Run("all accept valid UUID", func(t *testing.T) {
		_, errIdentity := ParseIdentityID(validUUID)
		_, errAccount := ParseAccountID(validUUID)
		_, errCredential := ParseCredentialID(validUUID)

		require.NoError(t, errIdentity)
		require.NoError(t, errAccount)
		require.NoError(t, errCredential)
	})

	for _, input := range invalidInputs {
		t.Run("all reject: "+input, func(t *testing.T) {
			_, errIdentity := ParseIdentityID(input)
			_, errAccount := ParseAccountID(input)
			_, errCredential := ParseCredentialID(input)

			require.Error(t, errIdentity)
			require.Error(t, errAccount)
			require.Error(t, errCredential)
		})
	}
}

// TestJSONWireShape pins the API contract: typed IDs serialize as canonical
// UUID strings, not as raw byte arrays.
func TestJSONWireShape(t *testing.T) {
	type payload struct {
		IdentityID   IdentityID    `json:"identityId"`
		AccountID    *AccountID    `json:"accountId,omitempty"`
		CredentialID *CredentialID `json:"credentialId,omitempty"`
	}

	identityID := NewIdentityID()
	accountID := NewAccountID()

	data, err := json.Marshal(payload{IdentityID: identityID, AccountID: &accountID})
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, identityID.String(), wire["identityId"])
	assert.Equal(t, accountID.String(), wire["accountId"])
	assert.NotContains(t, wire, "credentialId")

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, identityID, decoded.IdentityID)
	require.NotNil(t, decoded.AccountID)
	assert.Equal(t, accountID, *decoded.AccountID)

	t.Run("rejects malformed text", func(t *testing.T) {
		var decoded payload
		err := json.Unmarshal([]byte(`{"identityId":"not-a-uuid"}`), &decoded)
		require.Error(t, err)
	})
}

func TestIsNilAndString(t *testing.T) {
	var zero IdentityID
	assert.True(t, zero.IsNil())

	identityID := NewIdentityID()
	assert.False(t, identityID.IsNil())
	assert.Equal(t, identityID.String(), uuid.UUID(identityID).String())

	parsed, err := ParseIdentityID(identityID.String())
	require.NoError(t, err)
	assert.Equal(t, identityID, parsed)
}
