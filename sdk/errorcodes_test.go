package sdk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorCodeCatalog(t *testing.T) {
	tests := map[string]ErrorCode{
		"TRANSACTION_ID_IS_INVALID":                         "ATH001",
		"PHONE_VERIFICATION_ALREADY_ATTEMPTED":              "ATH008",
		"OAUTH_SERVER_EXCEPTION":                            "ATH010",
		"USER_IS_NOT_ACTIVE":                                "USR001",
		"USER_ENABLE_ERROR_DISABLED_PARTNER_USER_NOT_FOUND": "USR016",
		"TOS_ACCEPT_ERROR":                                  "USR025",
		"USER_TOKEN_EXPIRED":                                "USR030",
		"INCORRECT_USER_TYPE":                               "USR033",
	}
	for name, want := range tests {
		got, ok := LookupErrorCode(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	_, ok := LookupErrorCode("user_token_expired")
	assert.False(t, ok, "lookup is case sensitive")
}

func TestErrorCodes_Complete(t *testing.T) {
	codes := ErrorCodes()
	assert.Len(t, codes, 43)

	seen := map[ErrorCode]string{}
	for name, code := range codes {
		if other, dup := seen[code]; dup {
			t.Errorf("code %s used by %s and %s", code, name, other)
		}
		seen[code] = name

		back, ok := ErrorCodeName(code)
		assert.True(t, ok)
		assert.Equal(t, name, back)
	}

	codes["NEW"] = "X"
	_, ok := LookupErrorCode("NEW")
	assert.False(t, ok, "ErrorCodes returns a copy")
}

func TestErrorCode_Constants(t *testing.T) {
	assert.Equal(t, "ATH001", CodeTransactionIDIsInvalid.String())
	assert.Equal(t, ErrorCode("USR030"), CodeUserTokenExpired)
	assert.Equal(t, ErrorCode("ATH010"), CodeOAuthServerException)
}
