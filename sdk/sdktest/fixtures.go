package sdktest

// Envelope builds a DandB response envelope with results.
func Envelope(code int, results interface{}) map[string]interface{} {
	return map[string]interface{}{
		"meta":     map[string]interface{}{"code": code},
		"response": map[string]interface{}{"results": results},
	}
}

// ErrorEnvelope builds a failed envelope with an error code and messages.
func ErrorEnvelope(code int, errorCode string, messages ...string) map[string]interface{} {
	errs := make([]interface{}, 0, len(messages))
	for _, m := range messages {
		errs = append(errs, m)
	}
	return map[string]interface{}{
		"meta":  map[string]interface{}{"code": code, "error_code": errorCode},
		"error": errs,
	}
}

// SampleBusiness is a search result as returned by /v1/business/search.
var SampleBusiness = map[string]interface{}{
	"duns":    "007280554",
	"name":    "Acme Widgets Inc",
	"address": "100 Main St",
	"city":    "Malibu",
	"state":   "CA",
	"zip":     "90265",
}

// SampleUserToken is a /v1/user/token result.
var SampleUserToken = map[string]interface{}{
	"user_token":    "ut-123",
	"refresh_token": "rt-456",
	"expires_in":    3600,
}
