package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	emailRe = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phoneRe = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	ssnRe   = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
)

var sensitiveKeys = map[string]bool{
	"email":       true,
	"phone":       true,
	"phonenumber": true,
	"ssn":         true,
	"taxid":       true,
	"password":    true,
}

var nameKeys = map[string]bool{
	"firstName":   true,
	"lastName":    true,
	"name":        true,
	"displayName": true,
}

// RedactPII masks personal data in decoded JSON values. Sensitive keys are
// replaced entirely, names keep their initial and free text has emails,
// phone numbers and SSNs substituted.
func RedactPII(v interface{}) interface{} {
	switch t := v.(type) {
	case string:
		return redactText(t)
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, item := range t {
			out[i] = RedactPII(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(t))
		for key, value := range t {
			switch s, isString := value.(string); {
			case sensitiveKeys[strings.ToLower(key)]:
				out[key] = "[REDACTED]"
			case nameKeys[key] && isString:
				out[key] = initial(s)
			default:
				out[key] = RedactPII(value)
			}
		}
		return out
	}
	return v
}

func redactText(s string) string {
	s = emailRe.ReplaceAllString(s, "[EMAIL]")
	s = phoneRe.ReplaceAllString(s, "[PHONE]")
	return ssnRe.ReplaceAllString(s, "[SSN]")
}

func initial(s string) string {
	for _, r := range s {
		return string(r) + "***"
	}
	return "***"
}

// safeJSON renders v for a prompt after redaction.
func safeJSON(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	var decoded interface{}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", err
	}
	out, err := json.MarshalIndent(RedactPII(decoded), "", "  ")
	if err != nil {
		return "", err
	}
	return string(out), nil
}
