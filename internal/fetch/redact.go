package fetch

import (
	"net/url"
	"strings"
)

// sensitiveKeys are query parameter names whose values must never reach logs.
var sensitiveKeys = map[string]struct{}{
	"api_key":       {},
	"apikey":        {},
	"appid":         {},
	"authorization": {},
	"key":           {},
	"password":      {},
	"secret":        {},
	"token":         {},
}

// RedactParams returns a copy of params safe for logging: values of
// sensitive-looking keys are replaced with asterisks of the same length.
func RedactParams(params url.Values) map[string]string {
	if params == nil {
		return nil
	}
	safe := make(map[string]string, len(params))
	for key, values := range params {
		value := strings.Join(values, ",")
		if _, sensitive := sensitiveKeys[strings.ToLower(key)]; sensitive && value != "" {
			safe[key] = strings.Repeat("*", len(value))
		} else {
			safe[key] = value
		}
	}
	return safe
}
