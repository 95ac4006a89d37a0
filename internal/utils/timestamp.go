package utils

import "time"

// ParseTimestampToIsoFormat normalizes a timestamp string to RFC3339. Unix
// epoch seconds are exchanged between services; this is only used for audit
// metadata supplied by callers.
func ParseTimestampToIsoFormat(timestamp string) (string, error) {
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return "", err
	}
	return t.Format(time.RFC3339), nil
}
