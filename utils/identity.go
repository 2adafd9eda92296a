package utils

import (
	"fmt"
	"strings"
	"time"

	"medisafe/models"
)

// DeletedTimestampLayout is the timestamp embedded in a mangled identity.
const DeletedTimestampLayout = "20060102_150405"

// MangleIdentity rewrites an identity value for soft deletion:
// deleted_<YYYYMMDD_HHMMSS>_<original>. The original value is freed for reuse
// while the row itself is retained.
func MangleIdentity(original string, at time.Time) string {
	return fmt.Sprintf("%s%s_%s", models.DeletedPrefix, at.Format(DeletedTimestampLayout), original)
}

// UnmangleIdentity recovers the pre-deletion value from a mangled identity.
// The mangled form splits on "_" into at most four parts
// (deleted, YYYYMMDD, HHMMSS, original); the fourth part is the original.
// ok is false when the value does not carry enough segments to parse, in
// which case the caller must synthesize a fallback identifier.
//
// Multi-generation delete/restore cycles can append further timestamp
// segments and corrupt the parse back to the first-generation identity; the
// parse recovers whatever the fourth segment holds.
func UnmangleIdentity(mangled string) (original string, ok bool) {
	parts := strings.SplitN(mangled, "_", 4)
	if len(parts) < 4 {
		return "", false
	}
	return parts[3], true
}

// FallbackUsername is the synthesized username for a restore whose mangled
// form could not be parsed.
func FallbackUsername(userID int64) string {
	return fmt.Sprintf("restored_user_%d", userID)
}

// FallbackEmail is the synthesized email for a restore whose mangled form
// could not be parsed.
func FallbackEmail(userID int64) string {
	return fmt.Sprintf("restored_%d@restored.local", userID)
}

// DisambiguateUsername appends a date suffix when a restored username
// collides with a different live account.
func DisambiguateUsername(username string, at time.Time) string {
	return fmt.Sprintf("%s_restored_%s", username, at.Format("20060102"))
}

// DisambiguateEmail prefixes a timestamp when a restored email collides with
// a different live account.
func DisambiguateEmail(email string, at time.Time) string {
	return fmt.Sprintf("restored_%s_%s", at.Format(DeletedTimestampLayout), email)
}
