package importer

import (
	"sort"
	"time"

	"github.com/gradebook/importer/internal/domain/gradebook"
	"github.com/gradebook/importer/internal/domain/shared"
	"github.com/gradebook/importer/pkg/timeutil"
)

// ValidateUser checks the user's settings against the whitelist and backfills
// created_at / updated_at. It mutates user in place. Both timestamps, when
// missing, receive the same value derived from now.
func ValidateUser(user gradebook.User, now time.Time) error {
	if user == nil {
		return shared.NewValidationError("Export has no user")
	}

	settings, err := Coerce(user.Settings(), "settings")
	if err != nil {
		return err
	}

	keys, ok := settings.Value().(map[string]any)
	if !ok {
		return shared.NewValidationError("Settings must be an object")
	}

	// Decoded objects lose key order, so the first unknown key in sorted
	// order is reported.
	for _, key := range sortedKeys(keys) {
		if !gradebook.IsKnownSetting(key) {
			return shared.NewValidationErrorf("Unknown setting: %s", key)
		}
	}

	stamp := timeutil.ExportTimestamp(now)

	if !user.HasValue("created_at") {
		user["created_at"] = stamp
	}

	if !user.HasValue("updated_at") {
		user["updated_at"] = stamp
	}

	return nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
