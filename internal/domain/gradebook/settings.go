package gradebook

import "sort"

// Keys a user's settings object may contain.
const (
	SettingPreviousNotification = "previous_notification"
	SettingTour                 = "tour"
	SettingRedirectFromHome     = "redirectFromHome"
)

var knownSettings = map[string]struct{}{
	SettingPreviousNotification: {},
	SettingTour:                 {},
	SettingRedirectFromHome:     {},
}

// IsKnownSetting reports whether key is an allowed settings key.
func IsKnownSetting(key string) bool {
	_, ok := knownSettings[key]
	return ok
}

// KnownSettings returns the allowed settings keys, sorted.
func KnownSettings() []string {
	keys := make([]string, 0, len(knownSettings))
	for k := range knownSettings {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
