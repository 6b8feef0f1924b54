package models

import "github.com/uptrace/bun"

// Runtime setting keys. These live in the database rather than the config file
// so they can be changed without a restart.
const (
	SettingReminderTime       = "reminder_time"
	SettingChannelID          = "channel_id"
	SettingStartPages         = "start_pages"
	SettingWeeklyIncrement    = "weekly_increment"
	SettingIncrementEveryDays = "increment_every_days"
)

// DefaultReminderTime is used when the reminder_time setting is unset or
// unparseable.
const DefaultReminderTime = "08:00"

// SettingKeys returns all recognized setting keys.
func SettingKeys() []string {
	return []string{
		SettingReminderTime,
		SettingChannelID,
		SettingStartPages,
		SettingWeeklyIncrement,
		SettingIncrementEveryDays,
	}
}

// ValidSettingKey returns true if the key is recognized.
func ValidSettingKey(key string) bool {
	for _, valid := range SettingKeys() {
		if key == valid {
			return true
		}
	}
	return false
}

type Setting struct {
	bun.BaseModel `bun:"table:settings,alias:s"`

	Key   string `bun:",pk" json:"key"`
	Value string `bun:",nullzero" json:"value"`
}
