package settings

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/models"
	"github.com/readloop/readloop/pkg/pace"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// GetSetting returns the raw stored value for a key, or "" when the key is
// unset. Callers that need typed values go through the accessors below, which
// also apply the fallbacks.
func (svc *Service) GetSetting(ctx context.Context, key string) (string, error) {
	setting := &models.Setting{}

	err := svc.db.
		NewSelect().
		Model(setting).
		Where("key = ?", key).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", errors.WithStack(err)
	}

	return setting.Value, nil
}

func (svc *Service) ListSettings(ctx context.Context) ([]*models.Setting, error) {
	list := []*models.Setting{}

	err := svc.db.
		NewSelect().
		Model(&list).
		Order("key ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return list, nil
}

// UpdateSetting upserts a key. All values are stored as strings; validation of
// the shape happens at the edge before this is called.
func (svc *Service) UpdateSetting(ctx context.Context, key, value string) (*models.Setting, error) {
	setting := &models.Setting{
		Key:   key,
		Value: value,
	}

	_, err := svc.db.
		NewInsert().
		Model(setting).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return setting, nil
}

// PacePlan assembles the pace parameters from settings. A missing or mangled
// value falls back to its default rather than failing, so a bad manual edit of
// the settings table can't stop the scheduler.
func (svc *Service) PacePlan(ctx context.Context) (pace.Plan, error) {
	plan := pace.DefaultPlan()

	startPages, err := svc.positiveInt(ctx, models.SettingStartPages, plan.StartPages)
	if err != nil {
		return pace.Plan{}, errors.WithStack(err)
	}
	weeklyIncrement, err := svc.positiveInt(ctx, models.SettingWeeklyIncrement, plan.WeeklyIncrement)
	if err != nil {
		return pace.Plan{}, errors.WithStack(err)
	}
	incrementEvery, err := svc.positiveInt(ctx, models.SettingIncrementEveryDays, plan.IncrementEveryDays)
	if err != nil {
		return pace.Plan{}, errors.WithStack(err)
	}

	plan.StartPages = startPages
	plan.WeeklyIncrement = weeklyIncrement
	plan.IncrementEveryDays = incrementEvery

	return plan, nil
}

// ReminderTime returns the hour and minute of day reminders go out at.
func (svc *Service) ReminderTime(ctx context.Context) (int, int, error) {
	value, err := svc.GetSetting(ctx, models.SettingReminderTime)
	if err != nil {
		return 0, 0, errors.WithStack(err)
	}
	if value == "" {
		value = models.DefaultReminderTime
	}

	parsed, err := time.Parse("15:04", value)
	if err != nil {
		parsed, err = time.Parse("15:04", models.DefaultReminderTime)
		if err != nil {
			return 0, 0, errors.WithStack(err)
		}
	}

	return parsed.Hour(), parsed.Minute(), nil
}

// ChannelID returns the configured delivery channel, or 0 when none is set.
func (svc *Service) ChannelID(ctx context.Context) (int64, error) {
	value, err := svc.GetSetting(ctx, models.SettingChannelID)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	if value == "" {
		return 0, nil
	}

	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		// A mangled stored value must not stop the scheduler; it behaves
		// like an unconfigured channel until fixed. The update endpoint
		// rejects non-integer values.
		return 0, nil
	}

	return id, nil
}

func (svc *Service) positiveInt(ctx context.Context, key string, fallback int) (int, error) {
	value, err := svc.GetSetting(ctx, key)
	if err != nil {
		return 0, errors.WithStack(err)
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return fallback, nil
	}

	return n, nil
}
