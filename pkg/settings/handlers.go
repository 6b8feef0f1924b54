package settings

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/readloop/readloop/pkg/errcodes"
	"github.com/readloop/readloop/pkg/models"
)

type handler struct {
	settingsService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	list, err := h.settingsService.ListSettings(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, list))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.Param("key")
	if !models.ValidSettingKey(key) {
		return errcodes.NotFound("Setting")
	}

	value, err := h.settingsService.GetSetting(ctx, key)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, &models.Setting{Key: key, Value: value}))
}

func (h *handler) update(c echo.Context) error {
	ctx := c.Request().Context()

	key := c.Param("key")
	if !models.ValidSettingKey(key) {
		return errcodes.NotFound("Setting")
	}

	params := UpdateSettingPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if err := validateSettingValue(key, params.Value); err != nil {
		return err
	}

	setting, err := h.settingsService.UpdateSetting(ctx, key, params.Value)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, setting))
}

func validateSettingValue(key, value string) error {
	switch key {
	case models.SettingReminderTime:
		if _, err := time.Parse("15:04", value); err != nil {
			return errcodes.ValidationError("reminder_time must be in HH:MM format")
		}
	case models.SettingChannelID:
		if _, err := strconv.ParseInt(value, 10, 64); err != nil {
			return errcodes.ValidationError("channel_id must be an integer")
		}
	case models.SettingStartPages, models.SettingWeeklyIncrement, models.SettingIncrementEveryDays:
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return errcodes.ValidationError(key + " must be a positive integer")
		}
	}
	return nil
}
