package settings

// UpdateSettingPayload is the request body for updating a setting.
type UpdateSettingPayload struct {
	Value string `json:"value" validate:"required,max=255"`
}
