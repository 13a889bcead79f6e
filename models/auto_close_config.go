package models

import (
	"fmt"
	"strings"
	"time"
)

// AutoCloseConfig é a configuração por tenant do encerramento automático.
type AutoCloseConfig struct {
	ID                  string     `gorm:"primary_key;type:varchar(36)" json:"id"`
	TenantID            string     `gorm:"column:tenant_id;not null;unique_index" json:"tenant_id"`
	Enabled             bool       `gorm:"not null" json:"enabled"`
	BotIdleMinutes      int        `gorm:"column:bot_idle_minutes;not null" json:"bot_idle_minutes"`
	AssignedIdleMinutes int        `gorm:"column:assigned_idle_minutes;not null" json:"assigned_idle_minutes"`
	BusinessHoursOnly   bool       `gorm:"column:business_hours_only;not null" json:"business_hours_only"`
	BusinessHoursStart  string     `gorm:"column:business_hours_start;default:'08:00'" json:"business_hours_start"`
	BusinessHoursEnd    string     `gorm:"column:business_hours_end;default:'18:00'" json:"business_hours_end"`
	ClosingMessage      string     `gorm:"column:closing_message;type:text" json:"closing_message"`
	SurveyEnabled       bool       `gorm:"column:survey_enabled;not null" json:"survey_enabled"`
	SurveyMessage       string     `gorm:"column:survey_message;type:text" json:"survey_message"`
	SurveyOnAutoClose   bool       `gorm:"column:survey_on_auto_close;not null" json:"survey_on_auto_close"`
	CreatedAt           *time.Time `json:"created_at"`
	UpdatedAt           *time.Time `json:"updated_at"`
}

// SendsSurvey reports whether the survey accompanies an auto-close.
func (c AutoCloseConfig) SendsSurvey() bool {
	return c.SurveyEnabled && c.SurveyOnAutoClose && strings.TrimSpace(c.SurveyMessage) != ""
}

// WithinBusinessHours compares now, shifted by a fixed UTC offset, to [start,end].
// A start after end wraps past midnight.
func (c AutoCloseConfig) WithinBusinessHours(now time.Time, offsetHours int) (bool, error) {
	start, err := minuteOfDay(c.BusinessHoursStart)
	if err != nil {
		return false, err
	}
	end, err := minuteOfDay(c.BusinessHoursEnd)
	if err != nil {
		return false, err
	}
	local := now.UTC().Add(time.Duration(offsetHours) * time.Hour)
	current := local.Hour()*60 + local.Minute()
	if start > end {
		// janela que cruza a meia-noite, ex. 22:00-06:00
		return current >= start || current <= end, nil
	}
	return current >= start && current <= end, nil
}

func minuteOfDay(hhmm string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return 0, fmt.Errorf("horário inválido %q: %w", hhmm, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
