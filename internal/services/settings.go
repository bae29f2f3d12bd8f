package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"fieldforce-system/internal/access"
	"fieldforce-system/internal/cache"
	"fieldforce-system/internal/database"
	"fieldforce-system/internal/database/models"
)

// defaultShiftStart applies when the stored working hours cannot be read.
const defaultShiftStart = 9 * 60

type SettingsService struct {
	*Deps
}

type SettingsUpdate struct {
	EmailNotifications    *bool   `json:"email_notifications"`
	SMSNotifications      *bool   `json:"sms_notifications"`
	AutoApproveAttendance *bool   `json:"auto_approve_attendance"`
	RequireFingerprint    *bool   `json:"require_fingerprint"`
	WorkingHours          *string `json:"working_hours"`
	Timezone              *string `json:"timezone"`
}

type ProfileUpdate struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Bio     *string `json:"bio"`
}

// settings returns the stored company settings, or the defaults when none
// were saved yet.
func (d *Deps) settings(ctx context.Context) models.SystemSettings {
	var st models.SystemSettings
	if d.Cache.Get(ctx, cache.SETTINGS_CACHE_KEY, &st) {
		return st
	}
	st, err := d.Store.GetSettings(ctx)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			log.Printf("Failed to load settings, using defaults: %v", err)
		}
		return models.DefaultSettings()
	}
	d.Cache.Set(ctx, cache.SETTINGS_CACHE_KEY, st, cache.CACHE_TTL_MEDIUM)
	return st
}

// shiftStart is the minute of the day after which a check-in is late.
func (d *Deps) shiftStart(ctx context.Context) int {
	start, _, err := d.settings(ctx).Shift()
	if err != nil {
		return defaultShiftStart
	}
	return start
}

func (s *SettingsService) Get(ctx context.Context, actor models.User) (models.SystemSettings, error) {
	if err := access.Check(access.ManageSettings, actor, 0); err != nil {
		return models.SystemSettings{}, err
	}
	return s.settings(ctx), nil
}

func (s *SettingsService) Update(ctx context.Context, actor models.User, in SettingsUpdate) (models.SystemSettings, error) {
	if err := access.Check(access.ManageSettings, actor, 0); err != nil {
		return models.SystemSettings{}, err
	}
	st := s.settings(ctx)

	flag := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	flag(&st.EmailNotifications, in.EmailNotifications)
	flag(&st.SMSNotifications, in.SMSNotifications)
	flag(&st.AutoApproveAttendance, in.AutoApproveAttendance)
	flag(&st.RequireFingerprint, in.RequireFingerprint)
	if in.WorkingHours != nil {
		st.WorkingHours = strings.TrimSpace(*in.WorkingHours)
	}
	if in.Timezone != nil {
		st.Timezone = strings.TrimSpace(*in.Timezone)
	}
	if err := st.Validate(); err != nil {
		return models.SystemSettings{}, invalid(err.Error())
	}

	if err := s.Store.SaveSettings(ctx, &st); err != nil {
		return models.SystemSettings{}, fmt.Errorf("save settings: %w", err)
	}
	s.Cache.Delete(ctx, cache.SETTINGS_CACHE_KEY)
	log.Printf("System settings updated by %s", actor.Email)
	return st, nil
}

// Profile returns the admin's own contact card.
func (s *SettingsService) Profile(ctx context.Context, actor models.User) (models.AdminProfile, error) {
	if !actor.IsAdmin() {
		return models.AdminProfile{}, access.ErrForbidden
	}
	p, err := s.Store.GetProfile(ctx, actor.ID)
	if errors.Is(err, database.ErrNotFound) {
		return models.AdminProfile{UserID: actor.ID, Name: actor.Name, Email: actor.Email}, nil
	}
	if err != nil {
		return models.AdminProfile{}, fmt.Errorf("load profile: %w", err)
	}
	return p, nil
}

// UpdateProfile edits the admin's own contact card. A new name is carried
// into the login directory.
func (s *SettingsService) UpdateProfile(ctx context.Context, actor models.User, in ProfileUpdate) (models.AdminProfile, error) {
	p, err := s.Profile(ctx, actor)
	if err != nil {
		return models.AdminProfile{}, err
	}

	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.Name, in.Name)
	set(&p.Phone, in.Phone)
	set(&p.Address, in.Address)
	set(&p.Bio, in.Bio)
	if p.Name == "" {
		return models.AdminProfile{}, invalid("Name is required")
	}

	if err := s.Store.SaveProfile(ctx, &p); err != nil {
		return models.AdminProfile{}, fmt.Errorf("save profile: %w", err)
	}
	if p.Name != actor.Name {
		cred, err := s.Store.FindCredential(ctx, actor.Email)
		if err != nil {
			return models.AdminProfile{}, fmt.Errorf("lookup credential: %w", err)
		}
		cred.Name = p.Name
		if err := s.Store.SaveCredential(ctx, &cred); err != nil {
			return models.AdminProfile{}, fmt.Errorf("rename login: %w", err)
		}
	}
	return p, nil
}
