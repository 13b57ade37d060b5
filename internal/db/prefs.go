package db

import (
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"pinned/internal/models"
	"pinned/internal/session"
)

// Preference keys
const (
	KeyTheme        = "theme"
	KeyFontSize     = "font_size"
	KeyTypingSpeed  = "typing_speed"
	KeyAutoScroll   = "auto_scroll"
	KeySoundEffects = "sound_effects"
	KeyLastLocation = "last_location"
)

// Prefs is the local preference store. It implements session.LocationStore.
type Prefs struct {
	db  *sql.DB
	now func() time.Time
}

func NewPrefs(db *sql.DB) *Prefs {
	return &Prefs{db: db, now: time.Now}
}

// LoadSettings reads the saved settings. Missing or unrecognised values keep their defaults.
func (p *Prefs) LoadSettings() (models.Settings, error) {
	s := models.DefaultSettings()
	all, err := GetAllPrefs(p.db)
	if err != nil {
		return s, fmt.Errorf("load settings: %w", err)
	}

	if v, ok := all[KeyTheme]; ok && models.ValidTheme(v) {
		s.Theme = v
	}
	if v, ok := all[KeyFontSize]; ok {
		if fs := models.FontSize(v); fs.Valid() {
			s.FontSize = fs
		}
	}
	if v, ok := all[KeyTypingSpeed]; ok {
		if ts := models.TypingSpeed(v); ts.Valid() {
			s.TypingSpeed = ts
		}
	}
	if v, ok := all[KeyAutoScroll]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.AutoScroll = b
		}
	}
	if v, ok := all[KeySoundEffects]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			s.SoundEffects = b
		}
	}
	return s, nil
}

// SaveSettings writes every setting in one transaction
func (p *Prefs) SaveSettings(s models.Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	now := p.now().Unix()
	tx, err := p.db.Begin()
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	values := [][2]string{
		{KeyTheme, s.Theme},
		{KeyFontSize, string(s.FontSize)},
		{KeyTypingSpeed, string(s.TypingSpeed)},
		{KeyAutoScroll, strconv.FormatBool(s.AutoScroll)},
		{KeySoundEffects, strconv.FormatBool(s.SoundEffects)},
	}
	for _, kv := range values {
		if _, err := tx.Exec(
			`INSERT INTO prefs(key, value, updated_at) VALUES(?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			kv[0], kv[1], now,
		); err != nil {
			return fmt.Errorf("save setting %s: %w", kv[0], err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

func (p *Prefs) SaveLocation(loc session.Location) error {
	return SetPref(p.db, KeyLastLocation, loc.String(), p.now().Unix())
}

// LastLocation returns the location saved by the previous run
func (p *Prefs) LastLocation() (session.Location, error) {
	v, ok, err := GetPref(p.db, KeyLastLocation)
	if err != nil || !ok {
		return session.Location{}, err
	}
	return session.ParseLocation(v), nil
}
