package store

import (
	"context"
	"database/sql"

	"github.com/example/turismo-portal/internal/notification"
)

// EmailSettingStore reads and writes the email_settings table and feeds the
// notifier its active addresses.
type EmailSettingStore struct {
	db *sql.DB
}

func NewEmailSettingStore(db *sql.DB) *EmailSettingStore {
	return &EmailSettingStore{db: db}
}

func (s *EmailSettingStore) List(ctx context.Context) ([]notification.EmailSetting, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, type, email, active FROM email_settings ORDER BY type, email")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	settings := make([]notification.EmailSetting, 0)
	for rows.Next() {
		var setting notification.EmailSetting
		var settingType string
		if err := rows.Scan(&setting.ID, &settingType, &setting.Email, &setting.Active); err != nil {
			return nil, err
		}
		setting.Type = notification.SettingType(settingType)
		settings = append(settings, setting)
	}
	return settings, rows.Err()
}

func (s *EmailSettingStore) Create(ctx context.Context, setting *notification.EmailSetting) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO email_settings (id, type, email, active) VALUES ($1, $2, $3, $4)",
		setting.ID, string(setting.Type), setting.Email, setting.Active)
	return err
}

func (s *EmailSettingStore) Update(ctx context.Context, setting *notification.EmailSetting) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE email_settings SET type = $2, email = $3, active = $4 WHERE id = $1",
		setting.ID, string(setting.Type), setting.Email, setting.Active)
	if err != nil {
		return err
	}
	return requireRow(res, notification.ErrSettingNotFound)
}

func (s *EmailSettingStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM email_settings WHERE id = $1", id)
	if err != nil {
		return err
	}
	return requireRow(res, notification.ErrSettingNotFound)
}

// ActiveEmails implements notification.SettingSource.
func (s *EmailSettingStore) ActiveEmails(ctx context.Context, settingType notification.SettingType) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT email FROM email_settings WHERE type = $1 AND active = true ORDER BY email",
		string(settingType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	emails := make([]string, 0)
	for rows.Next() {
		var addr string
		if err := rows.Scan(&addr); err != nil {
			return nil, err
		}
		emails = append(emails, addr)
	}
	return emails, rows.Err()
}
