package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/turismo-portal/internal/email"
)

type stubSettings struct {
	internal []string
	err      error
	calls    int
}

func (s *stubSettings) ActiveEmails(ctx context.Context, settingType SettingType) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if settingType == TypeInternal {
		return s.internal, nil
	}
	return nil, nil
}

// logOnlyEmail returns a service without an SMTP host, so sends always
// succeed and end up in the log.
func logOnlyEmail() *email.Service {
	return email.NewService("", "1025", "noreply@turismoportal.example")
}

func testConfirmation() OrderConfirmation {
	return OrderConfirmation{
		OrderNumber: "ORD-1700000000000",
		UserEmail:   "ana@example.com",
		UserName:    "Ana García",
		TotalAmount: 38500.50,
		Items: []LineSummary{
			{Name: "City Tour", Quantity: 2, Price: 15000},
			{Name: "Día de Playa", Quantity: 1, Price: 8500.50},
		},
	}
}

func TestHandler_Process(t *testing.T) {
	settings := &stubSettings{internal: []string{"ventas@example.com", "admin@example.com"}}
	handler := NewHandler(logOnlyEmail(), settings)

	err := handler.Process(context.Background(), testConfirmation())

	require.NoError(t, err)
	assert.Equal(t, 1, settings.calls)
}

func TestHandler_Process_NoInternalAddresses(t *testing.T) {
	handler := NewHandler(logOnlyEmail(), &stubSettings{})

	err := handler.Process(context.Background(), testConfirmation())
	assert.NoError(t, err)
}

func TestHandler_Process_SettingsLookupFails(t *testing.T) {
	settings := &stubSettings{err: errors.New("db down")}
	handler := NewHandler(logOnlyEmail(), settings)

	err := handler.Process(context.Background(), testConfirmation())
	assert.Error(t, err)
}

func TestHandler_HandleMessage(t *testing.T) {
	handler := NewHandler(logOnlyEmail(), &stubSettings{})

	payload := []byte(`{
		"order_number": "ORD-1700000000000",
		"user_email": "ana@example.com",
		"user_name": "Ana García",
		"total_amount": 250,
		"items": [{"name": "City Tour", "quantity": 2, "price": 100}]
	}`)

	err := handler.HandleMessage(context.Background(), []byte("ORD-1700000000000"), payload)
	assert.NoError(t, err)
}

func TestHandler_HandleMessage_BadPayload(t *testing.T) {
	handler := NewHandler(logOnlyEmail(), &stubSettings{})

	err := handler.HandleMessage(context.Background(), []byte("key"), []byte("{not json"))
	assert.Error(t, err)
}

func TestEmailSetting_Validate(t *testing.T) {
	tests := []struct {
		name    string
		setting EmailSetting
		wantErr bool
	}{
		{"valid internal", EmailSetting{Type: TypeInternal, Email: "a@b.com"}, false},
		{"valid customer", EmailSetting{Type: TypeCustomer, Email: "a@b.com"}, false},
		{"missing email", EmailSetting{Type: TypeInternal}, true},
		{"unknown type", EmailSetting{Type: "weekly_digest", Email: "a@b.com"}, true},
		{"empty", EmailSetting{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.setting.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSetting)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
