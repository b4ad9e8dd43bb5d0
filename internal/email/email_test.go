package email

import (
	"strings"
	"testing"

	"badui/internal/config"
)

func TestNewService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *config.Config
		wantEnabled bool
	}{
		{
			name: "enabled when host and sender configured",
			cfg: &config.Config{
				SMTPHost: "smtp.example.com",
				SMTPPort: 587,
				SMTPFrom: "noreply@example.com",
			},
			wantEnabled: true,
		},
		{
			name: "disabled when SMTPHost is empty",
			cfg: &config.Config{
				SMTPPort: 587,
				SMTPFrom: "noreply@example.com",
			},
			wantEnabled: false,
		},
		{
			name: "disabled when SMTPFrom is empty",
			cfg: &config.Config{
				SMTPHost: "smtp.example.com",
				SMTPPort: 587,
			},
			wantEnabled: false,
		},
		{
			name:        "disabled with empty config",
			cfg:         &config.Config{},
			wantEnabled: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(tt.cfg)
			if svc.IsEnabled() != tt.wantEnabled {
				t.Errorf("IsEnabled() = %v, want %v", svc.IsEnabled(), tt.wantEnabled)
			}
		})
	}
}

func TestService_SendEmail_Disabled(t *testing.T) {
	svc := NewService(&config.Config{})

	if err := svc.SendEmail([]string{"test@example.com"}, "Test", "<p>HTML</p>", "Text"); err != nil {
		t.Errorf("SendEmail() with disabled service should return nil, got %v", err)
	}
}

func TestService_SendEmail_NoRecipients(t *testing.T) {
	svc := NewService(&config.Config{
		SMTPHost: "smtp.example.com",
		SMTPPort: 587,
		SMTPFrom: "noreply@example.com",
	})

	if err := svc.SendEmail(nil, "Test", "<p>HTML</p>", "Text"); err != nil {
		t.Errorf("SendEmail() with no recipients should return nil, got %v", err)
	}
}

func TestService_BuildMessage(t *testing.T) {
	cfg := &config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     587,
		SMTPFrom:     "noreply@example.com",
		SMTPFromName: "Bad UI collection",
	}
	svc := NewService(cfg)

	tests := []struct {
		name     string
		htmlBody string
		textBody string
		wantHTML bool
		wantText bool
	}{
		{"both parts", "<p>HTML content</p>", "Text content", true, true},
		{"html only", "<p>HTML content</p>", "", true, false},
		{"text only", "", "Text content", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := svc.buildMessage([]string{"a@example.com", "b@example.com"}, "Hello", tt.htmlBody, tt.textBody)

			for _, want := range []string{
				"From: Bad UI collection <noreply@example.com>\r\n",
				"To: a@example.com, b@example.com\r\n",
				"Subject: Hello\r\n",
				"MIME-Version: 1.0\r\n",
				"Content-Type: multipart/alternative; boundary=",
			} {
				if !strings.Contains(msg, want) {
					t.Errorf("message missing %q", want)
				}
			}

			if got := strings.Contains(msg, "text/html"); got != tt.wantHTML {
				t.Errorf("html part present = %v, want %v", got, tt.wantHTML)
			}
			if got := strings.Contains(msg, "text/plain"); got != tt.wantText {
				t.Errorf("text part present = %v, want %v", got, tt.wantText)
			}
			if !strings.HasSuffix(msg, "--\r\n") {
				t.Error("message should end with the closing boundary")
			}
		})
	}
}

func TestService_BuildMessage_NoFromName(t *testing.T) {
	svc := NewService(&config.Config{SMTPFrom: "noreply@example.com"})

	msg := svc.buildMessage([]string{"a@example.com"}, "Hi", "", "body")
	if !strings.Contains(msg, "From: noreply@example.com\r\n") {
		t.Errorf("expected bare From header, got:\n%s", msg)
	}
}
