package email_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/subreminder/pkg/email"
	"github.com/dmitrymomot/subreminder/pkg/email/templates"
	"github.com/dmitrymomot/subreminder/pkg/validator"
)

func TestSendEmailParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		params email.SendEmailParams
		fields []string
	}{
		{
			name:   "valid",
			params: email.SendEmailParams{SendTo: "user@example.com", Subject: "Hi", BodyHTML: "<p>x</p>"},
		},
		{
			name:   "bad recipient",
			params: email.SendEmailParams{SendTo: "user@", Subject: "Hi", BodyHTML: "<p>x</p>"},
			fields: []string{"send_to"},
		},
		{
			name:   "everything missing",
			params: email.SendEmailParams{SendTo: " ", Subject: " "},
			fields: []string{"send_to", "subject", "body_html"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.params.Validate()
			if tt.fields == nil {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, email.ErrInvalidParams)
			assert.Equal(t, tt.fields, validator.ExtractValidationErrors(err).Fields())
		})
	}

	t.Run("blank recipient reports both rules", func(t *testing.T) {
		t.Parallel()

		err := email.SendEmailParams{SendTo: " ", Subject: "Hi", BodyHTML: "<p>x</p>"}.Validate()
		require.ErrorIs(t, err, email.ErrInvalidParams)
		assert.Len(t, validator.ExtractValidationErrors(err).Map()["send_to"], 2)
	})
}

func TestDevSender_SendEmail(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("writes html and metadata", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		sender := email.NewDevSender(dir)

		err := sender.SendEmail(ctx, email.SendEmailParams{
			SendTo:   "user@example.com",
			Subject:  "Your Netflix subscription renews in 7 days",
			BodyHTML: "<p>Netflix</p>",
			Tag:      "reminder-7d",
		})
		require.NoError(t, err)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		require.Len(t, files, 2)

		for _, f := range files {
			assert.Contains(t, f.Name(), "reminder-7d")
			content, err := os.ReadFile(filepath.Join(dir, f.Name()))
			require.NoError(t, err)

			if strings.HasSuffix(f.Name(), ".json") {
				var meta map[string]any
				require.NoError(t, json.Unmarshal(content, &meta))
				assert.Equal(t, "user@example.com", meta["send_to"])
				assert.Equal(t, "reminder-7d", meta["tag"])
			} else {
				assert.Equal(t, "<p>Netflix</p>", string(content))
			}
		}
	})

	t.Run("rejects invalid params without writing", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		err := email.NewDevSender(dir).SendEmail(ctx, email.SendEmailParams{Subject: "x", BodyHTML: "y"})
		assert.ErrorIs(t, err, email.ErrInvalidParams)

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})

	t.Run("reports unwritable directory", func(t *testing.T) {
		t.Parallel()

		err := email.NewDevSender("/dev/null/cannot-create-here").SendEmail(ctx, email.SendEmailParams{
			SendTo: "user@example.com", Subject: "x", BodyHTML: "y",
		})
		assert.ErrorIs(t, err, email.ErrFailedToSendEmail)
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	sender, err := email.New(email.Config{DevOutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &email.DevSender{}, sender)

	sender, err = email.New(email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "from@example.com",
		SupportEmail:         "support@example.com",
	})
	require.NoError(t, err)
	assert.NotNil(t, sender)

	_, err = email.New(email.Config{
		PostmarkServerToken:  "server",
		PostmarkAccountToken: "account",
		SenderEmail:          "not-an-email",
		SupportEmail:         "support@example.com",
	})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)

	_, err = email.NewPostmarkClient(email.Config{PostmarkAccountToken: "account"})
	assert.ErrorIs(t, err, email.ErrInvalidConfig)
}

func TestRender(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), templ.Raw("<b>hi</b>"))
	require.NoError(t, err)
	assert.Equal(t, "<b>hi</b>", html)
}
