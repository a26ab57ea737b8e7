package core

import (
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailMessage_Render(t *testing.T) {
	require.NoError(t, ParseEmailTemplates())

	data := map[string]interface{}{
		"AppName":           "KCET Admissions",
		"Name":              "Asha",
		"ApplicationNumber": "APP-1",
		"OldStatus":         "FEE_PENDING",
		"NewStatus":         "FEE_RECEIVED",
		"Reason":            "payment of 100000.00 recorded (receipt R-1)",
		"ChangedAt":         time.Date(2024, 7, 1, 10, 30, 0, 0, time.UTC),
	}

	t.Run("template", func(t *testing.T) {
		msg := EmailMessage{
			To:           []mail.Address{{Address: "asha@example.com"}},
			TemplateName: "status_changed",
			TemplateData: data,
		}
		require.NoError(t, msg.Render())
		assert.Contains(t, msg.TextContent, "Dear Asha,")
		assert.Contains(t, msg.TextContent, "from FEE_PENDING to FEE_RECEIVED on 01 Jul 2024 10:30 UTC")
		assert.Contains(t, msg.TextContent, "Reason: payment of 100000.00 recorded (receipt R-1)")
		assert.Contains(t, msg.HTMLContent, "<strong>APP-1</strong>")
		assert.True(t, msg.HasContent())
		assert.True(t, msg.HasRecipients())
	})

	t.Run("body overrides text template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "status_changed", TemplateData: data, BodyStr: "plain"}
		require.NoError(t, msg.Render())
		assert.Equal(t, "plain", msg.TextContent)
		assert.NotEmpty(t, msg.HTMLContent)
		assert.False(t, msg.HasRecipients())
	})

	t.Run("missing key", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "status_changed", TemplateData: map[string]interface{}{"Name": "Asha"}}
		assert.Error(t, msg.Render())
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "welcome"}
		err := msg.Render()
		require.Error(t, err)
		assert.Contains(t, err.Error(), `email template "welcome" not found`)
	})

	t.Run("nothing to render", func(t *testing.T) {
		msg := EmailMessage{}
		require.NoError(t, msg.Render())
		assert.False(t, msg.HasContent())
	})
}
