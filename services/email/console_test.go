package emailsvc

import (
	"net/mail"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

func TestConsoleServiceMock_SendMessages(t *testing.T) {
	conf := &core.Config{AppName: "Admissions", Mail: core.MailConfig{DefaultFrom: "noreply@example.com"}}
	svc := NewConsoleServiceMock(conf)

	svc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: "Asha", Address: "asha@example.com"}},
			Subject:      "Application status updated",
			TemplateName: "status_changed",
			TemplateData: map[string]interface{}{
				"AppName":           "Admissions",
				"Name":              "Asha",
				"ApplicationNumber": "APP-1",
				"OldStatus":         "DOCUMENTS_DECLARED",
				"NewStatus":         "FEE_PARTIAL",
				"Reason":            "payment recorded",
				"ChangedAt":         time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC),
			},
		},
		&core.EmailMessage{Subject: "no recipients", BodyStr: "dropped"},
		&core.EmailMessage{To: []mail.Address{{Address: "x@example.com"}}, BodyStr: "plain body"},
	)

	sent := svc.SentMessages()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].TextContent, "APP-1")
	assert.Contains(t, sent[0].TextContent, "FEE_PARTIAL")
	assert.Contains(t, sent[0].HTMLContent, "Asha")
	assert.Equal(t, "plain body", sent[1].TextContent)
}

func TestConsoleService_Format(t *testing.T) {
	conf := &core.Config{AppName: "Admissions", Mail: core.MailConfig{DefaultFrom: "Admissions <noreply@example.com>"}}
	svc := NewConsoleServiceMock(conf)

	out := svc.format(core.EmailMessage{
		To:          []mail.Address{{Address: "a@example.com"}, {Address: "b@example.com"}},
		Subject:     "Hello",
		TextContent: "hi",
	})
	assert.Contains(t, out, "Subject: [Admissions] Hello")
	assert.Contains(t, out, "To: <a@example.com>, <b@example.com>")
	assert.Contains(t, out, `From: "Admissions" <noreply@example.com>`)
	assert.NotContains(t, out, "CC:")
}
