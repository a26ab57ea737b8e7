package admission

import (
	"net/mail"
	"time"

	"github.com/shoyeabaslam/kcet-cams-sub000/core"
)

const statusChangedTemplate = "status_changed"

// Notifier is told about committed status changes. Implementations must not block the caller.
type Notifier interface {
	StatusChanged(stu Student, entry HistoryEntry)
}

type statusChangedData struct {
	AppName           string
	Name              string
	ApplicationNumber string
	OldStatus         Status
	NewStatus         Status
	Reason            string
	ChangedAt         time.Time
}

type emailNotifier struct {
	appName string
	mailSvc core.EmailService
}

var _ Notifier = (*emailNotifier)(nil)

// NewEmailNotifier mails the applicant whenever their application status changes.
func NewEmailNotifier(appName string, mailSvc core.EmailService) Notifier {
	return &emailNotifier{appName: appName, mailSvc: mailSvc}
}

func (n *emailNotifier) StatusChanged(stu Student, entry HistoryEntry) {
	if stu.Email == "" || entry.OldStatus == "" {
		return
	}
	n.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: stu.Name, Address: stu.Email}},
		Subject:      "Application " + stu.ApplicationNumber + " status updated",
		TemplateName: statusChangedTemplate,
		TemplateData: statusChangedData{
			AppName:           n.appName,
			Name:              stu.Name,
			ApplicationNumber: stu.ApplicationNumber,
			OldStatus:         entry.OldStatus,
			NewStatus:         entry.NewStatus,
			Reason:            entry.Reason,
			ChangedAt:         entry.ChangedAt,
		},
	})
}

type nopNotifier struct{}

func (nopNotifier) StatusChanged(Student, HistoryEntry) {}
