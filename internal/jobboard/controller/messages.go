package controller

import (
	"fmt"

	"github.com/gartstein/jobboard/internal/jobboard/models"
)

// Notification messages are rendered once, when the notification is emitted.

func newApplicationMessage(applicantName string) string {
	return fmt.Sprintf("New job application received from %s", applicantName)
}

func statusChangedMessage(status models.ApplicationStatus, companyName string) string {
	switch status {
	case models.StatusAccepted:
		return fmt.Sprintf("Your application at %s has been accepted", companyName)
	case models.StatusRejected:
		return fmt.Sprintf("Your application at %s has been rejected", companyName)
	default:
		return fmt.Sprintf("Your application at %s is back under review", companyName)
	}
}

func interviewScheduledMessage(companyName string) string {
	return fmt.Sprintf("You have been invited to an interview by %s", companyName)
}

func interviewAcceptedMessage(companyName string) string {
	return fmt.Sprintf("Interview scheduled with %s", companyName)
}
