package approval

import (
	"fmt"

	mb "github.com/utdi/ukmik/be/pkg/repositories/membership"
)

// discloseCredentials builds the acceptance email. This is the only place
// the plaintext password is ever written out; it must not be logged or
// persisted anywhere else.
func discloseCredentials(name, nraNumber string, role mb.Role, username, password string) (subject, body string) {
	subject = "Congratulations! Your Application Has Been Approved"
	body = fmt.Sprintf(
		"Dear %s,\n\n"+
			"Congratulations! Your application has been approved.\n\n"+
			"NRA: %s\n"+
			"Name: %s\n"+
			"Role: %s\n"+
			"Username: %s\n"+
			"Password: %s\n\n"+
			"Please use the above credentials to log in and access your account.\n\n"+
			"Regards,\nUKM IK Student Committee",
		name, nraNumber, name, role, username, password)
	return subject, body
}

func rejectionMessage(name string) (subject, body string) {
	subject = "Important Update: Your Application Has Been Rejected"
	body = fmt.Sprintf(
		"Dear %s,\n\n"+
			"We regret to inform you that your application has been rejected.\n\n"+
			"Thank you for your interest.\n\n"+
			"Regards,\nUKM IK Student Committee",
		name)
	return subject, body
}
