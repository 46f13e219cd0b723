// Package email sends the mail channel of a notification.
//
// Three EmailSender implementations are provided: Postmark, Resend and a
// development sender that writes each message to disk. New picks one from
// Config.Provider.
//
//	sender, err := email.New(cfg)
//	if err != nil {
//		return err
//	}
//	id, err := sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "jane@example.com",
//		Subject:  "Appointment reminder",
//		BodyHTML: html,
//		Tag:      "appointment",
//	})
package email
