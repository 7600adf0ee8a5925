package services

import (
	"fmt"

	"github.com/shashiranjanraj/mandi/app/models"
	"github.com/shashiranjanraj/mandi/config"
	"github.com/shashiranjanraj/mandi/pkg/notification"
)

// adminAlert relays one queue entry to the outbound channels. Channels are
// chosen from configuration: mail when SMTP credentials exist, Slack when a
// webhook is set. With neither configured the alert goes nowhere and the
// in-app queue remains the only delivery path.
type adminAlert struct {
	n        models.AdminNotification
	withMail bool
}

func (a *adminAlert) Via() []string {
	var via []string
	if a.withMail && config.Get("MAIL_USERNAME", "") != "" {
		via = append(via, "mail")
	}
	if config.Get("SLACK_WEBHOOK", "") != "" {
		via = append(via, "slack")
	}
	return via
}

func (a *adminAlert) ToMail() notification.MailData {
	return notification.MailData{
		Subject: a.n.Title,
		Body: fmt.Sprintf("<p>%s</p><p>Order: %s</p>",
			a.n.Message, a.n.OrderID),
	}
}

func (a *adminAlert) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("%s: %s", a.n.Title, a.n.Message),
	}
}

// relay fans the alert out to every configured admin address. Mail is only
// attempted when there is an address to deliver to; Slack posts once.
func relay(n models.AdminNotification) {
	admins := config.AdminEmails()
	if len(admins) == 0 {
		alert := &adminAlert{n: n}
		if len(alert.Via()) > 0 {
			notification.SendAsync("", alert)
		}
		return
	}
	for i, addr := range admins {
		// Slack would repeat per recipient; post it with the first only.
		alert := &adminAlert{n: n, withMail: true}
		if i > 0 {
			notification.SendAsync(addr, &mailOnlyAlert{alert})
			continue
		}
		notification.SendAsync(addr, alert)
	}
}

// mailOnlyAlert narrows an alert to the mail channel.
type mailOnlyAlert struct {
	*adminAlert
}

func (a *mailOnlyAlert) Via() []string {
	if config.Get("MAIL_USERNAME", "") != "" {
		return []string{"mail"}
	}
	return nil
}
