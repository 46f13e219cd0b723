package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"unicode/utf8"

	"github.com/modernmen/notifier/pkg/push"
)

// MaxTextLength caps rendered text messages, in runes.
const MaxTextLength = 480

var mailTemplate = template.Must(template.New("mail").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Title}}</title></head>
<body style="margin:0;background:#f3f4f6;">
<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto;">
  <div style="background:#1f2937;color:#ffffff;padding:20px;text-align:center;">
    <h1 style="margin:0;font-size:20px;">{{.Brand}}</h1>
  </div>
  <div style="padding:20px;background:#ffffff;">
    <h2 style="color:#1f2937;margin-top:0;">{{.Title}}</h2>
    <p style="color:#4b5563;line-height:1.6;">{{.Body}}</p>
    {{- if .ActionURL}}
    <div style="text-align:center;margin:30px 0;">
      <a href="{{.ActionURL}}" style="background:#1f2937;color:#ffffff;padding:12px 24px;text-decoration:none;border-radius:8px;display:inline-block;font-weight:600;">{{.ActionText}}</a>
    </div>
    {{- end}}
    <div style="margin-top:30px;padding-top:20px;border-top:1px solid #e5e7eb;color:#9ca3af;font-size:14px;">
      <p>This is an automated message. Contact your administrator to stop receiving these notifications.</p>
    </div>
  </div>
</div>
</body>
</html>`))

type mailView struct {
	Brand      string
	Title      string
	Body       string
	ActionURL  string
	ActionText string
}

// RenderMail returns the subject and HTML body of the mail channel.
func RenderMail(n Notification, brand string) (subject, html string, err error) {
	view := mailView{
		Brand:      brand,
		Title:      n.Title,
		Body:       n.Body,
		ActionURL:  n.ActionURL,
		ActionText: n.ActionText,
	}
	if view.ActionText == "" {
		view.ActionText = "Take Action"
	}

	var buf bytes.Buffer
	if err := mailTemplate.Execute(&buf, view); err != nil {
		return "", "", fmt.Errorf("render mail: %w", err)
	}
	return n.Title, buf.String(), nil
}

// RenderText formats "title: body url" and truncates it to MaxTextLength.
func RenderText(n Notification) string {
	var sb strings.Builder
	sb.WriteString(n.Title)
	if n.Body != "" {
		sb.WriteString(": ")
		sb.WriteString(n.Body)
	}
	if n.ActionURL != "" {
		sb.WriteString(" ")
		sb.WriteString(n.ActionURL)
	}

	text := sb.String()
	if utf8.RuneCountInString(text) <= MaxTextLength {
		return text
	}
	runes := []rune(text)
	return string(runes[:MaxTextLength-1]) + "…"
}

// RenderPush builds the push gateway payload.
func RenderPush(n Notification, token string) push.Message {
	msg := push.Message{
		Token:  token,
		Title:  n.Title,
		Body:   n.Body,
		Tag:    string(n.Kind),
		URL:    n.ActionURL,
		Urgent: n.Priority == PriorityUrgent || n.Kind == KindUrgent,
		Data:   n.Data,
	}
	if n.ActionURL != "" {
		title := n.ActionText
		if title == "" {
			title = "Open"
		}
		msg.Actions = []push.Action{{Action: "open", Title: title}}
	}
	return msg
}
