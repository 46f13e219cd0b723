package email

// Provider names the mail backend.
type Provider string

const (
	ProviderPostmark Provider = "postmark"
	ProviderResend   Provider = "resend"
	ProviderDev      Provider = "dev"
)

// Config holds the MAIL_* settings. Only the token of the selected provider
// has to be set.
type Config struct {
	Provider             Provider `env:"MAIL_PROVIDER" envDefault:"dev"`
	PostmarkServerToken  string   `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string   `env:"POSTMARK_ACCOUNT_TOKEN"`
	ResendAPIKey         string   `env:"RESEND_API_KEY"`
	SenderEmail          string   `env:"MAIL_SENDER" envDefault:"notifications@localhost.dev"`
	SenderName           string   `env:"MAIL_SENDER_NAME" envDefault:"Notifications"`
	SupportEmail         string   `env:"MAIL_SUPPORT" envDefault:"support@localhost.dev"`
	DevDir               string   `env:"MAIL_DEV_DIR" envDefault:"./tmp/mail"`
}
