package reminder

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// reminderView is what the email body shows.
type reminderView struct {
	UserName         string
	SubscriptionName string
	RenewalDate      string
	PlanName         string
	Price            string
	PaymentMethod    string
	DaysLeft         int
	AccountURL       string
}

func reminderSubject(v reminderView) string {
	return fmt.Sprintf("Your %s subscription renews in %s", v.SubscriptionName, daysWord(v.DaysLeft))
}

// reminderBody renders the HTML body. Every user-provided value is escaped.
func reminderBody(v reminderView) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		e := templ.EscapeString[string]
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
<table width="100%%" cellpadding="0" cellspacing="0" style="max-width: 600px; margin: 0 auto;">
<tr><td style="padding: 24px;">
<p>Hello <strong>%s</strong>,</p>
<p>Your <strong>%s</strong> subscription is set to renew on <strong>%s</strong> (%s from now).</p>
<table cellpadding="6" style="border-collapse: collapse;">
<tr><td>Plan</td><td><strong>%s</strong></td></tr>
<tr><td>Price</td><td><strong>%s</strong></td></tr>
<tr><td>Payment method</td><td><strong>%s</strong></td></tr>
</table>
<p>If you'd like to make changes or cancel, visit your <a href="%s">account settings</a>.</p>
<p>Thanks for staying with us.</p>
</td></tr>
</table>
</body>
</html>`,
			e(v.UserName),
			e(v.SubscriptionName),
			e(v.RenewalDate),
			e(daysWord(v.DaysLeft)),
			e(v.PlanName),
			e(v.Price),
			e(v.PaymentMethod),
			e(v.AccountURL),
		)
		return err
	})
}
