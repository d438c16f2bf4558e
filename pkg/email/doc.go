// Package email sends transactional email through Postmark, or to local
// files in development.
//
// New returns the Postmark client when both tokens are configured and a
// DevSender otherwise. Every sender validates SendEmailParams first and
// reports problems with ErrInvalidParams; provider failures are wrapped with
// ErrFailedToSendEmail.
//
// Bodies are templ components rendered with templates.Render.
package email
