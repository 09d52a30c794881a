package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendPaymentSuccess(toEmail, planName string, amountMinor int64, currency string) error
	SendPaymentFailed(toEmail, planName string, attempt int) error
	SendCancellation(toEmail, planName, accessUntil string) error
	SendDowngrade(toEmail, fromPlan string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)
	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) send(toEmail, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send %q to %s: %v\n", subject, toEmail, err)
		return err
	}
	fmt.Printf("[MAILER] %q sent to %s\n", subject, toEmail)
	return nil
}

func (s *emailService) SendPaymentSuccess(toEmail, planName string, amountMinor int64, currency string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment received</h2>
			<p>Your payment of <strong>%.2f %s</strong> for the <strong>%s</strong> plan was successful.</p>
			<p>Your subscription is active. You can review your billing history any time:</p>
			<a href="%s/billing" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View billing</a>
		</div>
	`, float64(amountMinor)/100, currency, planName, s.clientURL)
	return s.send(toEmail, "Payment received", body)
}

func (s *emailService) SendPaymentFailed(toEmail, planName string, attempt int) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Payment failed</h2>
			<p>We could not collect payment for your <strong>%s</strong> plan (attempt %d).</p>
			<p>Your access continues while we retry. Please update your payment method to avoid interruption:</p>
			<a href="%s/billing" style="background-color: #E53935; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Update payment method</a>
		</div>
	`, planName, attempt, s.clientURL)
	return s.send(toEmail, "Payment failed - action needed", body)
}

func (s *emailService) SendCancellation(toEmail, planName, accessUntil string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Subscription cancelled</h2>
			<p>Your <strong>%s</strong> subscription has been cancelled.</p>
			<p>You keep full access until <strong>%s</strong>.</p>
		</div>
	`, planName, accessUntil)
	return s.send(toEmail, "Subscription cancelled", body)
}

func (s *emailService) SendDowngrade(toEmail, fromPlan string) error {
	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Plan changed</h2>
			<p>Your <strong>%s</strong> subscription has ended and your account has moved to the free plan.</p>
			<p>You can re-subscribe whenever you like:</p>
			<a href="%s/plans" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">See plans</a>
		</div>
	`, fromPlan, s.clientURL)
	return s.send(toEmail, "Your plan has changed", body)
}
