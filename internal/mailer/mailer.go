// Package mailer sends order receipts through Amazon SES.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"
	"strings"

	"cafe-frontdesk/internal/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Sender is what workflows depend on.
type Sender interface {
	SendReceipt(ctx context.Context, to string, order models.Order, pdf []byte) error
}

type sesAPI interface {
	SendEmail(ctx context.Context, in *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

type SESMailer struct {
	client sesAPI
	from   string
}

// NewSESMailer loads AWS credentials from the default chain.
func NewSESMailer(ctx context.Context, region, from string) (*SESMailer, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("mailer.NewSESMailer: %w", err)
	}
	return &SESMailer{client: sesv2.NewFromConfig(cfg), from: from}, nil
}

func (m *SESMailer) SendReceipt(ctx context.Context, to string, order models.Order, pdf []byte) error {
	raw, err := buildMessage(m.from, to, order, pdf)
	if err != nil {
		return fmt.Errorf("mailer.SendReceipt: %w", err)
	}
	_, err = m.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(m.from),
		Destination:      &types.Destination{ToAddresses: []string{to}},
		Content:          &types.EmailContent{Raw: &types.RawMessage{Data: raw}},
	})
	if err != nil {
		return fmt.Errorf("mailer.SendReceipt: %w", err)
	}
	return nil
}

// Disabled is used when no sender address is configured.
type Disabled struct{}

func (Disabled) SendReceipt(context.Context, string, models.Order, []byte) error {
	return models.ErrMailerDisabled
}

func buildMessage(from, to string, order models.Order, pdf []byte) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: Your receipt for order #%d\r\n", order.ID)
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(text, "Hi %s,\r\n\r\nThanks for your order #%d. Total: %s.\r\nYour receipt is attached.\r\n",
		order.CustomerName, order.ID, order.TotalAmount.StringFixed(2))

	att, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"application/pdf"},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=\"receipt-order-%d.pdf\"", order.ID)},
	})
	if err != nil {
		return nil, err
	}
	if _, err := att.Write([]byte(wrap76(base64.StdEncoding.EncodeToString(pdf)))); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}

// wrap76 splits base64 into RFC 2045 line lengths.
func wrap76(s string) string {
	var b strings.Builder
	for len(s) > 76 {
		b.WriteString(s[:76])
		b.WriteString("\r\n")
		s = s[76:]
	}
	b.WriteString(s)
	return b.String()
}
