package sms

import (
	"context"
	"fmt"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

const twilioBodyFormat = "Your verification code is %s."

// messageCreator is the subset of the Twilio v2010 API used here.
type messageCreator interface {
	CreateMessage(params *twilioApi.CreateMessageParams) (*twilioApi.ApiV2010Message, error)
}

// TwilioClient sends codes as plain SMS through the Twilio Messages API.
type TwilioClient struct {
	api  messageCreator
	from string
	ttl  time.Duration
}

// NewTwilioClient returns a Twilio sender. ttl is the code lifetime quoted in the message; zero omits it.
// With any credential missing the client is returned unconfigured and SendCode fails with ErrNotConfigured.
func NewTwilioClient(accountSID, authToken, from string, ttl time.Duration) *TwilioClient {
	c := &TwilioClient{from: from, ttl: ttl}
	if accountSID == "" || authToken == "" || from == "" {
		return c
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})
	c.api = client.Api
	return c
}

// Configured reports whether all Twilio credentials were provided.
func (c *TwilioClient) Configured() bool {
	return c != nil && c.api != nil
}

// SendCode sends the code to +phone. Does not log the code.
func (c *TwilioClient) SendCode(ctx context.Context, phone, code string) error {
	if c.api == nil {
		return ErrNotConfigured
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(c.from)
	params.SetTo("+" + phone)
	params.SetBody(messageBody(code, c.ttl))

	if _, err := c.api.CreateMessage(params); err != nil {
		return fmt.Errorf("sms: twilio create message: %w", err)
	}
	return nil
}

func messageBody(code string, ttl time.Duration) string {
	body := fmt.Sprintf(twilioBodyFormat, code)
	switch {
	case ttl <= 0:
		return body
	case ttl == time.Minute:
		return body + " It expires in 1 minute."
	case ttl%time.Minute == 0:
		return fmt.Sprintf("%s It expires in %d minutes.", body, int(ttl/time.Minute))
	default:
		return fmt.Sprintf("%s It expires in %s.", body, ttl)
	}
}
