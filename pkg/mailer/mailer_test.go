package mailer

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/anonto42/webapps/backend/pkg/logger"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSES struct {
	mock.Mock
}

func (m *MockSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	args := m.Called(ctx, params)
	if out := args.Get(0); out != nil {
		return out.(*sesv2.SendEmailOutput), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestSESMailer_Send(t *testing.T) {
	client := new(MockSES)
	client.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *sesv2.SendEmailInput) bool {
		return *in.FromEmailAddress == "noreply@mindspace.app" &&
			in.Destination.ToAddresses[0] == "ada@example.com" &&
			*in.Content.Simple.Subject.Data == "Welcome to MindSpace" &&
			in.Content.Simple.Body.Text != nil
	})).Return(&sesv2.SendEmailOutput{}, nil)

	m := &SESMailer{client: client, from: "noreply@mindspace.app"}
	err := m.Send(context.Background(), WelcomeEmail("ada@example.com", "Ada", "http://localhost:3000"))

	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSESMailer_SendError(t *testing.T) {
	client := new(MockSES)
	client.On("SendEmail", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	m := &SESMailer{client: client, from: "noreply@mindspace.app"}
	err := m.Send(context.Background(), Message{To: "ada@example.com", Subject: "x", HTMLBody: "y"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "a***@example.com")
	assert.NotContains(t, err.Error(), "ada@example.com")
}

func TestSMTPMailer_Send(t *testing.T) {
	var gotAddr string
	var gotTo []string
	var gotBody string
	m := NewSMTPMailer(Config{From: "noreply@mindspace.app", SMTPHost: "mail.local"})
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotBody = addr, to, string(msg)
		return nil
	}

	err := m.Send(context.Background(), PasswordResetEmail("MindSpace", "ada@example.com", "Ada", "http://x/reset/abc"))
	require.NoError(t, err)

	assert.Equal(t, "mail.local:587", gotAddr)
	assert.Equal(t, []string{"ada@example.com"}, gotTo)
	assert.Contains(t, gotBody, "Subject: Reset your MindSpace password")
	assert.Contains(t, gotBody, "http://x/reset/abc")
	assert.Contains(t, gotBody, "text/plain")
}

func TestNew_FallsBackToLogMailer(t *testing.T) {
	m := New(context.Background(), Config{From: "x@y.z"}, logger.NewNop())
	_, ok := m.(*LogMailer)
	assert.True(t, ok)
	assert.NoError(t, m.Send(context.Background(), Message{To: "a@b.c"}))
}

func TestNew_PicksSMTP(t *testing.T) {
	m := New(context.Background(), Config{SMTPHost: "mail.local", SMTPPort: 25}, logger.NewNop())
	s, ok := m.(*SMTPMailer)
	require.True(t, ok)
	assert.Equal(t, "mail.local:25", s.addr)
}

func TestWelcomeEmail_EscapesName(t *testing.T) {
	msg := WelcomeEmail("a@b.c", "<script>", "http://app")
	assert.NotContains(t, msg.HTMLBody, "<script>")
	assert.Contains(t, msg.HTMLBody, "&lt;script&gt;")
}

func TestPasswordResetEmail_NamesProduct(t *testing.T) {
	msg := PasswordResetEmail("ArtisanMart", "a@b.c", "Ada", "http://shop/reset-password?token=t")
	assert.Equal(t, "Reset your ArtisanMart password", msg.Subject)
	assert.Contains(t, msg.HTMLBody, "http://shop/reset-password?token=t")
}

func TestRedactEmail(t *testing.T) {
	assert.Equal(t, "j***@doe.com", RedactEmail("jane@doe.com"))
	assert.Equal(t, "***", RedactEmail("nope"))
}
