package contact

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/attanavaid/portfolio/internal/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "attanavaid@gmail.com"

var validMessage = Message{
	Name:    "Ada Lovelace",
	Email:   "ada@example.com",
	Subject: "Hello there",
	Message: "Line one\nLine two & more",
}

func TestMessage_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Message)
		wantErr string
	}{
		{"valid", func(*Message) {}, ""},
		{"empty subject is fine", func(m *Message) { m.Subject = "" }, ""},
		{"missing name", func(m *Message) { m.Name = "  " }, "name is required"},
		{"missing email", func(m *Message) { m.Email = "" }, "email is required"},
		{"bad email", func(m *Message) { m.Email = "not-an-email" }, "not a valid address"},
		{"display name email", func(m *Message) { m.Email = "Ada <ada@example.com>" }, "not a valid address"},
		{"missing message", func(m *Message) { m.Message = "" }, "message is required"},
		{"header injection", func(m *Message) { m.Subject = "hi\r\nBcc: x@y.z" }, "line breaks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMessage
			tt.mutate(&m)
			err := m.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidMessage)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMailtoURL(t *testing.T) {
	got := MailtoURL(owner, Message{Name: "A B", Email: "a@b.co", Message: "hi & bye"})

	require.True(t, strings.HasPrefix(got, "mailto:"+owner+"?"))
	assert.NotContains(t, got, "+")
	assert.Contains(t, got, "subject=Portfolio%20Contact")

	q, err := url.ParseQuery(strings.SplitN(got, "?", 2)[1])
	require.NoError(t, err)
	assert.Equal(t, "Portfolio Contact", q.Get("subject"))
	assert.Equal(t, "Name: A B\nEmail: a@b.co\n\nMessage:\nhi & bye", q.Get("body"))

	withSubject := MailtoURL(owner, validMessage)
	assert.Contains(t, withSubject, "subject=Hello%20there")
}

func TestEmailJS_Send(t *testing.T) {
	var got emailJSRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte("OK"))
	}))
	defer srv.Close()

	relay := NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk", Endpoint: srv.URL, To: owner})
	require.True(t, relay.Configured())
	require.NoError(t, relay.Send(context.Background(), validMessage))

	assert.Equal(t, "svc", got.ServiceID)
	assert.Equal(t, "tpl", got.TemplateID)
	assert.Equal(t, "pk", got.UserID)
	assert.Equal(t, map[string]string{
		"from_name":  validMessage.Name,
		"from_email": validMessage.Email,
		"subject":    validMessage.Subject,
		"message":    validMessage.Message,
		"to_email":   owner,
	}, got.TemplateParams)
}

func TestEmailJS_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "The Public Key is invalid", http.StatusBadRequest)
	}))
	defer srv.Close()

	relay := NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl", PublicKey: "pk", Endpoint: srv.URL})
	err := relay.Send(context.Background(), validMessage)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Public Key is invalid")
}

func TestEmailJS_ConfiguredNeedsAllThree(t *testing.T) {
	assert.False(t, NewEmailJS(EmailJSConfig{ServiceID: "svc", TemplateID: "tpl"}).Configured())
	assert.False(t, NewEmailJS(EmailJSConfig{}).Configured())
}

func TestSMTP_Send(t *testing.T) {
	relay := NewSMTP(SMTPConfig{Username: "bot@example.com", Password: "secret", To: owner})
	require.True(t, relay.Configured())

	var addr, from string
	var to []string
	var msg []byte
	relay.send = func(a string, _ smtp.Auth, f string, rcpt []string, m []byte) error {
		addr, from, to, msg = a, f, rcpt, m
		return nil
	}

	require.NoError(t, relay.Send(context.Background(), validMessage))
	assert.Equal(t, "smtp.gmail.com:587", addr)
	assert.Equal(t, "bot@example.com", from)
	assert.Equal(t, []string{owner}, to)
	assert.Contains(t, string(msg), "Subject: Hello there: Ada Lovelace\r\n")
	assert.Contains(t, string(msg), "Reply-To: ada@example.com\r\n")
	assert.Contains(t, string(msg), "Message:\nLine one")

	assert.False(t, NewSMTP(SMTPConfig{Username: "u"}).Configured())
}

type stubRelay struct {
	ch         Channel
	configured bool
	err        error
	sent       []Message
}

func (r *stubRelay) Channel() Channel { return r.ch }
func (r *stubRelay) Configured() bool { return r.configured }
func (r *stubRelay) Send(_ context.Context, m Message) error {
	r.sent = append(r.sent, m)
	return r.err
}

type recordingObserver struct{ outcomes []string }

func (o *recordingObserver) ObserveSubmission(ch Channel, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	o.outcomes = append(o.outcomes, string(ch)+":"+outcome)
}

func TestService_DeliveryOrder(t *testing.T) {
	emailjs := &stubRelay{ch: ChannelEmailJS}
	smtpRelay := &stubRelay{ch: ChannelSMTP}
	svc := NewService(owner, []Relay{emailjs, smtpRelay}, WithRateLimit(RateLimit{}))

	res, err := svc.Submit(context.Background(), "k", validMessage)
	require.NoError(t, err)
	assert.Equal(t, ChannelMailto, res.Channel)
	assert.Equal(t, MailtoURL(owner, validMessage), res.MailtoURL)

	smtpRelay.configured = true
	res, err = svc.Submit(context.Background(), "k", validMessage)
	require.NoError(t, err)
	assert.Equal(t, Result{Channel: ChannelSMTP}, res)
	assert.Len(t, smtpRelay.sent, 1)

	emailjs.configured = true
	res, err = svc.Submit(context.Background(), "k", validMessage)
	require.NoError(t, err)
	assert.Equal(t, ChannelEmailJS, res.Channel)
	assert.Len(t, emailjs.sent, 1)
	assert.Len(t, smtpRelay.sent, 1)
}

func TestService_RelayFailureDoesNotFallBack(t *testing.T) {
	relay := &stubRelay{ch: ChannelEmailJS, configured: true, err: errors.New("network down")}
	obs := &recordingObserver{}
	svc := NewService(owner, []Relay{relay}, WithObserver(obs))

	res, err := svc.Submit(context.Background(), "k", validMessage)
	require.Error(t, err)
	assert.Equal(t, ChannelEmailJS, res.Channel)
	assert.Empty(t, res.MailtoURL)
	assert.Equal(t, []string{"emailjs:error"}, obs.outcomes)
}

func TestService_RateLimit(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	svc := NewService(owner, nil, WithClock(fc), WithRateLimit(RateLimit{Every: time.Minute, Burst: 2}))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := svc.Submit(ctx, "1.2.3.4", validMessage)
		require.NoError(t, err)
	}
	_, err := svc.Submit(ctx, "1.2.3.4", validMessage)
	assert.ErrorIs(t, err, ErrRateLimited)

	_, err = svc.Submit(ctx, "5.6.7.8", validMessage)
	assert.NoError(t, err, "limits are per client")

	fc.Advance(time.Minute)
	_, err = svc.Submit(ctx, "1.2.3.4", validMessage)
	assert.NoError(t, err)
}

func TestService_InvalidMessageNotCounted(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	svc := NewService(owner, nil, WithClock(fc), WithRateLimit(RateLimit{Every: time.Hour, Burst: 1}))
	_, err := svc.Submit(context.Background(), "k", Message{})
	require.ErrorIs(t, err, ErrInvalidMessage)
	_, err = svc.Submit(context.Background(), "k", validMessage)
	assert.NoError(t, err)
}

// fakeSubmitter returns canned results and can block to observe the
// submitting state.
type fakeSubmitter struct {
	res     Result
	err     error
	release chan struct{}
	got     []Message
}

func (s *fakeSubmitter) Submit(_ context.Context, _ string, m Message) (Result, error) {
	s.got = append(s.got, m)
	if s.release != nil {
		<-s.release
	}
	return s.res, s.err
}

func fillForm(t *testing.T, f *Form, m Message) {
	t.Helper()
	require.NoError(t, f.SetField("name", m.Name))
	require.NoError(t, f.SetField("email", m.Email))
	require.NoError(t, f.SetField("subject", m.Subject))
	require.NoError(t, f.SetField("message", m.Message))
}

func TestForm_RelaySuccessResetsAndDismisses(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	sub := &fakeSubmitter{res: Result{Channel: ChannelEmailJS}}
	f := NewForm(fc, sub, "k")
	fillForm(t, f, validMessage)

	var statuses []Status
	f.Subscribe(func(s FormState) { statuses = append(statuses, s.Status) })

	require.NoError(t, f.Submit(context.Background()))
	st := f.State()
	assert.Equal(t, StatusSuccess, st.Status)
	assert.Equal(t, Message{}, st.Fields)
	assert.Equal(t, SuccessText, st.Notice)
	assert.Equal(t, []Message{validMessage}, sub.got)

	fc.Advance(RelayDismiss - time.Millisecond)
	assert.Equal(t, StatusSuccess, f.State().Status)
	fc.Advance(time.Millisecond)
	assert.Equal(t, StatusIdle, f.State().Status)
	assert.Equal(t, []Status{StatusSubmitting, StatusSuccess, StatusIdle}, statuses)
}

func TestForm_MailtoDismissesSooner(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	url := MailtoURL(owner, validMessage)
	f := NewForm(fc, &fakeSubmitter{res: Result{Channel: ChannelMailto, MailtoURL: url}}, "k")
	fillForm(t, f, validMessage)

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, url, f.State().MailtoURL)

	fc.Advance(MailtoDismiss)
	assert.Equal(t, StatusIdle, f.State().Status)
	assert.Empty(t, f.State().MailtoURL)
}

func TestForm_ErrorKeepsFields(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	f := NewForm(fc, &fakeSubmitter{res: Result{Channel: ChannelEmailJS}, err: errors.New("boom")}, "k")
	fillForm(t, f, validMessage)

	require.NoError(t, f.Submit(context.Background()))
	st := f.State()
	assert.Equal(t, StatusError, st.Status)
	assert.Equal(t, validMessage, st.Fields)
	assert.Equal(t, ErrorText, st.Notice)

	fc.Advance(RelayDismiss)
	assert.Equal(t, StatusIdle, f.State().Status)
	assert.Equal(t, validMessage, f.State().Fields)
}

func TestForm_ErrorNotices(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	svc := NewService(owner, nil, WithClock(fc), WithRateLimit(RateLimit{Every: time.Hour, Burst: 1}))
	f := NewForm(fc, svc, "k")

	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, "Please check the form: name is required; email is required; message is required", f.State().Notice)

	fillForm(t, f, validMessage)
	require.NoError(t, f.Submit(context.Background()))
	require.Equal(t, StatusSuccess, f.State().Status)

	fillForm(t, f, validMessage)
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, RateLimitedText, f.State().Notice)
}

func TestForm_RejectsConcurrentSubmit(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	sub := &fakeSubmitter{res: Result{Channel: ChannelSMTP}, release: make(chan struct{})}
	f := NewForm(fc, sub, "k")
	fillForm(t, f, validMessage)

	submitting := make(chan struct{})
	f.Subscribe(func(s FormState) {
		if s.Status == StatusSubmitting {
			close(submitting)
		}
	})

	done := make(chan error, 1)
	go func() { done <- f.Submit(context.Background()) }()
	<-submitting

	assert.ErrorIs(t, f.Submit(context.Background()), ErrBusy)
	close(sub.release)
	require.NoError(t, <-done)
	assert.Equal(t, StatusSuccess, f.State().Status)
}

func TestForm_ResubmitReplacesDismissTimer(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	f := NewForm(fc, &fakeSubmitter{res: Result{Channel: ChannelSMTP}, err: errors.New("boom")}, "k")
	fillForm(t, f, validMessage)

	require.NoError(t, f.Submit(context.Background()))
	fc.Advance(4 * time.Second)
	require.NoError(t, f.Submit(context.Background()))
	assert.Equal(t, 1, fc.Pending())

	fc.Advance(2 * time.Second)
	assert.Equal(t, StatusError, f.State().Status)
}

func TestForm_UnknownField(t *testing.T) {
	f := NewForm(clock.NewFake(time.Unix(0, 0)), &fakeSubmitter{}, "k")
	assert.ErrorIs(t, f.SetField("phone", "123"), ErrUnknownField)
}

func TestForm_CloseCancelsDismiss(t *testing.T) {
	fc := clock.NewFake(time.Unix(0, 0))
	f := NewForm(fc, &fakeSubmitter{res: Result{Channel: ChannelSMTP}}, "k")
	fillForm(t, f, validMessage)
	require.NoError(t, f.Submit(context.Background()))
	require.Equal(t, 1, fc.Pending())

	f.Close()
	assert.Zero(t, fc.Pending())
	fc.Advance(time.Minute)
	assert.Equal(t, StatusSuccess, f.State().Status)
}
