package notification

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"foodhub-be/internal/apperr"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) SendVerificationEmail(ctx context.Context, email, code string) error {
	return m.Called(ctx, email, code).Error(0)
}

func (m *MockNotifier) SendWelcomeEmail(ctx context.Context, email, name string) error {
	return m.Called(ctx, email, name).Error(0)
}

func (m *MockNotifier) SendPasswordResetEmail(ctx context.Context, email, resetURL string) error {
	return m.Called(ctx, email, resetURL).Error(0)
}

func (m *MockNotifier) SendResetSuccessEmail(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func TestDeliver(t *testing.T) {
	ctx := context.Background()

	t.Run("DispatchesByKind", func(t *testing.T) {
		n := new(MockNotifier)
		n.On("SendVerificationEmail", ctx, "a@x.io", "123456").Return(nil)
		n.On("SendWelcomeEmail", ctx, "a@x.io", "Asha").Return(nil)
		n.On("SendPasswordResetEmail", ctx, "a@x.io", "http://r").Return(nil)
		n.On("SendResetSuccessEmail", ctx, "a@x.io").Return(nil)

		require.NoError(t, Deliver(ctx, n, Message{Kind: KindVerification, To: "a@x.io", Code: "123456"}))
		require.NoError(t, Deliver(ctx, n, Message{Kind: KindWelcome, To: "a@x.io", Name: "Asha"}))
		require.NoError(t, Deliver(ctx, n, Message{Kind: KindPasswordReset, To: "a@x.io", URL: "http://r"}))
		require.NoError(t, Deliver(ctx, n, Message{Kind: KindResetSuccess, To: "a@x.io"}))
		n.AssertExpectations(t)
	})

	t.Run("UnknownKind", func(t *testing.T) {
		err := Deliver(ctx, new(MockNotifier), Message{Kind: "sms"})
		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestBrevoMailer(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		var got brevoEmail
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/v3/smtp/email", r.URL.Path)
			assert.Equal(t, "brevo-key", r.Header.Get("api-key"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &got))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"messageId":"<1@brevo>"}`))
		}))
		defer srv.Close()

		m := NewBrevoMailer(BrevoConfig{APIKey: "brevo-key", SenderEmail: "noreply@foodhub.test", BaseURL: srv.URL})

		err := m.SendVerificationEmail(context.Background(), "asha@example.com", "482913")
		require.NoError(t, err)
		assert.Equal(t, "noreply@foodhub.test", got.Sender.Email)
		assert.Equal(t, "FoodHub", got.Sender.Name)
		require.Len(t, got.To, 1)
		assert.Equal(t, "asha@example.com", got.To[0].Email)
		assert.Equal(t, "Verify your Email", got.Subject)
		assert.Contains(t, got.HTMLContent, "482913")
	})

	t.Run("EscapesName", func(t *testing.T) {
		var got brevoEmail
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		m := NewBrevoMailer(BrevoConfig{APIKey: "k", SenderEmail: "s@x.io", BaseURL: srv.URL})

		require.NoError(t, m.SendWelcomeEmail(context.Background(), "a@x.io", "<b>Asha</b>"))
		assert.Equal(t, "Welcome to FoodHub", got.Subject)
		assert.NotContains(t, got.HTMLContent, "<b>Asha</b>")
		assert.Contains(t, got.HTMLContent, "&lt;b&gt;Asha&lt;/b&gt;")
	})

	t.Run("ResetLink", func(t *testing.T) {
		var got brevoEmail
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(body, &got)
			w.WriteHeader(http.StatusCreated)
		}))
		defer srv.Close()

		m := NewBrevoMailer(BrevoConfig{APIKey: "k", SenderEmail: "s@x.io", BaseURL: srv.URL})

		require.NoError(t, m.SendPasswordResetEmail(context.Background(), "a@x.io", "http://localhost:5173/resetpassword/abc"))
		assert.Contains(t, got.HTMLContent, `href="http://localhost:5173/resetpassword/abc"`)
	})

	t.Run("APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"code":"unauthorized","message":"Key not found"}`))
		}))
		defer srv.Close()

		m := NewBrevoMailer(BrevoConfig{APIKey: "bad", SenderEmail: "s@x.io", BaseURL: srv.URL})

		err := m.SendResetSuccessEmail(context.Background(), "a@x.io")
		assert.ErrorIs(t, err, ErrDelivery)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	})

	t.Run("Unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		m := NewBrevoMailer(BrevoConfig{APIKey: "k", SenderEmail: "s@x.io", BaseURL: url})

		err := m.SendResetSuccessEmail(context.Background(), "a@x.io")
		assert.ErrorIs(t, err, ErrDelivery)
	})
}

type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestQueueNotifier(t *testing.T) {
	t.Run("Publishes", func(t *testing.T) {
		w := &fakeWriter{}
		q := NewQueueNotifier(w)

		require.NoError(t, q.SendPasswordResetEmail(context.Background(), "a@x.io", "http://r/1"))

		require.Len(t, w.msgs, 1)
		var m Message
		require.NoError(t, json.Unmarshal(w.msgs[0].Value, &m))
		assert.Equal(t, Message{Kind: KindPasswordReset, To: "a@x.io", URL: "http://r/1"}, m)
		assert.Equal(t, "password_reset.a@x.io", string(w.msgs[0].Key))
	})

	t.Run("EnqueueFails", func(t *testing.T) {
		q := NewQueueNotifier(&fakeWriter{err: errors.New("no brokers")})

		err := q.SendWelcomeEmail(context.Background(), "a@x.io", "Asha")
		assert.ErrorIs(t, err, ErrEnqueue)
		assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	})
}

// fakeReader hands out queued messages, then blocks until the context ends.
type fakeReader struct {
	msgs      chan kafka.Message
	mu        sync.Mutex
	committed []kafka.Message
	onCommit  func(n int)
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-f.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	f.committed = append(f.committed, msgs...)
	n := len(f.committed)
	f.mu.Unlock()
	if f.onCommit != nil {
		f.onCommit(n)
	}
	return nil
}

func (f *fakeReader) Close() error { return nil }

func encode(t *testing.T, m Message) kafka.Message {
	t.Helper()
	b, err := json.Marshal(m)
	require.NoError(t, err)
	return kafka.Message{Value: b}
}

func TestWorker_Run(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &fakeReader{msgs: make(chan kafka.Message, 4)}
	r.msgs <- encode(t, Message{Kind: KindVerification, To: "a@x.io", Code: "111111"})
	r.msgs <- kafka.Message{Value: []byte("not json")}
	r.msgs <- encode(t, Message{Kind: KindResetSuccess, To: "b@x.io"})
	r.onCommit = func(n int) {
		if n == 3 {
			cancel()
		}
	}

	n := new(MockNotifier)
	n.On("SendVerificationEmail", mock.Anything, "a@x.io", "111111").Return(nil)
	// fails every attempt, still committed so the topic moves on
	n.On("SendResetSuccessEmail", mock.Anything, "b@x.io").Return(ErrDelivery)

	w := NewWorker(r, n)
	w.backoff = time.Millisecond

	err := w.Run(ctx)
	require.NoError(t, err)

	assert.Len(t, r.committed, 3)
	n.AssertNumberOfCalls(t, "SendVerificationEmail", 1)
	n.AssertNumberOfCalls(t, "SendResetSuccessEmail", 3)
}
