package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/complaint-desk-api/internal/dto"
	"github.com/noah-isme/complaint-desk-api/internal/models"
	appErrors "github.com/noah-isme/complaint-desk-api/pkg/errors"
)

type fakeMessageService struct {
	messages   []models.Message
	stream     chan models.Message
	streamOff  bool
	subscribed chan string
}

func (f *fakeMessageService) Create(ctx context.Context, req dto.CreateMessageRequest) (*models.Message, error) {
	msg := models.Message{ID: "m1", ComplaintID: req.ComplaintID, Name: req.Name, Message: req.Message, CreatedAt: time.Now()}
	f.messages = append(f.messages, msg)
	return &msg, nil
}

func (f *fakeMessageService) List(ctx context.Context, complaintID string) ([]models.Message, error) {
	out := []models.Message{}
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].ComplaintID == complaintID {
			out = append(out, f.messages[i])
		}
	}
	return out, nil
}

func (f *fakeMessageService) Subscribe(ctx context.Context, complaintID string) (<-chan models.Message, error) {
	if f.streamOff {
		return nil, appErrors.Clone(appErrors.ErrNotImplemented, "live chat is not enabled")
	}
	if f.subscribed != nil {
		f.subscribed <- complaintID
	}
	return f.stream, nil
}

type countingStreamMetrics struct {
	opened atomic.Int32
	closed atomic.Int32
}

func (m *countingStreamMetrics) StreamOpened() { m.opened.Add(1) }
func (m *countingStreamMetrics) StreamClosed() { m.closed.Add(1) }

func TestMessageHandlerCreateAndList(t *testing.T) {
	svc := &fakeMessageService{}
	h := NewMessageHandler(svc, nil, nil, nil)

	for _, text := range []string{"hello", "any update?"} {
		c, rec := newContext(http.MethodPost, "/messages", dto.CreateMessageRequest{Name: "Asha", Message: text, ComplaintID: "c1"})
		h.Create(c)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	c, rec := newContext(http.MethodGet, "/messages/c1", nil)
	c.AddParam("complaintId", "c1")
	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var messages []models.Message
	decodeData(t, rec, &messages)
	require.Len(t, messages, 2)
	assert.Equal(t, "any update?", messages[0].Message)
}

func TestMessageHandlerCreateMalformed(t *testing.T) {
	h := NewMessageHandler(&fakeMessageService{}, nil, nil, nil)

	c, rec := newContext(http.MethodPost, "/messages", "nope")
	h.Create(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMessageHandlerStreamDisabled(t *testing.T) {
	h := NewMessageHandler(&fakeMessageService{streamOff: true}, nil, nil, nil)

	c, rec := newContext(http.MethodGet, "/messages/c1/stream", nil)
	c.AddParam("complaintId", "c1")
	h.Stream(c)

	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}

func newStreamServer(h *MessageHandler) *httptest.Server {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/messages/:complaintId/stream", h.Stream)
	return httptest.NewServer(engine)
}

func TestMessageHandlerStreamDeliversMessages(t *testing.T) {
	svc := &fakeMessageService{stream: make(chan models.Message, 1), subscribed: make(chan string, 1)}
	metrics := &countingStreamMetrics{}
	h := NewMessageHandler(svc, metrics, []string{"http://frontend"}, nil)
	srv := newStreamServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/messages/c1/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://frontend"}})
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	assert.Equal(t, "c1", <-svc.subscribed)

	svc.stream <- models.Message{ID: "m7", ComplaintID: "c1", Name: "Ravi", Message: "on my way"}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var got models.Message
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, "m7", got.ID)
	assert.Equal(t, "on my way", got.Message)

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return metrics.closed.Load() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int32(1), metrics.opened.Load())
}

func TestMessageHandlerStreamRejectsForeignOrigin(t *testing.T) {
	svc := &fakeMessageService{stream: make(chan models.Message)}
	h := NewMessageHandler(svc, nil, []string{"http://frontend"}, nil)
	srv := newStreamServer(h)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/messages/c1/stream"
	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
