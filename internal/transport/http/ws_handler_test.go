package http

import (
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"skin-assessment-service/internal/app"
	"skin-assessment-service/internal/domain"
	"skin-assessment-service/internal/infra/memory"
	"skin-assessment-service/internal/logger"
)

type recordingDispatcher struct {
	mu       sync.Mutex
	payloads []domain.SubmissionPayload
}

func (d *recordingDispatcher) Dispatch(p domain.SubmissionPayload) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.payloads = append(d.payloads, p)
}

func (d *recordingDispatcher) all() []domain.SubmissionPayload {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]domain.SubmissionPayload(nil), d.payloads...)
}

type resultSummary struct {
	Tier        int    `json:"tier"`
	DisplayName string `json:"displayName"`
	BookingURL  string `json:"bookingUrl"`
}

type questionRef struct {
	ID string `json:"id"`
}

type statePayload struct {
	SessionID string            `json:"sessionId"`
	Phase     string            `json:"phase"`
	Step      int               `json:"step"`
	Errors    map[string]string `json:"errors"`
	Question  *questionRef      `json:"question"`
	Result    *resultSummary    `json:"result"`
	Message   string            `json:"message"`
}

type stateMessage struct {
	Type    string       `json:"type"`
	Payload statePayload `json:"payload"`
}

func newTestServer(t *testing.T) (*httptest.Server, *app.AssessmentService, *memory.SessionStore, *recordingDispatcher) {
	t.Helper()
	store := memory.NewSessionStore()
	banks := memory.NewQuestionBankRepository(memory.NewStaticQuestionBankLoader(domain.DefaultQuestionBank()), time.Minute)
	dispatcher := &recordingDispatcher{}
	service := app.NewAssessmentService(store, banks, dispatcher, nil, app.Settings{
		Booking: app.BookingLinks{Suitable: "https://book.example/co2", Alternative: "https://book.example/consult"},
	})
	server := httptest.NewServer(NewRouter(service, store, logger.Discard()))
	t.Cleanup(server.Close)
	return server, service, store, dispatcher
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketAssessmentFlow(t *testing.T) {
	server, _, _, dispatcher := newTestServer(t)
	conn := dial(t, server)

	msg := readNext(t, conn)
	if msg.Type != "state" || msg.Payload.Phase != "questioning" || msg.Payload.Question == nil {
		t.Fatalf("expected initial questioning state, got %+v", msg)
	}

	for i := 0; i < 6; i++ {
		send(t, conn, map[string]any{
			"type":    "answer",
			"payload": map[string]any{"questionId": msg.Payload.Question.ID, "optionIndex": 1},
		})
		msg = readNext(t, conn)
		if msg.Type != "state" {
			t.Fatalf("answer %d: expected state, got %+v", i, msg)
		}
	}
	if msg.Payload.Phase != "capturing_lead" {
		t.Fatalf("expected lead capture after six answers, got %s", msg.Payload.Phase)
	}

	send(t, conn, map[string]any{"type": "submit"})
	msg = readNext(t, conn)
	if msg.Payload.Phase != "capturing_lead" || len(msg.Payload.Errors) != 3 {
		t.Fatalf("expected three field errors, got %+v", msg.Payload)
	}
	if len(dispatcher.all()) != 0 {
		t.Fatalf("invalid lead must not be dispatched")
	}

	for field, value := range map[string]string{
		domain.FieldFirstName: "Jane",
		domain.FieldEmail:     "jane@example.com",
		domain.FieldPhone:     "07123 456789",
	} {
		send(t, conn, map[string]any{"type": "field", "payload": map[string]any{"field": field, "value": value}})
		readNext(t, conn)
	}

	send(t, conn, map[string]any{"type": "submit"})
	msg = readNext(t, conn)
	if msg.Payload.Phase != "showing_results" || msg.Payload.Result == nil {
		t.Fatalf("expected results, got %+v", msg.Payload)
	}
	// 6 answers x score 1 = 6 -> tier 1
	if msg.Payload.Result.Tier != 1 || msg.Payload.Result.DisplayName != "Type I - Very Fair" {
		t.Fatalf("unexpected result %+v", msg.Payload.Result)
	}
	if msg.Payload.Result.BookingURL != "https://book.example/co2" {
		t.Fatalf("expected suitable booking link, got %q", msg.Payload.Result.BookingURL)
	}
	payloads := dispatcher.all()
	if len(payloads) != 1 || payloads[0].FirstName != "Jane" || payloads[0].FitzpatrickType != 1 {
		t.Fatalf("expected one dispatched lead, got %+v", payloads)
	}
}

func TestWebSocketReportsErrors(t *testing.T) {
	server, _, _, _ := newTestServer(t)
	conn := dial(t, server)
	readNext(t, conn)

	send(t, conn, map[string]any{"type": "submit"})
	msg := readNext(t, conn)
	if msg.Type != "error" || msg.Payload.Message != domain.ErrWrongPhase.Error() {
		t.Fatalf("expected wrong phase error, got %+v", msg)
	}

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"optionIndex": 9}})
	msg = readNext(t, conn)
	if msg.Type != "error" || msg.Payload.Message != domain.ErrOptionNotFound.Error() {
		t.Fatalf("expected option error, got %+v", msg)
	}

	send(t, conn, map[string]any{"type": "dance"})
	msg = readNext(t, conn)
	if msg.Type != "error" {
		t.Fatalf("expected error for unknown intent, got %+v", msg)
	}
}

func TestWebSocketRestart(t *testing.T) {
	server, _, _, _ := newTestServer(t)
	conn := dial(t, server)
	first := readNext(t, conn)

	send(t, conn, map[string]any{"type": "answer", "payload": map[string]any{"optionIndex": 0}})
	if msg := readNext(t, conn); msg.Payload.Step != 1 {
		t.Fatalf("expected step 1, got %d", msg.Payload.Step)
	}

	send(t, conn, map[string]any{"type": "restart"})
	msg := readNext(t, conn)
	if msg.Payload.Step != 0 || msg.Payload.Phase != "questioning" {
		t.Fatalf("expected fresh questioning state, got %+v", msg.Payload)
	}
	if msg.Payload.SessionID != first.Payload.SessionID {
		t.Fatalf("restart must keep the session")
	}
}

func TestWebSocketDisconnectClosesSession(t *testing.T) {
	server, _, store, _ := newTestServer(t)
	conn := dial(t, server)
	readNext(t, conn)
	if store.Len() != 1 {
		t.Fatalf("expected one live session, got %d", store.Len())
	}

	conn.Close()
	deadline := time.Now().Add(5 * time.Second)
	for store.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("session not closed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func send(t *testing.T, conn *websocket.Conn, msg map[string]any) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write %v: %v", msg["type"], err)
	}
}

func readNext(t *testing.T, conn *websocket.Conn) stateMessage {
	t.Helper()
	var msg stateMessage
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}
