package bot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/centromex/food-rescue-bot/internal/conversation"
	"github.com/centromex/food-rescue-bot/internal/messaging"
)

// StateReader exposes stored conversation state for debugging.
type StateReader interface {
	Peek(ctx context.Context, phone string) (conversation.State, bool, error)
}

// Bridge is the HTTP transport used by the WhatsApp gateway: inbound messages
// arrive as webhooks, replies go out through the dispatcher.
type Bridge struct {
	handler    Handler
	states     StateReader
	dispatcher *messaging.Dispatcher
	log        *zap.Logger
}

func NewBridge(handler Handler, states StateReader, dispatcher *messaging.Dispatcher, log *zap.Logger) *Bridge {
	return &Bridge{handler: handler, states: states, dispatcher: dispatcher, log: log}
}

type webhookRequest struct {
	Numero   string `json:"numero"`
	Mensagem string `json:"mensagem"`
	ID       string `json:"id,omitempty"`
}

type webhookResponse struct {
	Status string              `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Reply  string              `json:"reply,omitempty"`
	Outbox []messaging.Message `json:"outbox,omitempty"`
	Debug  *conversation.Debug `json:"debug,omitempty"`
}

func (b *Bridge) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /webhook", b.handleWebhook)
	mux.HandleFunc("GET /health", b.handleHealth)
	mux.HandleFunc("GET /debug/state", b.handleDebugState)
	return mux
}

// Serve listens on addr until ctx is cancelled, then shuts down and waits for
// pending deliveries.
func (b *Bridge) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           b.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	b.log.Info("bridge listening", zap.String("addr", addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	b.dispatcher.Wait()
	return err
}

func (b *Bridge) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		b.log.Warn("invalid webhook payload", zap.Error(err))
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "erro", Detail: "payload inválido"})
		return
	}
	if strings.TrimSpace(req.Numero) == "" || strings.TrimSpace(req.Mensagem) == "" {
		writeJSON(w, http.StatusBadRequest, webhookResponse{Status: "erro", Detail: "numero e mensagem são obrigatórios"})
		return
	}

	// the turn must finish even if the gateway hangs up
	ctx := context.WithoutCancel(r.Context())
	res := b.handler.Handle(ctx, conversation.Inbound{Phone: req.Numero, Text: req.Mensagem, MessageID: req.ID})

	reply, outbox := messaging.Split(req.Numero, res.Messages)
	b.dispatcher.Dispatch(res.Messages)

	debug := res.Debug
	writeJSON(w, http.StatusOK, webhookResponse{Status: "recebido", Reply: reply, Outbox: outbox, Debug: &debug})
}

func (b *Bridge) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Bridge) handleDebugState(w http.ResponseWriter, r *http.Request) {
	phone := r.URL.Query().Get("phone")
	if phone == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "phone is required"})
		return
	}

	st, ok, err := b.states.Peek(r.Context(), phone)
	if err != nil {
		b.log.Error("failed to read state", zap.String("phone", phone), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"detail": "internal error"})
		return
	}
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "not found"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
