package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	solana "github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/grajnikanth/pda-cpi-ex-serlz/internal/metrics"
)

type wsRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type wsMessage struct {
	ID     *int            `json:"id"`
	Method string          `json:"method"`
	Result json.RawMessage `json:"result"`
	Error  *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Params *struct {
		Result struct {
			Value struct {
				Err any `json:"err"`
			} `json:"value"`
		} `json:"result"`
		Subscription uint64 `json:"subscription"`
	} `json:"params"`
}

// WSConfirmer waits on a signatureSubscribe notification over the cluster websocket.
type WSConfirmer struct {
	url    string
	commit rpc.CommitmentType
	log    zerolog.Logger
	dialer websocket.Dialer
}

func NewWSConfirmer(url string, commit rpc.CommitmentType, log zerolog.Logger) *WSConfirmer {
	return &WSConfirmer{
		url:    url,
		commit: commit,
		log:    log,
		dialer: websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// Confirm subscribes to sig and reconnects with backoff until a notification arrives or ctx ends.
func (w *WSConfirmer) Confirm(ctx context.Context, sig solana.Signature) error {
	backoff := 250 * time.Millisecond
	const maxBackoff = 5 * time.Second

	for {
		if ctx.Err() != nil {
			return timeoutErr(ctx, sig)
		}
		retry, err := w.await(ctx, sig)
		if !retry {
			return err
		}
		if ctx.Err() != nil {
			return timeoutErr(ctx, sig)
		}
		w.log.Warn().Err(err).Str("sig", sig.String()).Msg("signature subscription dropped, retrying")
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return timeoutErr(ctx, sig)
		}
		backoff = time.Duration(math.Min(float64(maxBackoff), float64(backoff)*1.8))
	}
}

// await runs one subscription; retry is true when the connection failed rather than the transaction.
func (w *WSConfirmer) await(ctx context.Context, sig solana.Signature) (retry bool, err error) {
	conn, _, err := w.dialer.DialContext(ctx, w.url, nil)
	metrics.ObserveRPC("signatureSubscribe", err)
	if err != nil {
		return true, err
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.SetReadDeadline(time.Now())
		case <-stop:
		}
	}()

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "signatureSubscribe",
		Params:  []any{sig.String(), map[string]string{"commitment": string(w.commit)}},
	}
	if err := conn.WriteJSON(req); err != nil {
		return true, err
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}
		var msg wsMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			w.log.Warn().Err(err).Msg("failed to decode websocket message")
			continue
		}
		switch {
		case msg.Error != nil:
			return false, fmt.Errorf("signatureSubscribe: %d %s", msg.Error.Code, msg.Error.Message)
		case msg.ID != nil:
			w.log.Debug().Str("sig", sig.String()).Str("subscription", string(msg.Result)).Msg("subscribed")
		case msg.Method == "signatureNotification" && msg.Params != nil:
			if e := msg.Params.Result.Value.Err; e != nil {
				return false, fmt.Errorf("%w: %s: %v", ErrTransactionFailed, sig, e)
			}
			return false, nil
		}
	}
}
