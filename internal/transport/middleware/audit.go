package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/recordkeeper-audit/internal/service/audit"
	"github.com/heartmarshall/recordkeeper-audit/pkg/ctxutil"
)

type captureDispatcher interface {
	Dispatch(ctx context.Context, c audit.HTTPCapture) bool
}

type actorSlotKey struct{}

// actorSlot lets Auth, running inside Audit, report the resolved actor back
// to Audit after the handler returns.
type actorSlot struct {
	id uuid.UUID
}

func setActor(ctx context.Context, id uuid.UUID) {
	if slot, ok := ctx.Value(actorSlotKey{}).(*actorSlot); ok {
		slot.id = id
	}
}

// Audit returns middleware that hands one HTTP capture per request to d.
// Requests whose path starts with one of excluded run without any capture.
//
// The capture is taken after the handler returns, or panics: a panicking
// handler is recorded with status 500 and the panic is re-raised for
// Recovery. Dispatch never blocks the response.
func Audit(d captureDispatcher, excluded []string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isExcluded(r.URL.Path, excluded) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			ctx := r.Context()

			correlationID := ctxutil.RequestIDFromCtx(ctx)
			if correlationID == "" {
				correlationID = uuid.New().String()
				ctx = ctxutil.WithRequestID(ctx, correlationID)
			}

			client := ctxutil.ClientInfo{IP: ClientIP(r), UserAgent: r.UserAgent()}
			ctx = ctxutil.WithClientInfo(ctx, client)

			slot := &actorSlot{}
			ctx = context.WithValue(ctx, actorSlotKey{}, slot)

			sw := newStatusWriter(w)

			defer func() {
				rec := recover()

				status := sw.status
				if rec != nil {
					status = http.StatusInternalServerError
				}

				c := audit.HTTPCapture{
					Method:        r.Method,
					Path:          r.URL.Path,
					StatusCode:    status,
					Duration:      time.Since(start),
					IPAddress:     client.IP,
					UserAgent:     client.UserAgent,
					CorrelationID: correlationID,
				}
				if slot.id != uuid.Nil {
					id := slot.id
					c.ActorID = &id
				} else if id, ok := ctxutil.UserIDFromCtx(ctx); ok {
					c.ActorID = &id
				}
				d.Dispatch(ctx, c)

				if rec != nil {
					panic(rec)
				}
			}()

			next.ServeHTTP(sw, r.WithContext(ctx))
		})
	}
}

func isExcluded(path string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}
