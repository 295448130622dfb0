package webhooks

import (
	"io"
	"net/http"

	"github.com/developerboi1/tourclean/api/responses"
	razorpayxwebhook "github.com/developerboi1/tourclean/internal/webhooks/razorpayx"
	pkgerrors "github.com/developerboi1/tourclean/pkg/errors"
	"github.com/developerboi1/tourclean/pkg/logger"
)

const (
	headerSignature = "X-Razorpay-Signature"
	headerEventID   = "X-Razorpay-Event-Id"
)

// maxWebhookBody bounds reads of gateway payloads; RazorpayX payout events
// are a few KB at most.
const maxWebhookBody = 1 << 20

// RazorpayX ingests payout lifecycle events from the gateway. Responses are
// always 2xx once the event is verified so the gateway stops retrying;
// settlement failures surface as 5xx to trigger redelivery.
func RazorpayX(svc *razorpayxwebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook service unavailable"))
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		signature := r.Header.Get(headerSignature)
		if signature == "" {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeSignatureInvalid, "signature header missing"))
			return
		}

		outcome, err := svc.Process(ctx, body, signature, r.Header.Get(headerEventID))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"outcome": string(outcome)})
	}
}
