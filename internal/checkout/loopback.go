package checkout

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/healthhub/shopctl/internal/browser"
)

// defaultAuthorizeTimeout bounds how long the flow waits for the user to
// finish (or abandon) the gateway checkout in the browser.
const defaultAuthorizeTimeout = 5 * time.Minute

// LoopbackAuthorizer completes gateway payments through the system browser:
// it serves a one-shot checkout page from an ephemeral localhost server,
// opens it, and waits for the gateway's completion callback. The completion
// is resolved exactly once; a dismissed or timed-out checkout yields
// ErrAuthorizationAbandoned.
type LoopbackAuthorizer struct {
	KeyID        string        // gateway public key embedded in the checkout page
	MerchantName string        // shown in the gateway UI
	Timeout      time.Duration // default defaultAuthorizeTimeout
	OpenBrowser  func(url string) error
}

// Authorize implements Authorizer.
func (a *LoopbackAuthorizer) Authorize(ctx context.Context, order PaymentOrder) (*Completion, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("start callback listener: %w", err)
	}
	defer listener.Close() //nolint:errcheck

	port := listener.Addr().(*net.TCPAddr).Port
	state := rand.Text()

	doneCh := make(chan *Completion, 1)
	errCh := make(chan error, 1)
	var once sync.Once

	resolve := func(c *Completion, err error) bool {
		resolved := false
		once.Do(func() {
			resolved = true
			if err != nil {
				errCh <- err
			} else {
				doneCh <- c
			}
		})
		return resolved
	}

	r := chi.NewRouter()
	r.Use(requestLogger)

	r.Get("/pay", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, checkoutPage, a.KeyID, order.OrderID, order.Amount, order.Currency, a.MerchantName, state) //nolint:errcheck
	})

	r.Post("/complete", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusForbidden)
			return
		}
		var c Completion
		if err := json.NewDecoder(req.Body).Decode(&c); err != nil || c.OrderID == "" || c.PaymentID == "" {
			http.Error(w, "malformed completion", http.StatusBadRequest)
			return
		}
		if !resolve(&c, nil) {
			http.Error(w, "payment already completed", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, completedPage) //nolint:errcheck
	})

	r.Post("/dismiss", func(w http.ResponseWriter, req *http.Request) {
		if req.URL.Query().Get("state") != state {
			http.Error(w, "invalid state", http.StatusForbidden)
			return
		}
		resolve(nil, ErrAuthorizationAbandoned)
		w.WriteHeader(http.StatusNoContent)
	})

	srv := &http.Server{Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if srvErr := srv.Serve(listener); srvErr != nil && srvErr != http.ErrServerClosed {
			resolve(nil, srvErr)
		}
	}()
	defer func() {
		shutCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutCtx) //nolint:errcheck
	}()

	payURL := "http://127.0.0.1:" + strconv.Itoa(port) + "/pay?state=" + state

	open := a.OpenBrowser
	if open == nil {
		open = browser.Open
	}
	if err := open(payURL); err != nil {
		fmt.Printf("Could not open browser. Visit this URL to complete payment:\n  %s\n", payURL)
	}

	timeout := a.Timeout
	if timeout == 0 {
		timeout = defaultAuthorizeTimeout
	}

	select {
	case c := <-doneCh:
		log.Debug().Str("paymentId", c.PaymentID).Msg("payment authorization completed")
		return c, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		resolve(nil, ctx.Err())
		return nil, ErrAuthorizationAbandoned
	case <-time.After(timeout):
		resolve(nil, ErrAuthorizationAbandoned)
		return nil, ErrAuthorizationAbandoned
	}
}

// requestLogger logs callback-server requests the same way the main client
// logs backend calls.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("callback server request")
		next.ServeHTTP(w, r)
	})
}

// checkoutPage hosts the gateway's checkout.js. The handler posts the
// completion triplet back to /complete; dismissing the modal posts /dismiss.
// Format args: key id, order id, amount, currency, merchant name, state.
const checkoutPage = `<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>Complete your payment</title>
  <script src="https://checkout.razorpay.com/v1/checkout.js"></script>
</head>
<body>
  <p>Opening secure payment window&hellip;</p>
  <script>
    var state = %[6]q;
    var rzp = new Razorpay({
      key: %[1]q,
      order_id: %[2]q,
      amount: %[3]v,
      currency: %[4]q,
      name: %[5]q,
      handler: function (response) {
        fetch("/complete?state=" + state, {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify(response)
        }).then(function () { document.body.innerHTML = "<p>Payment received. You can close this tab.</p>"; });
      },
      modal: {
        ondismiss: function () {
          fetch("/dismiss?state=" + state, { method: "POST" });
        }
      }
    });
    rzp.open();
  </script>
</body>
</html>`

const completedPage = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Payment complete</title></head>
<body><p>Payment received. Return to your terminal.</p></body>
</html>`
