package telemetry

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"

	"csvsink/internal/constants"
	"csvsink/internal/logger"
	"csvsink/pkg/errors"
)

// Report sends the anonymous usage ping. It is launched as a detached
// goroutine, never awaited, and every failure is swallowed: the ping
// has no effect on correctness or exit status.
func Report(version string, log logger.Logger) {
	defer func() {
		if err := errors.RecoverPanic(recover()); err != nil {
			log.Debugw("Collection task panicked", "error", err)
		}
	}()

	params := url.Values{}
	params.Set("e", "se")
	params.Set("aid", "csvsink")
	params.Set("se_ca", "csvsink")
	params.Set("se_ac", "open")
	params.Set("se_la", version)

	endpoint := fmt.Sprintf("%s?%s", constants.CollectorEndpoint, params.Encode())
	client := &http.Client{Timeout: constants.CollectorTimeout}

	op := func() error {
		resp, err := client.Get(endpoint)
		if err != nil {
			return err
		}
		resp.Body.Close()
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), constants.CollectorMaxRetries)
	if err := backoff.Retry(op, policy); err != nil {
		log.Debugw("Collection request failed", "error", err)
	}
}
