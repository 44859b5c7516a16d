// Package dispatch runs a list of named actions in order.
package dispatch

import (
	"github.com/arthur-debert/switchtower/pkg/errors"
	"github.com/arthur-debert/switchtower/pkg/logging"
)

// Invoker runs one action by name.
type Invoker interface {
	Invoke(name string) error
}

// Run invokes each action in order and stops at the first failure. The
// returned error carries ACTION_NOT_FOUND or ACTION_FAILED and names the
// action. Pretend mode is the invoker's business.
func Run(inv Invoker, actions []string) error {
	logger := logging.GetLogger("dispatch")

	for i, name := range actions {
		logger.Info().Str("action", name).Int("step", i+1).Int("of", len(actions)).Msg("Dispatching action")

		done := logging.LogOperationStart(logger, name)
		err := inv.Invoke(name)
		done()
		if err == nil {
			continue
		}

		if errors.IsErrorCode(err, errors.ErrActionNotFound) || errors.IsErrorCode(err, errors.ErrActionFailed) {
			return err
		}
		return errors.Wrapf(err, errors.ErrActionFailed, "action '%s' failed", name).
			WithDetail("action", name)
	}
	return nil
}
