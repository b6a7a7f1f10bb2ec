package router

import (
	"github.com/ThreeDotsLabs/watermill/message"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
)

// SkipPermanentFailures is a handler middleware that acks messages whose
// failure cannot be fixed by redelivery. Validation and not-found failures
// would poison the queue through every retry; logging and dropping them is
// the right outcome because the job publisher records the attempt.
func SkipPermanentFailures(log *logger.Logger) message.HandlerMiddleware {
	return func(h message.HandlerFunc) message.HandlerFunc {
		return func(msg *message.Message) ([]*message.Message, error) {
			msgs, err := h(msg)
			if err == nil {
				return msgs, nil
			}

			if IsPermanentFailure(err) {
				log.Warnw("dropping message after permanent failure",
					"message_uuid", msg.UUID,
					"error", err,
				)
				return nil, nil
			}
			return msgs, err
		}
	}
}

// IsPermanentFailure reports whether the error cannot be fixed by
// redelivery. Business logic errors don't get better on retry; unknown
// errors are treated as transient.
func IsPermanentFailure(err error) bool {
	return ierr.IsValidation(err) ||
		ierr.IsNotFound(err) ||
		ierr.IsInvalidOperation(err) ||
		ierr.IsConfigurationMissing(err)
}
