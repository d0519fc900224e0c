// Package retry classifies errors into transient (eligible for
// redelivery) and permanent (dead-letter immediately), and owns the
// fixed backoff schedule for queue redelivery.
package retry

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

type Class string

const (
	ClassPermanent Class = "permanent"
	ClassTransient Class = "transient"
)

// Schedule is the redelivery delay for retry attempts 1..3. A failure
// past the end of the schedule dead-letters the message.
var Schedule = []time.Duration{
	180 * time.Second,
	540 * time.Second,
	1620 * time.Second,
}

// MaxRetries is the number of redeliveries before dead-lettering.
var MaxRetries = len(Schedule)

// Delay returns the redelivery delay for the given retry attempt
// (1-based) and false when the attempt exceeds the schedule.
func Delay(attempt int) (time.Duration, bool) {
	if attempt < 1 || attempt > len(Schedule) {
		return 0, false
	}
	return Schedule[attempt-1], true
}

type Decision struct {
	Class  Class
	Reason string
}

func (d Decision) IsTransient() bool {
	return d.Class == ClassTransient
}

type classifiedError struct {
	err    error
	class  Class
	reason string
}

func (e *classifiedError) Error() string {
	return e.err.Error()
}

func (e *classifiedError) Unwrap() error {
	return e.err
}

// Transient marks err as transient regardless of its shape.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{
		err:    err,
		class:  ClassTransient,
		reason: "explicit_transient",
	}
}

// Permanent marks err as permanent: dead-letter, no redelivery.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &classifiedError{
		err:    err,
		class:  ClassPermanent,
		reason: "explicit_permanent",
	}
}

// Classify decides how the consumer handles err. Anything not
// explicitly or recognizably permanent is transient: the worker marks
// validation and missing-entity failures itself, so an unknown engine
// or storage error should get its redelivery budget.
func Classify(err error) Decision {
	if err == nil {
		return Decision{Class: ClassPermanent, Reason: "nil_error"}
	}

	var marked *classifiedError
	if errors.As(err, &marked) {
		return Decision{Class: marked.class, Reason: marked.reason}
	}

	if errors.Is(err, context.Canceled) {
		return Decision{Class: ClassPermanent, Reason: "context_canceled"}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Decision{Class: ClassTransient, Reason: "context_deadline_exceeded"}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Decision{Class: ClassTransient, Reason: "net_timeout"}
	}

	lower := strings.ToLower(err.Error())
	if containsAny(lower, permanentMessageTokens) {
		return Decision{Class: ClassPermanent, Reason: "message_permanent"}
	}

	return Decision{Class: ClassTransient, Reason: "unknown_transient_default"}
}

func containsAny(msg string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(msg, token) {
			return true
		}
	}
	return false
}

var permanentMessageTokens = []string{
	"invalid argument",
	"invalid params",
	"parse error",
	"unmarshal",
	"not found",
	"constraint violation",
	"unique violation",
	"permission denied",
	"unauthorized",
}
