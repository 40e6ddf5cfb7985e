// Copyright (c) 2026 GiftMe. All rights reserved.
// Author: dev@giftme.app

package validate

import (
	"context"
	"net/http"

	"github.com/giftme/giftme/internal/platform/apperr"
	"github.com/giftme/giftme/internal/platform/ctxutil"
)

// Predicate reports whether a rule passes. It may perform I/O (a store
// lookup, a provider call) and must honour the context.
//
// Returning an error is distinct from returning false: false is a normal
// validation failure surfaced to the caller, while an error means the check
// itself could not run and the whole chain fails closed with a 500.
type Predicate func(ctx context.Context) (bool, error)

// Rule is one named check in a [Chain]. Rules are immutable once built.
type Rule struct {
	// Field is the JSON field the rule guards.
	Field string

	// Message is the client-facing text used when the rule fails.
	Message string

	// Status classifies the failure (400 for shape problems, 409 for
	// uniqueness conflicts, ...). The chain's final HTTP status is taken
	// from the FIRST failing rule.
	Status int

	// Check decides the rule. A nil Check always passes.
	Check Predicate
}

// Chain evaluates an ordered list of [Rule] values.
//
// # Evaluation Policy
//
// Run evaluates EVERY rule and collects every failure (collect-all). The
// alternative — stopping at the first failure — saves a little work but
// forces clients into a fix-one-resubmit loop, so it is deliberately not
// done here. The response status comes from the first failing rule.
//
// # Concurrency
//
// A Chain is built per operation and must not be shared between requests.
type Chain struct {
	rules     []Rule
	onSuccess func(ctx context.Context) error
}

// NewChain returns an empty rule chain.
func NewChain() *Chain {
	return &Chain{}
}

// Rule appends a fully specified rule and returns the chain for fluent use.
func (c *Chain) Rule(rule Rule) *Chain {
	c.rules = append(c.rules, rule)
	return c
}

// Field appends a synchronous 400-classified rule.
func (c *Chain) Field(field, message string, ok bool) *Chain {
	return c.Rule(Rule{
		Field:   field,
		Message: message,
		Status:  http.StatusBadRequest,
		Check:   func(context.Context) (bool, error) { return ok, nil },
	})
}

// CheckAsync appends an asynchronous rule with an explicit status
// classification. This is the entry point for I/O-backed checks.
func (c *Chain) CheckAsync(field, message string, status int, check Predicate) *Chain {
	return c.Rule(Rule{Field: field, Message: message, Status: status, Check: check})
}

// OnSuccess registers the continuation to run once every rule has passed.
// Run returns the continuation's result.
func (c *Chain) OnSuccess(fn func(ctx context.Context) error) *Chain {
	c.onSuccess = fn
	return c
}

// Run folds over the rule list, then either invokes the success
// continuation or returns a collected validation error.
func (c *Chain) Run(ctx context.Context) error {
	var failures []apperr.FieldError
	status := 0

	for _, rule := range c.rules {
		if rule.Check == nil {
			continue
		}

		ok, err := rule.Check(ctx)
		if err != nil {
			// The check itself broke (store down, provider unreachable).
			// Fail closed rather than letting unvalidated data through.
			ctxutil.GetLogger(ctx).Error("validation_rule_errored",
				"field", rule.Field, "error", err.Error())
			return apperr.Internal(err)
		}

		if !ok {
			failures = append(failures, apperr.FieldError{Field: rule.Field, Message: rule.Message})
			if status == 0 {
				status = rule.Status
			}
		}
	}

	if len(failures) > 0 {
		if status == 0 {
			status = http.StatusBadRequest
		}
		return apperr.ValidationErrorWithStatus(status, "Validation failed", failures...)
	}

	if c.onSuccess != nil {
		return c.onSuccess(ctx)
	}

	return nil
}
