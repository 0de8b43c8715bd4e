package dialer

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonathan/aeroleads/internal/telephony"
	"github.com/jonathan/aeroleads/internal/types"
)

// ErrInvalidFormat is the per-call error for numbers that are not valid E.164.
const ErrInvalidFormat = "invalid format"

// DefaultScript is spoken when no message is given.
const DefaultScript = "Hello, this is an automated call from AeroLeads. Thank you for your time. Goodbye."

// Caller places a single outbound call.
type Caller interface {
	CreateCall(ctx context.Context, params telephony.CallParams) (*telephony.Call, error)
}

// Options configures a dispatch run.
type Options struct {
	From     string // Caller ID; the telephony client's default when empty
	Message  string // Spoken text; DefaultScript when empty and TwimlURL is unset
	TwimlURL string // Remote TwiML document instead of an inline message
	Voice    string
	OnItem   func(types.ItemOutcome)
}

// Dispatcher places calls one at a time in input order.
type Dispatcher struct {
	caller Caller
	opts   Options
}

// NewDispatcher creates a dispatcher.
func NewDispatcher(caller Caller, opts Options) *Dispatcher {
	return &Dispatcher{caller: caller, opts: opts}
}

// Requests builds one CallRequest per input entry.
func (d *Dispatcher) Requests(numbers []string) []types.CallRequest {
	message := d.opts.Message
	if message == "" && d.opts.TwimlURL == "" {
		message = DefaultScript
	}
	requests := make([]types.CallRequest, len(numbers))
	for i, n := range numbers {
		requests[i] = types.CallRequest{ToNumber: n, FromNumber: d.opts.From, Message: message}
	}
	return requests
}

// Dispatch places one call per number and returns one CallResult per entry, in
// input order, with ToNumber equal to the input entry. Invalid numbers and
// provider rejections are recorded as failed results and the loop continues.
// Nothing is deduplicated: dispatching the same list twice places every call twice.
func (d *Dispatcher) Dispatch(ctx context.Context, numbers []string) ([]types.CallResult, *types.RunSummary, error) {
	requests := d.Requests(numbers)
	results := make([]types.CallResult, 0, len(requests))
	summary := types.NewRunSummary(types.JobCalls, len(requests))

	log.Printf("[DIALER] Placing %d calls", len(requests))

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			return results, summary, err
		}

		result := d.place(ctx, req)
		if errors.Is(ctx.Err(), context.Canceled) && result.Failed() {
			return results, summary, ctx.Err()
		}
		results = append(results, result)

		outcome := types.ItemOutcome{Index: i, Key: req.ToNumber, Status: types.ItemDone, Detail: result.CallID}
		if result.Failed() {
			outcome.Status = types.ItemSkipped
			outcome.Error = result.Error
			log.Printf("[DIALER] Call to %s failed: %s", req.ToNumber, result.Error)
		} else {
			log.Printf("[DIALER] Call to %s %s (%s)", req.ToNumber, result.Status, result.CallID)
		}
		summary.Record(outcome)
		if d.opts.OnItem != nil {
			d.opts.OnItem(outcome)
		}
	}

	log.Printf("[DIALER] Done: %d placed, %d failed", summary.Succeeded, summary.Skipped)
	return results, summary, nil
}

func (d *Dispatcher) place(ctx context.Context, req types.CallRequest) types.CallResult {
	result := types.CallResult{ToNumber: req.ToNumber}

	to, ok := Normalize(req.ToNumber)
	if !ok {
		result.Status = types.CallFailed
		result.Error = ErrInvalidFormat
		return result
	}

	params := telephony.CallParams{To: to, From: req.FromNumber}
	if d.opts.TwimlURL != "" && d.opts.Message == "" {
		params.URL = d.opts.TwimlURL
	} else {
		params.Twiml = telephony.SayTwiML(req.Message, d.opts.Voice)
	}

	call, err := d.caller.CreateCall(ctx, params)
	if err != nil {
		result.Status = types.CallFailed
		result.Error = providerMessage(err)
		return result
	}

	result.CallID = call.SID
	result.Status = telephony.MapStatus(call.Status)
	if result.Failed() {
		result.Error = fmt.Sprintf("provider reported status %q", call.Status)
	}
	return result
}

// providerMessage returns the provider's own message when there is one.
func providerMessage(err error) string {
	var apiErr *telephony.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
