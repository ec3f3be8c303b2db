package accounts

import "context"

// Events is the enumerated set of account lifecycle notifications this core
// emits. Callers invoke these directly; there is no dynamic hook registration.
// Implementations must tolerate being called on the request path and should
// not block.
type Events interface {
	AccountCreated(ctx context.Context, account *Account)
	AccountLinked(ctx context.Context, account *Account, externalID string)
	PasswordChanged(ctx context.Context, account *Account)
}

// NopEvents is the default Events implementation.
type NopEvents struct{}

var _ Events = NopEvents{}

func (NopEvents) AccountCreated(context.Context, *Account)        {}
func (NopEvents) AccountLinked(context.Context, *Account, string) {}
func (NopEvents) PasswordChanged(context.Context, *Account)       {}
