package types

import "errors"

var (
	// ErrNotOwner is returned when a governance setter is invoked by anyone
	// but the owner.
	ErrNotOwner = errors.New("caller is not the owner")
	// ErrAlreadyInitialised is returned when a one-time initialiser runs twice.
	ErrAlreadyInitialised = errors.New("already initialised")
)

// AccessControl is an explicit owner capability. Engines hold it as a field
// and check it on every configuration write, there is no inherited behaviour.
type AccessControl struct {
	owner string
}

func NewAccessControl(owner string) AccessControl {
	return AccessControl{owner: owner}
}

func (a *AccessControl) Owner() string {
	return a.owner
}

// Check returns ErrNotOwner unless the caller is the current owner.
func (a *AccessControl) Check(caller string) error {
	if caller != a.owner {
		return ErrNotOwner
	}
	return nil
}

// TransferOwnership hands the capability to a new owner.
func (a *AccessControl) TransferOwnership(caller, newOwner string) error {
	if err := a.Check(caller); err != nil {
		return err
	}
	a.owner = newOwner
	return nil
}

// OneTimeInit guards setup paths that must run exactly once.
type OneTimeInit struct {
	done bool
}

// Do runs fn the first time it is called and rejects any further call.
func (o *OneTimeInit) Do(fn func() error) error {
	if o.done {
		return ErrAlreadyInitialised
	}
	o.done = true
	return fn()
}

func (o *OneTimeInit) Done() bool {
	return o.done
}
