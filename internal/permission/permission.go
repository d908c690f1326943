// Package permission decides whether an actor may perform an action on an
// account or product. Every function here is pure: it only looks at the
// actor, the action and the target it is given, and anything not explicitly
// allowed is denied.
package permission

import (
	"errors"

	"github.com/prn-tf/marketplace/internal/domain"
)

// Denial sentinels returned by Decision.Err.
var (
	// ErrNotAuthenticated is returned when an anonymous actor is denied.
	ErrNotAuthenticated = errors.New("authentication credentials were not provided")

	// ErrForbidden is returned when a known actor is denied.
	ErrForbidden = errors.New("permission denied")
)

// Action identifies an operation subject to authorization.
type Action int

const (
	ActionUnknown Action = iota
	ActionListAccounts
	ActionRetrieveAccount
	ActionRegisterAccount
	ActionNewestAccounts
	ActionUpdateAccount
	ActionManageAccount
	ActionListProducts
	ActionRetrieveProduct
	ActionCreateProduct
	ActionUpdateProduct
)

var actionNames = map[Action]string{
	ActionListAccounts:    "list_accounts",
	ActionRetrieveAccount: "retrieve_account",
	ActionRegisterAccount: "register_account",
	ActionNewestAccounts:  "newest_accounts",
	ActionUpdateAccount:   "update_account",
	ActionManageAccount:   "manage_account",
	ActionListProducts:    "list_products",
	ActionRetrieveProduct: "retrieve_product",
	ActionCreateProduct:   "create_product",
	ActionUpdateProduct:   "update_product",
}

// String returns the action name used in logs and metrics.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Outcome is the result kind of an authorization check.
type Outcome int

const (
	// Deny outcomes come first so the zero value never allows.
	Unauthenticated Outcome = iota
	Forbidden
	Allow
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Allow:
		return "allow"
	case Forbidden:
		return "forbidden"
	default:
		return "unauthenticated"
	}
}

// Decision is the result of evaluating an action.
type Decision struct {
	Outcome Outcome
	Action  Action
}

// Allowed reports whether the action may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Err returns nil when allowed, otherwise a *DeniedError wrapping the
// matching denial sentinel.
func (d Decision) Err() error {
	if d.Outcome == Allow {
		return nil
	}
	return &DeniedError{Decision: d}
}

// DeniedError reports a denied decision.
type DeniedError struct {
	Decision Decision
}

// Error implements the error interface.
func (e *DeniedError) Error() string {
	return e.Unwrap().Error() + ": " + e.Decision.Action.String()
}

// Unwrap returns ErrForbidden or ErrNotAuthenticated.
func (e *DeniedError) Unwrap() error {
	if e.Decision.Outcome == Forbidden {
		return ErrForbidden
	}
	return ErrNotAuthenticated
}

// Target is the object an action applies to. Only the field matching the
// action is consulted.
type Target struct {
	Account *domain.Account
	Product *domain.Product
}

// Authorize evaluates the actor-level rule of an action, before any target
// is loaded. A nil actor is anonymous.
func Authorize(actor *domain.Account, action Action) Decision {
	switch action {
	case ActionListAccounts, ActionRetrieveAccount, ActionRegisterAccount, ActionNewestAccounts,
		ActionListProducts, ActionRetrieveProduct:
		return allow(action)

	case ActionCreateProduct:
		if actor == nil {
			return deny(actor, action)
		}
		if actor.IsSeller {
			return allow(action)
		}
		return deny(actor, action)

	case ActionUpdateProduct, ActionUpdateAccount:
		if actor == nil {
			return deny(actor, action)
		}
		return allow(action)

	case ActionManageAccount:
		if actor != nil && actor.IsSuperuser {
			return allow(action)
		}
		return deny(actor, action)
	}

	return deny(actor, action)
}

// AuthorizeObject evaluates both the actor-level and the object-level rule of
// an action against a loaded target.
func AuthorizeObject(actor *domain.Account, action Action, target Target) Decision {
	if d := Authorize(actor, action); !d.Allowed() {
		return d
	}

	switch action {
	case ActionListAccounts, ActionRetrieveAccount, ActionRegisterAccount, ActionNewestAccounts,
		ActionListProducts, ActionRetrieveProduct:
		return allow(action)

	case ActionCreateProduct:
		return allow(action)

	case ActionUpdateProduct:
		if target.Product != nil && target.Product.IsOwnedBy(actor) {
			return allow(action)
		}

	case ActionUpdateAccount:
		if target.Account != nil && target.Account.Is(actor) {
			return allow(action)
		}

	case ActionManageAccount:
		if target.Account != nil {
			return allow(action)
		}
	}

	return deny(actor, action)
}

func allow(action Action) Decision {
	return Decision{Outcome: Allow, Action: action}
}

func deny(actor *domain.Account, action Action) Decision {
	if actor == nil {
		return Decision{Outcome: Unauthenticated, Action: action}
	}
	return Decision{Outcome: Forbidden, Action: action}
}
