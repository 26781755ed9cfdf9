package learning

import "errors"

// Domain-rule violations. All are expected, recoverable failures translated
// into user-facing messages by the API layer; none wraps another.
var (
	ErrNotFound = errors.New("not found")

	// identity exclusivity
	ErrAlreadyAuthor       = errors.New("the user is the author of this entity")
	ErrAlreadyCollaborator = errors.New("the user already collaborates on this entity")
	ErrAlreadyStudent      = errors.New("the user is already a student of this course")
	ErrNotCollaborator     = errors.New("the user does not collaborate on this entity")
	ErrNotStudent          = errors.New("the user is not a student of this course")

	// registration
	ErrRegistrationDisabled = errors.New("registration is disabled on this course")

	// reuse policy
	ErrNotReusable             = errors.New("this item is not reusable")
	ErrNotReusableByAuthorOnly = errors.New("this item may only be reused by its author")

	// structure
	ErrAlreadyLinked = errors.New("this item is already linked")
	ErrNotLinked     = errors.New("this item is not linked")
	ErrReadOnly      = errors.New("an archived course is read-only")

	// objectives
	ErrObjectiveAlreadyExists = errors.New("an objective with this ability already exists")
	ErrObjectiveAbilityEmpty  = errors.New("an objective ability cannot be empty")
	ErrAlreadyInModel         = errors.New("this objective is already attached to this entity")
	ErrNotInModel             = errors.New("this objective is not attached to this entity")
	ErrAlreadyValidated       = errors.New("the student has already validated this objective")
	ErrNotValidated           = errors.New("the student has not validated this objective")
)
