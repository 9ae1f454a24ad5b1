package app

import "errors"

// Messages on these errors are shown to API clients as-is.
var (
	ErrInvalidCredentials = errors.New("Invalid credentials")
	ErrUserExists         = errors.New("User already exists")
	ErrEmailTaken         = errors.New("Email already in use")
	ErrTokenInvalid       = errors.New("Token is not valid")
	ErrUserNotFound       = errors.New("User not found")

	ErrJobNotFound         = errors.New("Job not found")
	ErrCompanyNotFound     = errors.New("Company not found")
	ErrApplicationNotFound = errors.New("Application not found")
	ErrResumeNotFound      = errors.New("No resume attached to this application")

	ErrAlreadyApplied   = errors.New("You have already applied for this job")
	ErrAlreadyInCompany = errors.New("You already belong to a company")
	ErrOwnRoleChange    = errors.New("You cannot change your own role")
	ErrFileTooLarge     = errors.New("File too large")
)

// InputError reports a request that is well-formed but semantically invalid.
type InputError struct {
	Message string
}

func (e *InputError) Error() string { return e.Message }

func invalidInput(msg string) error {
	return &InputError{Message: msg}
}

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrJobNotFound) ||
		errors.Is(err, ErrCompanyNotFound) ||
		errors.Is(err, ErrApplicationNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrResumeNotFound)
}

// IsConflict reports whether err is a rejected write that the client can fix.
func IsConflict(err error) bool {
	return errors.Is(err, ErrUserExists) ||
		errors.Is(err, ErrEmailTaken) ||
		errors.Is(err, ErrAlreadyApplied) ||
		errors.Is(err, ErrAlreadyInCompany) ||
		errors.Is(err, ErrOwnRoleChange) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrFileTooLarge)
}
