package form

import (
	"context"
	"errors"
)

// ErrPasswordChangeUnsupported is returned until the API offers a
// password change endpoint.
var ErrPasswordChangeUnsupported = errors.New("password change is not available yet")

// PasswordForm is the change-password section of the profile page. It holds
// no state and sends nothing.
type PasswordForm struct{}

// Fields lists the inputs the page renders for this form.
func (PasswordForm) Fields() []string {
	return []string{"password", "confirmPassword"}
}

func (PasswordForm) Submit(context.Context) error {
	return ErrPasswordChangeUnsupported
}
