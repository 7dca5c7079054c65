package cli

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrAborted is returned when the user declines a confirmation.
var ErrAborted = errors.New("aborted")

// Confirmer asks a yes/no question.
type Confirmer func(title, description string) (bool, error)

// HuhConfirm asks on the terminal with a huh confirm field.
func HuhConfirm(title, description string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(description).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if errors.Is(err, huh.ErrUserAborted) {
		return false, nil
	}
	return ok, err
}

// Confirm returns nil when the action may proceed. assumeYes skips the prompt.
func Confirm(ask Confirmer, assumeYes bool, title, description string) error {
	if assumeYes {
		return nil
	}
	if ask == nil {
		ask = HuhConfirm
	}
	ok, err := ask(title, description)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAborted
	}
	return nil
}
