package shell

import (
	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
)

// SurveyConfirm asks prompt on the terminal. The default answer is no.
func SurveyConfirm(prompt string) (bool, error) {
	ok := false
	if err := survey.AskOne(&survey.Confirm{Message: prompt, Default: false}, &ok); err != nil {
		return false, errors.Wrap(err, "failed to read confirmation")
	}

	return ok, nil
}
