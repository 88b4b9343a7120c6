package main

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"stratforge/internal/config"
	"stratforge/internal/format"
	"stratforge/internal/params"
)

var errAborted = errors.New("generation aborted")

// strategyPrompts are asked in this order by --interactive.
var strategyPrompts = []struct {
	name string
	help string
}{
	{"imbalance_threshold", "Order book imbalance ratio that triggers a signal, between 0 and 1"},
	{"min_volume_threshold", "Minimum traded volume before a signal is considered"},
	{"lookback_periods", "Number of market updates kept for the rolling window"},
	{"signal_cooldown_ms", "Minimum milliseconds between two signals"},
}

// promptRequest asks for whatever the command line left open: the
// description when empty, then every strategy parameter not overridden.
func promptRequest(description string, overrides params.Set, cfg *config.Config) (string, params.Set, error) {
	if description == "" {
		prompt := &survey.Multiline{Message: "Describe the trading strategy:"}
		if err := survey.AskOne(prompt, &description, survey.WithValidator(validateDescriptionAnswer)); err != nil {
			return "", nil, translateSurveyErr(err)
		}
	}

	out := overrides.Clone()
	defaults := cfg.StrategyValues()
	for _, p := range strategyPrompts {
		if out.Has(p.name) {
			continue
		}
		var answer string
		prompt := &survey.Input{
			Message: p.name + ":",
			Help:    p.help,
			Default: format.Value(p.name, defaults[p.name]),
		}
		if err := survey.AskOne(prompt, &answer, survey.WithValidator(paramValidator(p.name))); err != nil {
			return "", nil, translateSurveyErr(err)
		}
		out[p.name] = params.ParseValue(answer)
	}

	proceed := true
	confirm := &survey.Confirm{Message: "Generate the project?", Default: true}
	if err := survey.AskOne(confirm, &proceed); err != nil {
		return "", nil, translateSurveyErr(err)
	}
	if !proceed {
		return "", nil, errAborted
	}
	return description, out, nil
}

func validateDescriptionAnswer(ans interface{}) error {
	s, ok := ans.(string)
	if !ok {
		return fmt.Errorf("expected text, got %T", ans)
	}
	_, err := params.ValidateDescription(s)
	return err
}

// paramValidator checks one answer with the same rules as --set.
func paramValidator(name string) survey.Validator {
	return func(ans interface{}) error {
		s, ok := ans.(string)
		if !ok {
			return fmt.Errorf("expected text, got %T", ans)
		}
		_, err := params.Validate(params.Set{name: params.ParseValue(s)})
		return err
	}
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return errAborted
	}
	return err
}
