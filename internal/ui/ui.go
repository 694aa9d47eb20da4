// Package ui holds the interactive prompts and colored terminal output
// used by the jobdesk commands.
package ui

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/atotto/clipboard"
	"github.com/fatih/color"

	"github.com/jhavlik/jobdesk/pkg/types"
)

// ShowSuccess displays a success message
func ShowSuccess(message string) {
	green := color.New(color.FgGreen, color.Bold)
	green.Printf("✓ %s\n", message)
}

// ShowError displays an error message
func ShowError(message string) {
	red := color.New(color.FgRed, color.Bold)
	red.Printf("✗ %s\n", message)
}

// ShowInfo displays an info message
func ShowInfo(message string) {
	blue := color.New(color.FgBlue)
	blue.Println(message)
}

// ShowWarning displays a warning message
func ShowWarning(message string) {
	yellow := color.New(color.FgYellow)
	yellow.Printf("! %s\n", message)
}

// Header prints a bold section heading.
func Header(text string) {
	cyan := color.New(color.FgCyan, color.Bold)
	cyan.Printf("\n%s\n", text)
}

// Input asks for a single line of text. With required set, empty answers
// are rejected by the prompt.
func Input(message string, required bool) (string, error) {
	var answer string
	prompt := &survey.Input{Message: message}

	var opts []survey.AskOpt
	if required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}
	if err := survey.AskOne(prompt, &answer, opts...); err != nil {
		return "", err
	}
	return answer, nil
}

// Multiline asks for a multi-line block of text, ended with an empty line.
func Multiline(message string) (string, error) {
	var answer string
	prompt := &survey.Multiline{Message: message}

	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", err
	}
	return answer, nil
}

// Select asks the user to pick one of the options.
func Select(message string, options []string) (string, error) {
	var choice string
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}

	if err := survey.AskOne(prompt, &choice); err != nil {
		return "", err
	}
	return choice, nil
}

// Confirm asks a yes/no question, defaulting to no.
func Confirm(message string) (bool, error) {
	var ok bool
	prompt := &survey.Confirm{Message: message}

	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

// SelectStatus asks the user to pick an application status.
func SelectStatus(message string) (types.ApplicationStatus, error) {
	choice, err := Select(message, StatusOptions())
	if err != nil {
		return "", err
	}
	return types.ApplicationStatus(choice), nil
}

// StatusOptions lists the application statuses in pipeline order.
func StatusOptions() []string {
	return []string{
		string(types.StatusApplied),
		string(types.StatusScreening),
		string(types.StatusInterview),
		string(types.StatusOffer),
		string(types.StatusAccepted),
		string(types.StatusRejected),
		string(types.StatusWithdrawn),
	}
}

// StatusLabel renders an application status in its pipeline color.
func StatusLabel(status types.ApplicationStatus) string {
	switch status {
	case types.StatusApplied:
		return color.New(color.FgBlue).Sprint(string(status))
	case types.StatusScreening:
		return color.New(color.FgYellow).Sprint(string(status))
	case types.StatusInterview:
		return color.New(color.FgHiYellow).Sprint(string(status))
	case types.StatusOffer:
		return color.New(color.FgGreen).Sprint(string(status))
	case types.StatusAccepted:
		return color.New(color.FgGreen, color.Bold).Sprint(string(status))
	case types.StatusRejected:
		return color.New(color.FgRed).Sprint(string(status))
	case types.StatusWithdrawn:
		return color.New(color.FgHiBlack).Sprint(string(status))
	}
	return string(status)
}

// CopyToClipboard puts text on the system clipboard.
func CopyToClipboard(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return nil
}
