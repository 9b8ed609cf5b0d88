// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// prompt.go - Line editing for line-mode prompts.
package cli

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

// ErrAborted is returned when the user cancels a prompt with Ctrl+C or EOF.
var ErrAborted = errors.New("input aborted")

// Prompter reads one line of input per call.
type Prompter interface {
	Prompt(label string) (string, error)
	// PasswordPrompt reads without echoing.
	PasswordPrompt(label string) (string, error)
	Close() error
}

// LinePrompter reads from the terminal with liner. Nothing is kept in
// history, since answers include credentials.
type LinePrompter struct {
	line *liner.State
}

// NewLinePrompter puts the terminal into line-editing mode. Call Close to
// restore it.
func NewLinePrompter() *LinePrompter {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &LinePrompter{line: line}
}

// Prompt reads a visible line.
func (p *LinePrompter) Prompt(label string) (string, error) {
	s, err := p.line.Prompt(label)
	return s, mapPromptErr(err)
}

// PasswordPrompt reads a line without echo.
func (p *LinePrompter) PasswordPrompt(label string) (string, error) {
	s, err := p.line.PasswordPrompt(label)
	return s, mapPromptErr(err)
}

// Close restores the terminal.
func (p *LinePrompter) Close() error {
	return p.line.Close()
}

func mapPromptErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, liner.ErrPromptAborted), errors.Is(err, io.EOF):
		return ErrAborted
	default:
		return err
	}
}
