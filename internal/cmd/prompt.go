package cmd

import (
	"strings"

	"github.com/chzyer/readline"
)

// prompter asks for the values missing from the command line. The terminal is
// only opened when something has to be asked.
type prompter struct {
	rl *readline.Instance
}

func (p *prompter) open() error {
	if p.rl != nil {
		return nil
	}

	rl, err := readline.New("")
	if err != nil {
		return err
	}
	p.rl = rl

	return nil
}

func (p *prompter) ask(label string, value *string) error {
	if *value != "" {
		return nil
	}
	if err := p.open(); err != nil {
		return err
	}

	p.rl.SetPrompt(label + ": ")
	line, err := p.rl.Readline()
	if err != nil {
		return err
	}
	*value = strings.TrimSpace(line)

	return nil
}

func (p *prompter) secret(label string, value *string) error {
	if *value != "" {
		return nil
	}
	if err := p.open(); err != nil {
		return err
	}

	password, err := p.rl.ReadPassword(label + ": ")
	if err != nil {
		return err
	}
	*value = string(password)

	return nil
}

func (p *prompter) Close() error {
	if p.rl == nil {
		return nil
	}
	return p.rl.Close()
}
