package chat

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DefaultGreeting = "Hi! I can answer questions about Paul Graham's essays. What would you like to know?"
	DefaultApology  = "Sorry, I couldn't get an answer right now. The server may be unreachable, please try again in a moment."
)

// Messages holds the fixed, user-facing texts the controller inserts on its own
type Messages struct {
	Greeting string `json:"greeting" yaml:"greeting"` // First assistant turn of every session
	Apology  string `json:"apology" yaml:"apology"`   // Assistant turn appended when a query fails
}

// DefaultMessages returns the built-in greeting and apology
func DefaultMessages() Messages {
	return Messages{
		Greeting: DefaultGreeting,
		Apology:  DefaultApology,
	}
}

// withDefaults fills empty fields from the built-in messages
func (m Messages) withDefaults() Messages {
	def := DefaultMessages()
	if m.Greeting == "" {
		m.Greeting = def.Greeting
	}
	if m.Apology == "" {
		m.Apology = def.Apology
	}
	return m
}

// LoadMessages reads greeting/apology overrides from a YAML file. Missing keys keep their defaults
func LoadMessages(path string) (Messages, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Messages{}, errors.Wrapf(err, "read messages file %s", path)
	}

	var m Messages
	if err := yaml.Unmarshal(b, &m); err != nil {
		return Messages{}, errors.Wrapf(err, "parse messages file %s", path)
	}

	return m.withDefaults(), nil
}
