package pq

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"
)

// QueueConfig config for creating an instance of a Queue
type QueueConfig struct {
	InitialCapacity int `yaml:"initialCapacity"`
}

func (c *QueueConfig) validate() error {
	if c.InitialCapacity < 0 {
		return errors.New("InitialCapacity should not be negative")
	}
	return nil
}

// DispatcherConfig config for creating an instance of a Dispatcher
type DispatcherConfig struct {
	IngressChannelSize  int         `yaml:"ingressChannelSize"`
	DispatchChannelSize int         `yaml:"dispatchChannelSize"`
	MaxMessages         int         `yaml:"maxMessages"`
	Queue               QueueConfig `yaml:"queue"`

	// Logger receives lifecycle events. Nil discards them.
	Logger *slog.Logger `yaml:"-"`
}

func (c *DispatcherConfig) validate() error {
	if c.MaxMessages <= 0 {
		return errors.New("MaxMessages should be greater than 0")
	}
	if c.IngressChannelSize < 0 || c.DispatchChannelSize < 0 {
		return errors.New("channel sizes should not be negative")
	}
	return c.Queue.validate()
}

// LoadDispatcherConfig decodes a YAML document into a DispatcherConfig. Fields
// left out of the document keep the defaults below.
//
//	ingressChannelSize: 100
//	dispatchChannelSize: 0
//	maxMessages: 1000
//	queue:
//	  initialCapacity: 16
func LoadDispatcherConfig(r io.Reader) (*DispatcherConfig, error) {
	config := &DispatcherConfig{
		IngressChannelSize: 100,
		MaxMessages:        1000,
		Queue:              QueueConfig{InitialCapacity: DefaultInitialCapacity},
	}
	if err := yaml.NewDecoder(r).Decode(config); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode dispatcher config: %w", err)
	}
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("invalid dispatcher config: %w", err)
	}
	return config, nil
}
