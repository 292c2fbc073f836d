package console

import "fmt"

type ConsoleOutput struct{}

func New() *ConsoleOutput { return &ConsoleOutput{} }

func (c *ConsoleOutput) Publish(topic string, payload []byte) error {
	fmt.Printf("%s %s\n", topic, payload)
	return nil
}

func (c *ConsoleOutput) Close() error { return nil }
