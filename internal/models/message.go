package models

type MessageType int

const (
	User MessageType = iota
	Assistant
	Program
)

type Message struct {
	ID      string
	Content string
	Type    MessageType
}
