// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package notify delivers user-facing messages. Notifications are fire-and-forget
// and are never used for control flow.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Category classifies a notification for the user.
type Category string

const (
	CategoryInfo       Category = "info"
	CategorySettings   Category = "settings"
	CategoryProtocol   Category = "protocol"
	CategoryConnection Category = "connection"
	CategoryCritical   Category = "critical"
)

// Notifier receives user-facing messages.
type Notifier interface {
	Notify(category Category, message string)
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Category, string) {}

// LogNotifier writes notifications to the application log.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.Logger.With().Str("module", "notify").Logger()}
}

func (n *LogNotifier) Notify(category Category, message string) {
	var event *zerolog.Event
	switch category {
	case CategoryCritical:
		event = n.logger.Error()
	case CategoryProtocol, CategoryConnection, CategorySettings:
		event = n.logger.Warn()
	default:
		event = n.logger.Info()
	}
	event.Str("category", string(category)).Msg(message)
}

// Notification is one delivered message.
type Notification struct {
	Category Category  `json:"category"`
	Message  string    `json:"message"`
	Time     time.Time `json:"time"`
}

// Buffer keeps the most recent notifications in memory and forwards each one to next.
type Buffer struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
	next     Notifier
}

const defaultBufferCapacity = 100

// NewBuffer creates a buffer holding up to capacity notifications. next may be nil.
func NewBuffer(capacity int, next Notifier) *Buffer {
	if capacity <= 0 {
		capacity = defaultBufferCapacity
	}
	return &Buffer{capacity: capacity, next: next}
}

func (b *Buffer) Notify(category Category, message string) {
	b.mu.Lock()
	b.items = append(b.items, Notification{Category: category, Message: message, Time: time.Now()})
	if over := len(b.items) - b.capacity; over > 0 {
		b.items = append([]Notification(nil), b.items[over:]...)
	}
	b.mu.Unlock()

	if b.next != nil {
		b.next.Notify(category, message)
	}
}

// Recent returns up to limit notifications, newest first. limit <= 0 returns all.
func (b *Buffer) Recent(limit int) []Notification {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(b.items)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]Notification, 0, n)
	for i := len(b.items) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, b.items[i])
	}
	return out
}
