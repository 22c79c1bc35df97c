// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package handlers

import (
	"net/http"
	"strconv"

	"github.com/autobrr/burst/internal/notify"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationsHandler struct {
	buffer *notify.Buffer
}

func NewNotificationsHandler(buffer *notify.Buffer) *NotificationsHandler {
	return &NotificationsHandler{buffer: buffer}
}

// List returns the most recent notifications, newest first.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultNotificationLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxNotificationLimit)
	}

	RespondJSON(w, http.StatusOK, h.buffer.Recent(limit))
}
