package handlers

import "time"

const (
	defaultListPageSize = 20
	maxListPageSize     = 100 // Maximum page size for run history

	wsWriteTimeout = 10 * time.Second
	eventBuffer    = 64
)
