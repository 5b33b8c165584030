package cron

import "errors"

var (
	ErrTaskExists        = errors.New("cron: task already exists")
	ErrTaskNotFound      = errors.New("cron: task not found")
	ErrInvalidExpression = errors.New("cron: invalid cron expression")
	ErrEmptyName         = errors.New("cron: task name is empty")
	ErrNilHandler        = errors.New("cron: task handler is nil")
	ErrAlreadyRunning    = errors.New("cron: scheduler is already running")
	ErrTaskPanic         = errors.New("cron: task panicked")
)
