package template

import "errors"

var (
	ErrNotFound         = errors.New("template not found")
	ErrDuplicateTrigger = errors.New("trigger word already in use")
)
