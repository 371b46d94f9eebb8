package editor

import "errors"

var (
	ErrEditInProgress     = errors.New("another task is being created or edited")
	ErrNoSession          = errors.New("no task is being created or edited")
	ErrTaskNotFound       = errors.New("task not found")
	ErrNotDeletable       = errors.New("only saved, whole tasks can be deleted")
	ErrDraftNotToggleable = errors.New("an unsaved task cannot be completed")
	ErrNoPendingDelete    = errors.New("no delete awaiting confirmation")
)
