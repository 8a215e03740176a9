package apperr

import "errors"

var ErrJournalNotFound = errors.New("journal not found")
