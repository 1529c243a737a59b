package service

import "errors"

var (
	ErrTicketNotFound     = errors.New("ticket not found")
	ErrInvalidStatus      = errors.New("invalid ticket status")
	ErrUnknownField       = errors.New("unknown form field")
	ErrDialogBusy         = errors.New("a dialog submission is in progress")
	ErrDialogNotOpen      = errors.New("dialog not open")
	ErrSubmitPending      = errors.New("submission already in progress")
	ErrAutoFillInProgress = errors.New("order lookup already in progress")
	ErrInvalidSortField   = errors.New("invalid sort field")
	ErrRespondNotAllowed  = errors.New("ticket is not open for responses")
)
