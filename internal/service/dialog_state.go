package service

// DialogKind identifies which dialog is open.
type DialogKind string

const (
	DialogNone    DialogKind = "none"
	DialogCreate  DialogKind = "create"
	DialogView    DialogKind = "view"
	DialogRespond DialogKind = "respond"
)

// DialogState is the single dialog open on the support page. Only the types in
// this file implement it, so at most one dialog can ever be open.
type DialogState interface {
	Kind() DialogKind
	isDialogState()
}

// NoDialog means no dialog is open.
type NoDialog struct{}

// CreateDialogState holds the open create-ticket dialog.
type CreateDialogState struct {
	Dialog *CreateTicketDialog
}

// ViewDialogState shows the details panel of a ticket.
type ViewDialogState struct {
	TicketID string
}

// RespondDialogState holds the open respond dialog.
type RespondDialogState struct {
	TicketID string
	Dialog   *RespondDialog
}

func (NoDialog) Kind() DialogKind           { return DialogNone }
func (CreateDialogState) Kind() DialogKind  { return DialogCreate }
func (ViewDialogState) Kind() DialogKind    { return DialogView }
func (RespondDialogState) Kind() DialogKind { return DialogRespond }

func (NoDialog) isDialogState()           {}
func (CreateDialogState) isDialogState()  {}
func (ViewDialogState) isDialogState()    {}
func (RespondDialogState) isDialogState() {}

// dialogTicketID returns the ticket a dialog is about, if any.
func dialogTicketID(state DialogState) string {
	switch s := state.(type) {
	case ViewDialogState:
		return s.TicketID
	case RespondDialogState:
		return s.TicketID
	}
	return ""
}

// submitting reports whether the open dialog has a submission in flight.
func submitting(state DialogState) bool {
	switch s := state.(type) {
	case CreateDialogState:
		return s.Dialog.Pending()
	case RespondDialogState:
		return s.Dialog.Pending()
	}
	return false
}
