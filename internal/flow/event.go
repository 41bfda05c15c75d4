package flow

import "github.com/rootzsu/orderbot/internal/domain"

// Kind classifies an incoming event.
type Kind string

const (
	KindText     Kind = "text"
	KindButton   Kind = "button"
	KindPhoto    Kind = "photo"
	KindDocument Kind = "document"
)

// Attachment is a transport file reference carried by photo and document
// events. The file itself stays on the transport side.
type Attachment struct {
	FileID  string
	TypeTag string
}

// Event is one normalized user interaction. The transport adapter fills it
// in and hands it to the engine; the engine never sees transport types.
type Event struct {
	From domain.User
	Kind Kind

	// Text is set for KindText and for captions on attachment events.
	Text string

	// Button and Payload are set for KindButton.
	Button  string
	Payload string

	// Attachment is set for KindPhoto and KindDocument.
	Attachment *Attachment
}
