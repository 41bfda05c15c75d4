package bot

import (
	tele "gopkg.in/telebot.v4"

	"github.com/rootzsu/orderbot/internal/domain"
	"github.com/rootzsu/orderbot/internal/flow"
)

func senderUser(c tele.Context) domain.User {
	u := c.Sender()
	if u == nil {
		return domain.User{}
	}
	du := domain.User{ID: u.ID, FirstName: u.FirstName}
	if u.Username != "" {
		du.Username = &u.Username
	}
	if u.LastName != "" {
		du.LastName = &u.LastName
	}
	return du
}

// eventFrom normalizes an incoming message into an engine event. It reports
// false for content the engine has no handler kind for (stickers, voice and
// the like).
func eventFrom(c tele.Context) (flow.Event, bool) {
	ev := flow.Event{From: senderUser(c)}
	m := c.Message()
	if m == nil {
		return ev, false
	}
	switch {
	case m.Photo != nil:
		ev.Kind = flow.KindPhoto
		ev.Text = m.Caption
		ev.Attachment = &flow.Attachment{
			FileID:  m.Photo.FileID,
			TypeTag: domain.ProofTypePhoto,
		}
	case m.Document != nil:
		tag := m.Document.MIME
		if tag == "" {
			tag = "document"
		}
		ev.Kind = flow.KindDocument
		ev.Text = m.Caption
		ev.Attachment = &flow.Attachment{
			FileID:  m.Document.FileID,
			TypeTag: tag,
		}
	case m.Text != "":
		ev.Kind = flow.KindText
		ev.Text = m.Text
	default:
		return ev, false
	}
	return ev, true
}
