package actors

import (
	"time"

	"gator-commons/internal/services"
	"gator-commons/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"go.uber.org/zap"
)

type (
	AddEntryMsg struct {
		AuthorName    string
		Message       string
		Organization  string
		Email         string
		IsEmailPublic bool
	}

	ListEntriesMsg struct {
		Limit int
	}
)

type GuestbookActor struct {
	base
	guestbook *services.GuestbookService
}

func NewGuestbookActor(guestbook *services.GuestbookService, metrics *utils.MetricsCollector, logger *zap.Logger, storeTimeout time.Duration) actor.Actor {
	return &GuestbookActor{
		base:      newBase("guestbook_actor", metrics, logger, storeTimeout),
		guestbook: guestbook,
	}
}

func (a *GuestbookActor) Receive(context actor.Context) {
	msg := context.Message()
	if a.lifecycle(msg) {
		return
	}

	start := time.Now()
	ctx, cancel := a.storeContext()
	defer cancel()

	switch msg := msg.(type) {
	case *AddEntryMsg:
		entry, err := a.guestbook.AddEntry(ctx, msg.AuthorName, msg.Message, msg.Organization, msg.Email, msg.IsEmailPublic)
		a.respond(context, "add_guestbook_entry", start, entry, err)

	case *ListEntriesMsg:
		entries, err := a.guestbook.ListEntries(ctx, msg.Limit)
		a.respond(context, "list_guestbook_entries", start, entries, err)

	case *GetCountsMsg:
		count, err := a.guestbook.CountEntries(ctx)
		a.respond(context, "count_guestbook_entries", start, count, err)

	default:
		a.unknown(context, msg)
	}
}
