package main

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sky-flux/deck"
	"github.com/sky-flux/deck/content"
	"github.com/sky-flux/deck/store"
)

// study reviews due cards until the deck has nothing due, input ends, ctx
// is cancelled or limit reviews are done. The deck is saved after every
// review.
func (a *app) study(ctx context.Context, st *store.Store, h deckHandle, limit int) error {
	// An item under review is in neither partition, so answers are looked
	// up in a snapshot taken up front.
	ask := a.ask(h.templates())
	reviewed := 0
	defer func() {
		a.printf("Reviewed %d card(s).\n", reviewed)
	}()

	for limit <= 0 || reviewed < limit {
		if ctx.Err() != nil {
			return nil
		}

		err := h.CompleteOne(ask)
		var nothingDue *deck.NothingDueError
		switch {
		case err == nil:
			reviewed++
			if err := h.save(ctx, st); err != nil {
				return err
			}
		case errors.Is(err, deck.ErrNoItems):
			a.printf("Deck %q is empty.\n", h.Name())
			return nil
		case errors.As(err, &nothingDue):
			a.printf("Nothing due. Next review in %s.\n", nothingDue.Wait.Round(time.Second))
			return nil
		case errors.Is(err, io.EOF):
			a.printf("\n")
			return nil
		default:
			return err
		}
	}
	return nil
}

// ask returns the interaction that shows a prompt on a.out and reads one
// line per blank from a.in, then reports whether the answer was right.
func (a *app) ask(answers map[deck.ID]content.Template) deck.Interaction {
	return func(id deck.ID, p content.Prompt) (content.Response, error) {
		a.printf("\n%s\n", p.Render())

		blanks := p.Blanks()
		resp := make(content.Response, 0, blanks)
		for i := range blanks {
			if blanks > 1 {
				a.printf("%d> ", i+1)
			} else {
				a.printf("> ")
			}
			line, err := a.in.ReadString('\n')
			if err != nil && line == "" {
				return nil, err
			}
			resp = append(resp, strings.TrimRight(line, "\r\n"))
		}

		if tmpl, ok := answers[id]; ok {
			if tmpl.Check(resp) {
				a.printf("Correct.\n")
			} else {
				a.printf("Expected: %s\n", strings.Join(tmpl.Answer, ", "))
			}
		}
		return resp, nil
	}
}
