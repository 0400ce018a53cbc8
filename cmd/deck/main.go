// Command deck is a terminal flashcard trainer built on the deck scheduler.
// Decks live in a SQLite database and can use the FSRS or Leitner algorithm.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd(os.Stdin, os.Stdout).ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
