package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sky-flux/deck/internal/config"
	"github.com/sky-flux/deck/internal/logger"
	"github.com/sky-flux/deck/store"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	in     *bufio.Reader
	out    io.Writer
	now    func() time.Time

	configPath string
	dbPath     string
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	a := &app{
		in:  bufio.NewReader(in),
		out: out,
		now: time.Now,
	}

	root := &cobra.Command{
		Use:          "deck",
		Short:        "Spaced-repetition flashcards in the terminal",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
	}
	root.SetOut(out)
	root.SetErr(out)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.deck/config.yaml)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "", "database file, overrides the config")

	root.AddCommand(
		a.newCmd(),
		a.addCmd(),
		a.listCmd(),
		a.showCmd(),
		a.removeCmd(),
		a.deleteCmd(),
		a.studyCmd(),
		a.retentionCmd(),
		a.optimizeCmd(),
		a.migrateCmd(),
		a.exportCmd(),
		a.importCmd(),
	)
	return root
}

func (a *app) init() error {
	path := a.configPath
	if path == "" {
		path = config.GetConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	if a.dbPath != "" {
		cfg.Database = a.dbPath
	}
	a.cfg = cfg

	log, err := logger.InitWithOptions(cfg.Log.File, cfg.Log.Pretty)
	if err != nil {
		return err
	}
	a.logger = log
	return nil
}

// withStore opens the database for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(*store.Store) error) (err error) {
	st, err := store.Open(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, st.Close())
	}()
	return fn(st)
}

// withDeck loads the named deck, runs fn and, if fn reports a change,
// saves the deck back.
func (a *app) withDeck(ctx context.Context, name string, fn func(deckHandle) (bool, error)) error {
	return a.withStore(ctx, func(st *store.Store) error {
		h, err := a.load(ctx, st, name)
		if err != nil {
			return err
		}
		changed, err := fn(h)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return h.save(ctx, st)
	})
}

func (a *app) load(ctx context.Context, st *store.Store, name string) (deckHandle, error) {
	rec, err := st.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	h, err := a.decode(rec.Algorithm, rec.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode deck %q: %w", name, err)
	}
	return h, nil
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...) //nolint:errcheck // terminal output
}
