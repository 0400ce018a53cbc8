package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sky-flux/deck"
	"github.com/sky-flux/deck/content"
	"github.com/sky-flux/deck/store"
)

func (a *app) newCmd() *cobra.Command {
	var (
		algo      string
		retention float64
	)
	cmd := &cobra.Command{
		Use:   "new NAME",
		Short: "Create an empty deck",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("algorithm") {
				algo = a.cfg.Algorithm
			}
			if !cmd.Flags().Changed("retention") {
				retention = a.cfg.TargetRetention
			}
			name := args[0]
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				if _, err := st.Get(cmd.Context(), name); err == nil {
					return fmt.Errorf("deck %q already exists", name)
				} else if !errors.Is(err, store.ErrNotFound) {
					return err
				}
				h, err := a.newHandle(name, algo, retention)
				if err != nil {
					return err
				}
				if err := h.save(cmd.Context(), st); err != nil {
					return err
				}
				a.printf("Created %s deck %q (retention %.2f)\n", algo, name, retention)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&algo, "algorithm", "a", algoFSRS, "scheduling algorithm: fsrs or leitner")
	cmd.Flags().Float64VarP(&retention, "retention", "r", 0.9, "target retention in (0, 1]")
	return cmd
}

func (a *app) addCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add NAME PROMPT [ANSWER...]",
		Short: "Add a card; mark each blank in PROMPT with {}",
		Example: `  deck add capitals "Capital of France is {}" Paris
  deck add math "{} + {} = 4" 2 2`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tmpl, err := content.NewTemplate(args[1], args[2:]...)
			if err != nil {
				return err
			}
			return a.withDeck(cmd.Context(), args[0], func(h deckHandle) (bool, error) {
				id := h.Create(tmpl)
				a.printf("Added %s\n", id)
				return true, nil
			})
		},
	}
}

func (a *app) listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List decks with their item and due counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				recs, err := st.List(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "NAME\tALGORITHM\tITEMS\tDUE\tRETENTION") //nolint:errcheck // terminal output
				for _, rec := range recs {
					h, err := a.load(ctx, st, rec.Name)
					if err != nil {
						return err
					}
					h.AdvanceDue()
					fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%.2f\n", //nolint:errcheck // terminal output
						h.Name(), h.algorithm(), h.Len(), h.DueCount(), h.TargetRetention())
				}
				return tw.Flush()
			})
		},
	}
}

func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Show every card of a deck in due order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withDeck(cmd.Context(), args[0], func(h deckHandle) (bool, error) {
				now := a.now()
				tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tDUE\tPROMPT") //nolint:errcheck // terminal output
				for _, r := range h.rows() {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", r.ID, dueLabel(r.Due, now), r.Prompt) //nolint:errcheck // terminal output
				}
				return false, tw.Flush()
			})
		},
	}
}

func dueLabel(due, now time.Time) string {
	if !due.After(now) {
		return "now"
	}
	return "in " + due.Sub(now).Round(time.Minute).String()
}

func (a *app) removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME ID",
		Short: "Remove one card from a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := deck.ParseID(args[1])
			if err != nil {
				return fmt.Errorf("invalid id %q: %w", args[1], err)
			}
			return a.withDeck(cmd.Context(), args[0], func(h deckHandle) (bool, error) {
				if !h.Remove(id) {
					return false, fmt.Errorf("no card %s in deck %q", id, h.Name())
				}
				a.printf("Removed %s\n", id)
				return true, nil
			})
		},
	}
}

func (a *app) deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a deck and all its cards",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				if err := st.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				a.printf("Deleted %q\n", args[0])
				return nil
			})
		},
	}
}

func (a *app) studyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "study NAME",
		Short: "Review due cards until none are left",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				h, err := a.load(ctx, st, args[0])
				if err != nil {
					return err
				}
				return a.study(ctx, st, h, limit)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "stop after this many reviews (0 for no limit)")
	return cmd
}

func (a *app) retentionCmd() *cobra.Command {
	var optimal bool
	cmd := &cobra.Command{
		Use:   "retention NAME [VALUE]",
		Short: "Show or set a deck's target retention",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDeck(ctx, args[0], func(h deckHandle) (bool, error) {
				var target float64
				switch {
				case optimal:
					r, err := h.optimalRetention(ctx)
					if err != nil {
						return false, err
					}
					target = r
				case len(args) == 2:
					r, err := strconv.ParseFloat(args[1], 64)
					if err != nil {
						return false, fmt.Errorf("invalid retention %q: %w", args[1], err)
					}
					target = r
				default:
					a.printf("%.2f\n", h.TargetRetention())
					return false, nil
				}
				if err := h.SetTargetRetention(target); err != nil {
					return false, err
				}
				a.printf("Target retention set to %.2f\n", target)
				return true, nil
			})
		},
	}
	cmd.Flags().BoolVar(&optimal, "optimal", false, "use the retention with the lowest simulated workload (fsrs only)")
	return cmd
}

func (a *app) optimizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "optimize NAME",
		Short: "Refit the scheduling model to the deck's review history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withDeck(ctx, args[0], func(h deckHandle) (bool, error) {
				if err := h.Optimize(ctx); err != nil {
					return false, err
				}
				a.printf("Optimized %q\n", h.Name())
				return true, nil
			})
		},
	}
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate NAME ALGORITHM",
		Short: "Switch a deck to another algorithm, dropping its review history",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return a.withStore(ctx, func(st *store.Store) error {
				h, err := a.load(ctx, st, args[0])
				if err != nil {
					return err
				}
				dst, err := h.migrate(args[1], a)
				if err != nil {
					return err
				}
				if err := dst.save(ctx, st); err != nil {
					return err
				}
				a.printf("Migrated %q from %s to %s (%d cards, history dropped)\n",
					dst.Name(), h.algorithm(), dst.algorithm(), dst.Len())
				return nil
			})
		},
	}
}

func (a *app) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export NAME",
		Short: "Print a deck as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				rec, err := st.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, rec.Payload, "", "  "); err != nil {
					return err
				}
				a.printf("%s\n", buf.Bytes())
				return nil
			})
		},
	}
}

func (a *app) importCmd() *cobra.Command {
	var algo string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Load a deck exported as JSON, replacing any deck of the same name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0]) //#nosec G304 -- user-chosen import file
			if err != nil {
				return err
			}
			h, err := a.decode(algo, data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", args[0], err)
			}
			return a.withStore(cmd.Context(), func(st *store.Store) error {
				if err := h.save(cmd.Context(), st); err != nil {
					return err
				}
				a.printf("Imported %q (%d cards)\n", h.Name(), h.Len())
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&algo, "algorithm", "a", algoFSRS, "algorithm the file was exported from")
	return cmd
}
