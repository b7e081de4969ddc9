package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mmcdole/atelier/internal/domain"
	"github.com/mmcdole/atelier/internal/favorites"
	"github.com/spf13/cobra"
)

const commandTimeout = 60 * time.Second

// stderrObserver reports failed server calls; local changes already happened
type stderrObserver struct {
	domain.NoOpObserver
	w io.Writer
}

func (o stderrObserver) OnRemoteResult(res domain.RemoteResult) {
	if res.Err == nil {
		return
	}
	if res.ID != 0 {
		fmt.Fprintf(o.w, "! server %s %d failed: %v (saved locally)\n", res.Op, res.ID, res.Err)
		return
	}
	fmt.Fprintf(o.w, "! server %s failed: %v (saved locally)\n", res.Op, res.Err)
}

// promptConfirmer asks y/N on the terminal
func promptConfirmer(p *prompter) domain.ConfirmFunc {
	return func(req domain.ConfirmRequest) bool {
		answer, err := p.line(req.Prompt() + " [y/N] ")
		if err != nil {
			return false
		}
		answer = strings.ToLower(answer)
		return answer == "y" || answer == "yes"
	}
}

// withFavorites runs fn against an initialized cache and waits for the
// server calls it started before returning
func withFavorites(cmd *cobra.Command, flags *globalFlags, fn func(ctx context.Context, a *app, cache *favorites.Cache) error) error {
	a, err := newApp(flags)
	if err != nil {
		return err
	}
	defer a.Close()

	var confirmer domain.Confirmer = domain.AlwaysConfirm
	if !flags.yes {
		confirmer = promptConfirmer(newPrompter())
	}
	cache := a.newCache(true,
		favorites.WithConfirmer(confirmer),
		favorites.WithObserver(stderrObserver{w: os.Stderr}),
	)
	defer cache.Close()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	cache.Initialize(ctx)
	if err := fn(ctx, a, cache); err != nil {
		return err
	}
	cache.Wait()
	return nil
}

func parseIDs(args []string) (domain.FavoriteSet, error) {
	ids := make(domain.FavoriteSet, 0, len(args))
	for _, arg := range args {
		id, err := domain.ParseFavoriteID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func newFavoritesCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "List and edit favorite artworks",
	}
	cmd.AddCommand(
		newFavoritesListCmd(flags),
		newFavoritesAddCmd(flags),
		newFavoritesRemoveCmd(flags),
		newFavoritesToggleCmd(flags),
		newFavoritesClearCmd(flags),
		newFavoritesSyncCmd(flags),
		newFavoritesExportCmd(flags),
	)
	return cmd
}

func newFavoritesListCmd(flags *globalFlags) *cobra.Command {
	var sortFlag string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show favorite artworks",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := favorites.ParseSortMode(sortFlag)
			if err != nil {
				return err
			}
			return withFavorites(cmd, flags, func(ctx context.Context, a *app, cache *favorites.Cache) error {
				ids := cache.GetAll()
				artworks, err := a.catalog.Resolve(ctx, ids)
				if err != nil {
					return err
				}
				artworks = favorites.SortArtworks(artworks, ids, mode)

				if asJSON {
					return favorites.Export(os.Stdout, artworks)
				}
				if len(artworks) == 0 {
					fmt.Println("No favorites yet")
					return nil
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tTITLE\tARTIST\tYEAR")
				for _, art := range artworks {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", art.ID, art.Title, art.Artist, art.Year)
				}
				if missing := len(ids) - len(artworks); missing > 0 {
					fmt.Fprintf(w, "\t(%d not in the gallery)\t\t\n", missing)
				}
				return w.Flush()
			})
		},
	}
	cmd.Flags().StringVar(&sortFlag, "sort", "", "date-desc, date-asc, title, artist or year")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newFavoritesAddCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "add ID...",
		Short: "Mark artworks as favorites",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withFavorites(cmd, flags, func(ctx context.Context, a *app, cache *favorites.Cache) error {
				for _, id := range ids {
					if cache.IsFavorite(id) {
						fmt.Printf("%d is already a favorite\n", id)
						continue
					}
					cache.Add(id)
					fmt.Printf("♥ %d\n", id)
				}
				return nil
			})
		},
	}
}

func newFavoritesRemoveCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:     "remove ID...",
		Aliases: []string{"rm"},
		Short:   "Unmark favorite artworks",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args)
			if err != nil {
				return err
			}
			return withFavorites(cmd, flags, func(ctx context.Context, a *app, cache *favorites.Cache) error {
				for _, id := range ids {
					if !cache.IsFavorite(id) {
						fmt.Printf("%d is not a favorite\n", id)
						continue
					}
					if cache.Remove(id) {
						fmt.Printf("♡ %d\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newFavoritesToggleCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle ID",
		Short: "Add or remove a favorite",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := domain.ParseFavoriteID(args[0])
			if err != nil {
				return err
			}
			return withFavorites(cmd, flags, func(ctx context.Context, a *app, cache *favorites.Cache) error {
				if cache.Toggle(id) {
					fmt.Printf("♥ %d\n", id)
				} else {
					fmt.Printf("♡ %d\n", id)
				}
				return nil
			})
		},
	}
}

func newFavoritesClearCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove every favorite",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withFavorites(cmd, flags, func(ctx context.Context, a *app, cache *favorites.Cache) error {
				count := cache.GetCount()
				if count == 0 {
					fmt.Println("No favorites to clear")
					return nil
				}
				if cache.ClearAll() {
					fmt.Printf("Cleared %d favorites\n", count)
				}
				return nil
			})
		},
	}
}

func newFavoritesSyncCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Merge favorites with your account now",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			if !a.session.IsAuthenticated() {
				return errors.New("not signed in, run atelier login")
			}

			cache := a.newCache(false)
			defer cache.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			cache.Initialize(ctx)
			before := cache.GetCount()
			if err := cache.EnableSync(ctx); err != nil {
				return err
			}
			fmt.Printf("✓ %d favorites (%+d from the server)\n", cache.GetCount(), cache.GetCount()-before)
			return nil
		},
	}
}

func newFavoritesExportCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "export [FILE]",
		Short: "Write favorite artworks as JSON (\"-\" for stdout)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := favorites.ExportFileName(time.Now())
			if len(args) == 1 {
				path = args[0]
			}
			return withFavorites(cmd, flags, func(ctx context.Context, a *app, cache *favorites.Cache) error {
				ids := cache.GetAll()
				artworks, err := a.catalog.Resolve(ctx, ids)
				if err != nil {
					return err
				}
				artworks = favorites.SortArtworks(artworks, ids, favorites.SortNewest)

				if path == "-" {
					return favorites.Export(os.Stdout, artworks)
				}
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				if err := favorites.Export(f, artworks); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Printf("✓ Exported %d favorites to %s\n", len(artworks), path)
				return nil
			})
		},
	}
}
