package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mmcdole/atelier/internal/catalog"
	"github.com/mmcdole/atelier/internal/domain"
	"github.com/spf13/cobra"
)

func newArtworksCmd(flags *globalFlags) *cobra.Command {
	var filter catalog.Filter
	var showFacets bool

	cmd := &cobra.Command{
		Use:   "artworks [ID]",
		Short: "Browse the gallery",
		Long: `List the gallery, optionally filtered, or show a single artwork.

Filters combine; --search matches titles and artists loosely (accents and
case are ignored) and descriptions literally.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(flags)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
			defer cancel()

			favs := a.store.LoadFavorites()

			if len(args) == 1 {
				id, err := domain.ParseFavoriteID(args[0])
				if err != nil {
					return err
				}
				art, err := a.catalog.Artwork(ctx, id)
				if err != nil {
					return err
				}
				printArtwork(*art, favs.Contains(art.ID))
				return nil
			}

			artworks, fromCache, err := a.catalog.Artworks(ctx)
			if err != nil {
				return err
			}
			if fromCache {
				fmt.Fprintln(os.Stderr, "! server unreachable, showing the saved gallery")
			}

			if showFacets {
				printFacets(catalog.FacetsOf(artworks))
				return nil
			}

			matches := filter.Apply(artworks)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tID\tTITLE\tARTIST\tYEAR\tCATEGORY")
			for _, art := range matches {
				mark := " "
				if favs.Contains(art.ID) {
					mark = "♥"
				}
				fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\t%s\n", mark, art.ID, art.Title, art.Artist, art.Year, art.Category)
			}
			if err := w.Flush(); err != nil {
				return err
			}
			if !filter.IsZero() {
				fmt.Printf("%d of %d artworks\n", len(matches), len(artworks))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&filter.Artist, "artist", "", "only this artist")
	f.StringVar(&filter.Century, "century", "", `only this century, e.g. "19th century" or "Unknown"`)
	f.StringVar(&filter.Category, "category", "", "only this category")
	f.StringVarP(&filter.Search, "search", "s", "", "free text search")
	f.BoolVar(&showFacets, "facets", false, "list the artists, centuries and categories to filter by")
	return cmd
}

func printArtwork(a domain.Artwork, favorite bool) {
	mark := "♡"
	if favorite {
		mark = "♥"
	}
	fmt.Printf("%s %s\n", mark, a.Title)
	fmt.Printf("  %s, %s\n", a.Artist, a.Year)
	for _, field := range []struct{ label, value string }{
		{"Category", a.Category},
		{"Technique", a.Technique},
		{"Dimensions", a.Dimensions},
	} {
		if field.value != "" {
			fmt.Printf("  %-11s %s\n", field.label+":", field.value)
		}
	}
	if a.Description != "" {
		fmt.Printf("\n  %s\n", a.Description)
	}
}

func printFacets(f catalog.Facets) {
	fmt.Println("Artists:    " + strings.Join(f.Artists, ", "))
	fmt.Println("Centuries:  " + strings.Join(f.Centuries, ", "))
	fmt.Println("Categories: " + strings.Join(f.Categories, ", "))
}
