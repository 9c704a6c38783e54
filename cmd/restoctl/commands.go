package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"restotrack/internal/forms"
	"restotrack/internal/httpapi"
	"restotrack/shared/go/models"
)

type cli struct {
	svc httpapi.RestaurantService
	out io.Writer
}

func (c *cli) dispatch(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "list":
		return c.list(ctx, rest)
	case "show":
		return c.show(ctx, rest)
	case "add":
		return c.add(ctx, rest)
	case "rate":
		return c.rate(ctx, rest)
	case "delete":
		return c.delete(ctx, rest)
	case "genres":
		return c.genres(ctx)
	case "tier":
		return c.tier(rest)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var f models.Filter
	fs.StringVar(&f.SearchTerm, "q", "", "text to search in name, address and notes")
	fs.StringVar(&f.Genre, "genre", "", "exact genre")
	fs.IntVar(&f.MinRating, "min-rating", 0, "minimum rating (0 = any)")
	fs.IntVar(&f.PriceTier, "price", 0, "price tier (0 = any)")
	fs.StringVar(&f.Where, "where", "", "expression filter, e.g. 'rating >= 4 && foodGenre == \"Ramen\"'")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items, total, err := c.svc.List(ctx, f)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tGENRE\tRATING\tPRICE\tADDRESS")
	for _, r := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Name, r.FoodGenre, forms.Stars(r.Rating), forms.TierLabel(r.PriceRange), r.Location.Address)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%d of %d restaurants\n", len(items), total)
	return nil
}

func (c *cli) show(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: show <id>")
	}
	r, err := c.svc.Get(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(c.out, "%s\n", r.Name)
	fmt.Fprintf(c.out, "  id:       %s\n", r.ID)
	fmt.Fprintf(c.out, "  genre:    %s\n", r.FoodGenre)
	fmt.Fprintf(c.out, "  rating:   %s\n", forms.Stars(r.Rating))
	if r.PriceRange != nil {
		fmt.Fprintf(c.out, "  price:    %s %s\n", forms.TierLabel(r.PriceRange), forms.PriceLabel(r.PriceRangeText))
	}
	fmt.Fprintf(c.out, "  address:  %s\n", r.Location.Address)
	fmt.Fprintf(c.out, "  map:      %s\n", forms.MapsURL(r.Location.Address))
	if r.Notes != "" {
		fmt.Fprintf(c.out, "  notes:    %s\n", r.Notes)
	}
	for _, link := range r.Links {
		fmt.Fprintf(c.out, "  link:     %s\n", link)
	}
	fmt.Fprintf(c.out, "  added:    %s\n", r.CreatedAt.Format("2006-01-02"))
	return nil
}

type linkList []string

func (l *linkList) String() string { return strings.Join(*l, ",") }

func (l *linkList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func (c *cli) add(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var (
		form     forms.Restaurant
		lat, lng float64
		lo, hi   float64
		tier     int
		rating   int
		links    linkList
	)
	fs.StringVar(&form.Name, "name", "", "restaurant name")
	fs.StringVar(&form.Address, "address", "", "address")
	fs.StringVar(&form.FoodGenre, "genre", "", "food genre")
	fs.Float64Var(&lat, "lat", forms.DefaultLat, "latitude")
	fs.Float64Var(&lng, "lng", forms.DefaultLng, "longitude")
	fs.Float64Var(&lo, "min", 0, "minimum spend in yen")
	fs.Float64Var(&hi, "max", 0, "maximum spend in yen")
	fs.IntVar(&tier, "tier", 0, "price tier 1-5 when no min/max is given")
	fs.IntVar(&rating, "rating", 0, "rating 1-5")
	fs.StringVar(&form.Notes, "notes", "", "free-text notes")
	fs.Var(&links, "link", "related URL (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if set["min"] != set["max"] {
		return errors.New("add: -min and -max must be given together")
	}

	form.Lat, form.Lng = &lat, &lng
	form.Links = links
	if set["min"] {
		form.PriceRangeText = &models.PriceRangeText{Min: lo, Max: hi}
	} else if tier != 0 {
		form.PriceRange = &tier
	}
	if rating != 0 {
		form.Rating = &rating
	}

	created, err := c.svc.Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, created.ID)
	return nil
}

func (c *cli) rate(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: rate <id> <1-5>")
	}
	stars, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rating must be a number: %w", err)
	}

	current, err := c.svc.Get(ctx, args[0])
	if err != nil {
		return err
	}
	form := forms.FromRestaurant(current)
	form.Rating = forms.ToggleRating(form.Rating, stars)

	updated, err := c.svc.Update(ctx, current.ID, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s %s\n", updated.Name, forms.Stars(updated.Rating))
	return nil
}

func (c *cli) delete(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: delete <id>")
	}
	return c.svc.Delete(ctx, args[0])
}

func (c *cli) genres(ctx context.Context) error {
	genres, err := c.svc.Genres(ctx)
	if err != nil {
		return err
	}
	for _, g := range genres {
		fmt.Fprintln(c.out, g)
	}
	return nil
}

func (c *cli) tier(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: tier <min> <max>")
	}
	lo, errLo := strconv.ParseFloat(args[0], 64)
	hi, errHi := strconv.ParseFloat(args[1], 64)
	if errLo != nil || errHi != nil {
		return errors.New("min and max must be numbers")
	}
	tier := forms.PriceTier(lo, hi)
	fmt.Fprintf(c.out, "%d %s\n", tier, forms.TierLabel(&tier))
	return nil
}
