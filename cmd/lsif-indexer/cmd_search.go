package main

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/mizchi/lsif-indexer/internal/fuzzy"
	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/typefilter"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "fuzzy name search, optionally narrowed by kind or signature shape",
		ArgsUsage: "[query]",
		Flags: []cli.Flag{
			outputFormatFlag(),
			&cli.StringFlag{Name: "kind", Usage: "restrict to a symbol kind (Function, Struct, Interface, ...)"},
			&cli.IntFlag{Name: "limit", Usage: "maximum number of results (0 = use the configured default)"},
			&cli.StringFlag{Name: "returns", Usage: "keep symbols whose declared return type contains T"},
			&cli.StringFlag{Name: "takes", Usage: "keep symbols whose parameter list contains T"},
			&cli.StringFlag{Name: "implements", Usage: "keep symbols that implement or extend T"},
			&cli.StringFlag{Name: "has-field", Usage: "keep symbols with a field/property whose detail contains T"},
			&cli.StringFlag{Name: "signature", Usage: "keep symbols whose detail matches this regular expression"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			pred, err := buildTypePredicate(c)
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			var locs []location
			if q := c.Args().First(); q != "" {
				limit := c.Int("limit")
				if limit <= 0 {
					limit = cfg.Search.DefaultLimit
				}
				idx := fuzzy.Build(eng.graph.AllSymbols())
				for _, m := range idx.Search(q, limit) {
					locs = append(locs, location{Symbol: m.Symbol, Note: fmt.Sprintf("%s %.0f", m.MatchType, m.Score)})
				}
			} else {
				locs = locationsOf(eng.graph.AllSymbols())
			}

			if kind := c.String("kind"); kind != "" {
				locs = filterLocsByKind(locs, kind)
			}
			if pred != nil {
				locs = filterLocsByPredicate(eng.graph, locs, pred)
			}
			if len(locs) == 0 {
				return cli.Exit("", 1)
			}

			out, err := formatLocations(c.String("format"), locs)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func buildTypePredicate(c *cli.Context) (typefilter.Predicate, error) {
	var preds []typefilter.Predicate
	if v := c.String("returns"); v != "" {
		preds = append(preds, typefilter.Returns(v))
	}
	if v := c.String("takes"); v != "" {
		preds = append(preds, typefilter.Takes(v))
	}
	if v := c.String("implements"); v != "" {
		preds = append(preds, typefilter.Implements(v))
	}
	if v := c.String("has-field"); v != "" {
		preds = append(preds, typefilter.HasField(v))
	}
	if v := c.String("signature"); v != "" {
		p, err := typefilter.Signature(v)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}
	if len(preds) == 0 {
		return nil, nil
	}
	return typefilter.And(preds...), nil
}

func filterLocsByKind(locs []location, kind string) []location {
	var out []location
	for _, l := range locs {
		if strings.EqualFold(l.Symbol.Kind.String(), kind) {
			out = append(out, l)
		}
	}
	return out
}

func filterLocsByPredicate(g graph.Graph, locs []location, pred typefilter.Predicate) []location {
	var out []location
	for _, l := range locs {
		if pred(g, l.Symbol) {
			out = append(out, l)
		}
	}
	return out
}
