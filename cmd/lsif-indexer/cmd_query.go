package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/mizchi/lsif-indexer/internal/callhier"
	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/query"
)

func queryCommand() *cli.Command {
	return &cli.Command{
		Name:      "query",
		Usage:     "evaluate a pattern against the graph",
		ArgsUsage: "<pattern>",
		Flags:     []cli.Flag{outputFormatFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("usage: lsif-indexer query <pattern>", 2)
			}
			pat, err := query.Parse(c.Args().First())
			if err != nil {
				return cli.Exit(err.Error(), 2)
			}

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			matches, err := query.Execute(eng.graph, pat)
			if err != nil {
				fmt.Fprintln(os.Stderr, "warning:", err)
			}
			if len(matches) == 0 {
				return cli.Exit("", 1)
			}

			var locs []location
			for _, m := range matches {
				for name, sym := range m.Bindings {
					locs = append(locs, location{Symbol: sym, Note: name})
				}
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

func referencesCommand() *cli.Command {
	return &cli.Command{
		Name:      "references",
		Usage:     "list every symbol referencing the given id",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{outputFormatFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("usage: lsif-indexer references <id>", 2)
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			refs := eng.graph.FindReferences(c.Args().First())
			if len(refs) == 0 {
				return cli.Exit("", 1)
			}
			out, err := formatLocations(c.String("format"), locationsOf(refs))
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func definitionCommand() *cli.Command {
	return &cli.Command{
		Name:      "definition",
		Usage:     "find the declaration a symbol id resolves to",
		ArgsUsage: "<id>",
		Flags:     []cli.Flag{outputFormatFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return cli.Exit("usage: lsif-indexer definition <id>", 2)
			}
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			id := c.Args().First()
			sym, ok := lookupSymbol(eng.cache, eng.graph, id)
			if !ok {
				// unknown id: an empty result, not an error.
				return cli.Exit("", 1)
			}
			out, err := formatLocations(c.String("format"), []location{{Symbol: sym}})
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		},
	}
}

func callHierarchyCommand() *cli.Command {
	return &cli.Command{
		Name:      "call-hierarchy",
		Usage:     "walk the caller/callee tree of a symbol",
		ArgsUsage: "<id> <incoming|outgoing|full>",
		Flags: []cli.Flag{
			outputFormatFlag(),
			&cli.IntFlag{Name: "max-depth", Value: 10, Usage: "maximum number of Reference hops to walk"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return cli.Exit("usage: lsif-indexer call-hierarchy <id> <incoming|outgoing|full>", 2)
			}
			id := c.Args().Get(0)
			direction := c.Args().Get(1)
			if direction != "incoming" && direction != "outgoing" && direction != "full" {
				return cli.Exit(fmt.Sprintf("unknown call-hierarchy direction %q", direction), 2)
			}

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			maxDepth := c.Int("max-depth")
			var hits []graph.TraversalHit
			switch direction {
			case "incoming":
				hits, err = callhier.Incoming(eng.graph, id, maxDepth)
			case "outgoing":
				hits, err = callhier.Outgoing(eng.graph, id, maxDepth)
			case "full":
				var in, out []graph.TraversalHit
				in, err = callhier.Incoming(eng.graph, id, maxDepth)
				if err != nil {
					fmt.Fprintln(os.Stderr, "warning:", err)
				}
				out, err = callhier.Outgoing(eng.graph, id, maxDepth)
				hits = append(in, out...)
			}
			if err != nil {
				fmt.Fprintln(os.Stderr, "warning:", err)
			}
			if len(hits) == 0 {
				return cli.Exit("", 1)
			}

			locs := make([]location, len(hits))
			for i, h := range hits {
				locs[i] = location{Symbol: h.Symbol, Note: fmt.Sprintf("depth %d", h.Depth)}
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

func pathsCommand() *cli.Command {
	return &cli.Command{
		Name:      "paths",
		Usage:     "enumerate every simple call path between two symbols",
		ArgsUsage: "<from> <to>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "max-depth", Value: graph.SafetyDepthCeiling, Usage: "maximum number of edges per path"},
			&cli.BoolFlag{Name: "json", Usage: "print paths as a JSON array of id arrays"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 {
				return cli.Exit("usage: lsif-indexer paths <from> <to>", 2)
			}

			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			paths := callhier.Paths(eng.graph, c.Args().Get(0), c.Args().Get(1), c.Int("max-depth"))
			if len(paths) == 0 {
				return cli.Exit("", 1)
			}

			if c.Bool("json") {
				return printJSON(paths)
			}
			for _, p := range paths {
				for i, id := range p {
					if i > 0 {
						fmt.Print(" -> ")
					}
					fmt.Print(id)
				}
				fmt.Println()
			}
			return nil
		},
	}
}
