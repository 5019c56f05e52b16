package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"personal-website/internal/client"
	"personal-website/internal/model"
)

var PostsCmd = &cli.Command{
	Name:    "posts",
	Aliases: []string{"p"},
	Usage:   "read and write posts through a running blog API",
	Subcommands: []*cli.Command{
		{
			Name:  "list",
			Usage: "list posts",
			Flags: []cli.Flag{
				APIURLFlag,
				&cli.BoolFlag{Name: "json", Usage: "print the raw JSON list"},
			},
			Action: func(cCtx *cli.Context) error {
				posts, err := client.New(cCtx.String(APIURLFlag.Name)).List(cCtx.Context)
				if err != nil {
					return err
				}
				if cCtx.Bool("json") {
					return printJSON(posts)
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
				fmt.Fprintln(w, "POST ID\tTITLE\tTAGS")
				for _, p := range posts {
					fmt.Fprintf(w, "%s\t%s\t%v\n", p.PostID, p.Title, p.Tags)
				}
				return w.Flush()
			},
		},
		{
			Name:      "get",
			Usage:     "print the HTML of a post",
			ArgsUsage: "<post-id>",
			Flags:     []cli.Flag{APIURLFlag},
			Action: func(cCtx *cli.Context) error {
				if cCtx.NArg() != 1 {
					return cli.Exit("expected exactly one post id", 2)
				}
				html, err := client.New(cCtx.String(APIURLFlag.Name)).Get(cCtx.Context, cCtx.Args().First())
				if err != nil {
					return err
				}
				fmt.Println(html)
				return nil
			},
		},
		{
			Name:  "put",
			Usage: "create a post, or replace it when --id is given",
			Flags: []cli.Flag{
				APIURLFlag,
				&cli.StringFlag{Name: "id", Usage: "post id to replace"},
				&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "post title", Required: true},
				&cli.StringFlag{Name: "html-file", Aliases: []string{"f"}, Usage: "file containing the post HTML", Required: true},
				&cli.StringSliceFlag{Name: "tag", Usage: "tag (repeatable)"},
			},
			Action: func(cCtx *cli.Context) error {
				html, err := os.ReadFile(cCtx.String("html-file"))
				if err != nil {
					return fmt.Errorf("reading html file: %w", err)
				}
				req := model.PostRequest{
					Title: cCtx.String("title"),
					HTML:  string(html),
					Tags:  cCtx.StringSlice("tag"),
				}
				if id := cCtx.String("id"); id != "" {
					req.PostID = &id
				}

				res, err := client.New(cCtx.String(APIURLFlag.Name)).Put(cCtx.Context, req)
				if err != nil {
					return err
				}
				if res.Location != "" {
					fmt.Printf("%s (%s)\n", res.Message, res.Location)
				} else {
					fmt.Println(res.Message)
				}
				return nil
			},
		},
	},
}

var TagsCmd = &cli.Command{
	Name:  "tags",
	Usage: "count posts per tag",
	Flags: []cli.Flag{APIURLFlag},
	Action: func(cCtx *cli.Context) error {
		counts, err := client.New(cCtx.String(APIURLFlag.Name)).TagCounts(cCtx.Context)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TAG\tPOSTS")
		for _, c := range counts {
			fmt.Fprintf(w, "%s\t%d\n", c.Tag, c.Count)
		}
		return w.Flush()
	},
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
