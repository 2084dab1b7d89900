package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/pinboard/internal/server"
	"github.com/matzehuels/pinboard/pkg/heights"
)

// serveCommand runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		images  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout engine over HTTP",
		Long: `Serve the layout engine over HTTP.

Clients POST a board to /v1/layout, /v1/visible or /v1/render. With --images,
items that reference an image take their height from that file; decoded
sizes are cached in the backend chosen in the config file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.config.Server.Addr
			}
			if !cmd.Flags().Changed("images") {
				images = c.config.Server.Images
			}
			return c.runServe(cmd.Context(), addr, images, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&images, "images", "", "directory item images are read from")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the image dimensions cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, addr, images string, noCache bool) error {
	if images != "" {
		if fi, err := os.Stat(images); err != nil || !fi.IsDir() {
			return fmt.Errorf("image directory %s is not a directory", images)
		}
	} else {
		printWarning("No --images directory; items without a height use the fallback")
	}

	store, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer store.Close()

	srv := server.New(server.Config{
		Addr:     addr,
		Defaults: c.config.Board,
		ImageDir: images,
		Resolver: heights.NewResolver(heights.WithCache(store, keyer), heights.WithLogger(c.Logger)),
		Logger:   c.Logger,
	})

	printInfo("Serving on %s", StyleLink.Render("http://"+displayAddr(addr)))
	return srv.ListenAndServe(ctx)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
