package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"github.com/valyala/fasthttp"

	"cashflow-engine/internal/config"
	"cashflow-engine/internal/engine"
	"cashflow-engine/internal/handler"
	"cashflow-engine/internal/store/sqlite"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the projection engine HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		defer st.Close()

		eng := engine.New(st, cfg.DefaultTrials, cfg.Workers)
		h := handler.New(eng)

		log.Printf("Cash-flow engine starting on port %s (store %s)", cfg.Port, cfg.DBPath)
		if err := fasthttp.ListenAndServe(":"+cfg.Port, h.Route); err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	},
}
