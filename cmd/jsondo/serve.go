package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/jsondo/pkg/adapters/bus"
	"github.com/aretw0/jsondo/pkg/adapters/fs"
	"github.com/aretw0/jsondo/pkg/adapters/httpapi"
	"github.com/aretw0/jsondo/pkg/core"
	"github.com/aretw0/jsondo/pkg/integration"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Listen for json_do events over HTTP",
	Long: `Serve sets up a storage entry, subscribes it to json_do events and
accepts events at POST /events/{type}.

  curl -X POST localhost:8123/events/json_do \
    -d '{"path": "rooms.kitchen", "todo": "insert", "value": {"on": true}}'

The document can be read back at GET /document and GET /document/{path}.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger := slog.Default()
		b := bus.New(viper.GetInt("buffer"), logger)

		var store *fs.Store
		reg := integration.NewRegistry(b,
			integration.WithLogger(logger),
			integration.WithNotify(viper.GetBool("notify")),
			integration.WithStoreFactory(func(e integration.Entry, l *slog.Logger) core.Store {
				store = fs.NewStore(fs.Config{Path: e.StoragePath(), Strict: viper.GetBool("strict"), Logger: l})
				return store
			}),
		)

		entry := integration.Flow{}.StepUser(map[string]string{
			integration.ConfStoragePath: viper.GetString(integration.ConfStoragePath),
		}).Entry
		if err := reg.Setup(ctx, *entry); err != nil {
			return err
		}
		defer reg.UnloadAll()

		svc, _ := reg.Service(entry.ID)

		b.Listen("json_storage_*", func(ctx context.Context, e core.Event) {
			logger.Info("storage event", "type", e.Type, "data", e.Data)
		})

		if err := b.Start(ctx); err != nil {
			return err
		}

		if viper.GetBool("watch") {
			changes, err := store.Watch(ctx)
			if err != nil {
				return err
			}
			go func() {
				for e := range changes {
					if err := b.Fire(ctx, e); err != nil {
						logger.Warn("dropping change event", "error", err)
					}
				}
			}()
		}

		srv := &http.Server{
			Addr:              viper.GetString("addr"),
			Handler:           httpapi.NewServer(b, svc, logger),
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", srv.Addr, "storage_path", entry.StoragePath())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http shutdown", "error", err)
		}
		// Events accepted before shutdown still reach the entry's listener.
		err := b.Stop(shutdownCtx)
		reg.UnloadAll()
		return err
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "127.0.0.1:8123", "Listen address")
	serveCmd.Flags().Int("buffer", bus.DefaultBufferSize, "Event queue size")
	serveCmd.Flags().Bool("watch", false, "Report external edits of the storage file")
	serveCmd.Flags().Bool("notify", true, "Fire json_storage_updated after each change")

	for _, name := range []string{"addr", "buffer", "watch", "notify"} {
		_ = viper.BindPFlag(name, serveCmd.Flags().Lookup(name))
	}
}
