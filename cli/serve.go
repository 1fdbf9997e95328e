package cli

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"invitation_server_go/config"
	"invitation_server_go/controllers"
	"invitation_server_go/data"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newServeCmd(stdout io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("host") {
				settings.Server.Host, _ = cmd.Flags().GetString("host")
			}
			if cmd.Flags().Changed("port") {
				settings.Server.Port, _ = cmd.Flags().GetInt("port")
				if err := settings.Validate(); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, settings)
		},
	}
	addListenFlags(cmd.Flags())
	return cmd
}

// addListenFlags добавляет флаги адреса, переопределяющие настройки.
func addListenFlags(flags *pflag.FlagSet) {
	flags.String("host", "", "Listen host (overrides settings)")
	flags.Int("port", 0, "Listen port (overrides settings)")
}

// describeConfigStorage возвращает, где лежит текущая конфигурация.
func describeConfigStorage(configs data.ConfigStorage, settings config.Settings) string {
	if files, ok := configs.(*data.FileConfigStorage); ok {
		return files.ConfigFile()
	}
	return settings.Storage.DatabaseURL
}

// runServer собирает зависимости и обслуживает HTTP до отмены ctx.
func runServer(ctx context.Context, settings config.Settings) error {
	configs, closer, err := openConfigStorage(settings)
	if err != nil {
		return err
	}
	defer closer.Close()

	gate, err := newGate(settings)
	if err != nil {
		return err
	}

	api := &controllers.API{
		Configs:      configs,
		Themes:       data.NewFileThemeStorage(settings.Themes.Dir),
		Gate:         gate,
		DefaultTheme: settings.Themes.Default,
		AppName:      config.AppName,
		AppVersion:   config.AppVersion,
		CORSOrigins:  settings.CORSOrigins,
	}

	server := &http.Server{
		Addr:              settings.Server.Addr(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	port := strconv.Itoa(settings.Server.Port)
	log.Printf("%s v%s", config.AppName, config.AppVersion)
	log.Printf("Сервер: http://%s", server.Addr)
	log.Printf("Приглашение: http://localhost:%s/", port)
	log.Printf("Админ-панель: http://localhost:%s/admin.html", port)
	log.Printf("Хранилище конфигурации: %s", describeConfigStorage(configs, settings))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Println("Остановка сервера...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
