// Package cli implementa la línea de comandos de gestión: un subcomando por tipo de entidad
// que recorre el mismo pipeline de administración que usan los clientes web.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/udistrital/gestion_ofertas_mid/internal/admin"
	"github.com/udistrital/gestion_ofertas_mid/internal/apiclient"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
)

type globalFlags struct {
	api         string
	token       string
	profesional string
	timeout     time.Duration
	retries     int
}

// runtime es lo que cada comando necesita: el recurso remoto y el pipeline armado.
type runtime struct {
	schema   *catalog.Schema
	resource *apiclient.Resource
	pipeline *admin.Pipeline
	out      io.Writer
	errOut   io.Writer
}

// NewRootCmd construye el comando raíz. in se usa para confirmaciones y el modo browse.
func NewRootCmd(in io.Reader) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:           "gestion",
		Short:         "Gestiona alternancias, empleos y formaciones desde la terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.api, "api", envOr("GESTION_API_URL", "http://localhost:8080"), "URL base del MID")
	root.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("GESTION_TOKEN"), "token bearer")
	root.PersistentFlags().StringVar(&flags.profesional, "profesional", os.Getenv("GESTION_PROFESIONAL_ID"), "id del profesional (desarrollo)")
	root.PersistentFlags().DurationVar(&flags.timeout, "timeout", 15*time.Second, "timeout por petición")
	root.PersistentFlags().IntVar(&flags.retries, "retries", 2, "reintentos de lecturas ante fallas transitorias")

	reader := bufio.NewReader(in)
	for _, schema := range catalog.All() {
		root.AddCommand(kindCmd(schema, flags, reader))
	}
	return root
}

func kindCmd(schema *catalog.Schema, flags *globalFlags, in *bufio.Reader) *cobra.Command {
	rt := &runtime{schema: schema}
	cmd := &cobra.Command{
		Use:     schema.Path,
		Aliases: []string{schema.Kind},
		Short:   schema.Label,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			session, err := admin.NewSession(flags.api, flags.token, flags.profesional)
			if err != nil {
				return fmt.Errorf("sesión inválida: %w", err)
			}
			rt.out = cmd.OutOrStdout()
			rt.errOut = cmd.ErrOrStderr()
			client := apiclient.New(session, apiclient.Options{Timeout: flags.timeout, Retries: flags.retries})
			rt.resource = client.Resource(schema)
			rt.pipeline = admin.NewPipeline(cmd.Context(), schema, rt.resource, admin.Options{
				Confirmer: promptConfirmer(in, rt.out),
				Notifier: admin.NotifierFunc(func(n admin.Notification) {
					printNotification(rt.errOut, n)
				}),
			})
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if rt.pipeline != nil {
				rt.pipeline.Close()
			}
		},
	}
	cmd.AddCommand(
		listCmd(rt),
		statsCmd(rt),
		createCmd(rt),
		editCmd(rt),
		deleteCmd(rt),
		toggleCmd(rt),
		exportCmd(rt),
		browseCmd(rt, in),
	)
	return cmd
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Execute corre el comando raíz con la entrada y salidas del proceso.
func Execute(ctx context.Context) error {
	root := NewRootCmd(os.Stdin)
	return root.ExecuteContext(ctx)
}
