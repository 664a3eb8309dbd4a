package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/udistrital/gestion_ofertas_mid/internal/admin"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

func listCmd(rt *runtime) *cobra.Command {
	var search string
	var page int
	dims := map[string]*string{}
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Lista los registros con búsqueda, filtros y paginación",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := admin.FilterValues{Search: search, Filters: map[string]string{}}
			for dim, v := range dims {
				value := strings.TrimSpace(*v)
				if value == "" {
					value = models.FiltroTodos
				}
				values.Filters[dim] = value
			}
			snap := rt.pipeline.Coordinator.ApplyFilters(cmd.Context(), values)
			if page > 1 {
				snap = rt.pipeline.Coordinator.GoToPage(cmd.Context(), page)
			}
			printView(rt.out, rt.schema, admin.Render(rt.schema, snap, values.Active()))
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "q", "q", "", "texto de búsqueda en el título")
	cmd.Flags().IntVar(&page, "page", 1, "página")
	for _, dim := range rt.schema.Filters {
		v := new(string)
		dims[dim] = v
		cmd.Flags().StringVar(v, dim, models.FiltroTodos, fmt.Sprintf("filtro por %s (%s)", dim, strings.Join(rt.schema.FilterChoices(dim), ", ")))
	}
	return cmd
}

func statsCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Muestra los contadores del profesional",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snap := rt.pipeline.Coordinator.Start(cmd.Context())
			if snap.Stats.Error != "" {
				return fmt.Errorf("%s", snap.Stats.Error)
			}
			printStats(rt.out, admin.Render(rt.schema, snap, false).Stats)
			return nil
		},
	}
}

type fieldFlags struct {
	sets  []string
	lines []string
}

func (f *fieldFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVar(&f.sets, "set", nil, "campo=valor (repetible)")
	cmd.Flags().StringArrayVar(&f.lines, "lines", nil, "campo=línea1|línea2 para campos de lista (repetible)")
}

func (f *fieldFlags) apply(form *admin.FormDialog) error {
	for _, kv := range f.sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--set espera campo=valor: %q", kv)
		}
		if err := form.Set(strings.TrimSpace(key), value); err != nil {
			return err
		}
	}
	for _, kv := range f.lines {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("--lines espera campo=a|b: %q", kv)
		}
		if err := form.SetLines(strings.TrimSpace(key), strings.ReplaceAll(value, "|", "\n")); err != nil {
			return err
		}
	}
	return nil
}

func createCmd(rt *runtime) *cobra.Command {
	fields := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Crea un registro",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			form := rt.pipeline.Form
			form.OpenCreate()
			if err := fields.apply(form); err != nil {
				form.Cancel()
				return err
			}
			rec, err := form.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "creado %s\n", rec.ID())
			return nil
		},
	}
	fields.bind(cmd)
	return cmd
}

func editCmd(rt *runtime) *cobra.Command {
	fields := &fieldFlags{}
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Actualiza un registro; los campos no indicados conservan su valor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rt.resource.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := rt.pipeline.Actions.Edit(rec); err != nil {
				return err
			}
			form := rt.pipeline.Form
			if err := fields.apply(form); err != nil {
				form.Cancel()
				return err
			}
			updated, err := form.Submit(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "actualizado %s\n", updated.ID())
			return nil
		},
	}
	fields.bind(cmd)
	return cmd
}

func deleteCmd(rt *runtime) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Elimina un registro tras confirmación",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rt.resource.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			actions := rt.pipeline.Actions
			if yes {
				actions = admin.NewRowActions(rt.schema, rt.pipeline.Coordinator, rt.pipeline.Form, autoConfirm, nil)
			}
			deleted, err := actions.Delete(cmd.Context(), rec)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Fprintf(rt.out, "eliminado %s\n", rec.ID())
			} else {
				fmt.Fprintln(rt.out, "cancelado")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "no pedir confirmación")
	return cmd
}

func toggleCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Cambia el estado con el conmutador rápido (active ↔ archived, draft → active)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := rt.resource.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			updated, err := rt.pipeline.Actions.ToggleStatus(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "%s → %s\n", updated.ID(), badge(rt.schema.Badge(updated.Status())))
			return nil
		},
	}
}

func exportCmd(rt *runtime) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Descarga todos los registros en CSV o PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if out != "" {
				dir = filepath.Dir(out)
			}
			tmp, err := os.CreateTemp(dir, ".gestion-export-*")
			if err != nil {
				return err
			}
			defer os.Remove(tmp.Name())

			name, err := rt.pipeline.Coordinator.Export(cmd.Context(), format, tmp)
			if cerr := tmp.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			target := out
			if target == "" {
				target = filepath.Join(dir, filepath.Base(name))
			}
			if err := os.Rename(tmp.Name(), target); err != nil {
				return err
			}
			fmt.Fprintf(rt.out, "exportado %s\n", target)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv o pdf")
	cmd.Flags().StringVarP(&out, "out", "o", "", "archivo destino (por defecto el nombre sugerido por el servidor)")
	return cmd
}
