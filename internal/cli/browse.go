package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/udistrital/gestion_ofertas_mid/internal/admin"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

const browseHelp = `comandos:
  s <texto>        buscar (se aplica tras 500 ms sin cambios)
  f <dim> <valor>  filtrar una dimensión ("all" quita el filtro)
  r                restablecer filtros
  n | p | g <n>    página siguiente, anterior o n
  t <id>           conmutar estado
  d <id>           eliminar (pide confirmación)
  h                ayuda
  x                salir`

func browseCmd(rt *runtime, in *bufio.Reader) *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Sesión interactiva con filtros, paginación y acciones por fila",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b := &browser{rt: rt}
			unsubscribe := rt.pipeline.Coordinator.Subscribe(b.onSnapshot)
			defer unsubscribe()

			fmt.Fprintln(rt.out, browseHelp)
			rt.pipeline.Start()
			for {
				line, err := in.ReadString('\n')
				if quit := b.handle(cmd, strings.TrimSpace(line)); quit {
					return nil
				}
				if err == io.EOF {
					return nil
				}
				if err != nil {
					return err
				}
			}
		},
	}
}

type browser struct {
	rt *runtime
	mu sync.Mutex
}

// onSnapshot imprime la vista cuando no queda ninguna consulta en curso.
func (b *browser) onSnapshot(s admin.Snapshot) {
	if s.List.Loading || s.Stats.Loading {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	v := admin.Render(b.rt.schema, s, s.Filters.Active())
	printStats(b.rt.out, v.Stats)
	printView(b.rt.out, b.rt.schema, v)
}

func (b *browser) println(a ...interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	fmt.Fprintln(b.rt.out, a...)
}

func (b *browser) handle(cmd *cobra.Command, line string) bool {
	if line == "" {
		return false
	}
	ctx := cmd.Context()
	p := b.rt.pipeline
	op, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch op {
	case "x", "quit", "exit":
		return true
	case "h", "help":
		b.println(browseHelp)
	case "s":
		p.Filters.SetSearch(rest)
	case "f":
		dim, value, _ := strings.Cut(rest, " ")
		p.Filters.SetFilter(dim, value)
	case "r":
		p.Filters.Reset()
	case "n", "p", "g":
		snap := p.Coordinator.Snapshot()
		page := snap.Page
		switch op {
		case "n":
			if page >= snap.List.Data.Pagination.Pages {
				return false
			}
			page++
		case "p":
			if page <= 1 {
				return false
			}
			page--
		default:
			n, err := strconv.Atoi(rest)
			if err != nil {
				b.println("página inválida:", rest)
				return false
			}
			page = n
		}
		p.Coordinator.GoToPage(ctx, page)
	case "t", "d":
		rec, ok := b.row(rest)
		if !ok {
			b.println("id no visible en la página actual:", rest)
			return false
		}
		var err error
		if op == "t" {
			_, err = p.Actions.ToggleStatus(ctx, rec)
		} else {
			_, err = p.Actions.Delete(ctx, rec)
		}
		if err != nil && admin.ErrorMessage(err, "") == "" {
			b.println("error:", err)
		}
	default:
		b.println("comando desconocido; h para ayuda")
	}
	return false
}

func (b *browser) row(id string) (models.Record, bool) {
	for _, rec := range b.rt.pipeline.Coordinator.Snapshot().List.Data.Items {
		if rec.ID() == id {
			return rec, true
		}
	}
	return nil, false
}
