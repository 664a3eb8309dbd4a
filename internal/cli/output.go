package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/udistrital/gestion_ofertas_mid/internal/admin"
	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
)

var badgeColors = map[string]color.Attribute{
	"green":  color.FgGreen,
	"yellow": color.FgYellow,
	"blue":   color.FgBlue,
	"red":    color.FgRed,
	"gray":   color.FgHiBlack,
}

func badge(b catalog.Badge) string {
	attr, ok := badgeColors[b.Color]
	if !ok {
		attr = color.FgHiBlack
	}
	return color.New(attr).Sprint(b.Label)
}

func printView(w io.Writer, schema *catalog.Schema, v admin.View) {
	if v.Error != "" {
		fmt.Fprintln(w, color.New(color.FgRed).Sprint("! "+v.Error))
	}
	switch v.State {
	case admin.ViewLoading:
		fmt.Fprintln(w, "cargando…")
		return
	case admin.ViewEmpty:
		fmt.Fprintf(w, "Aún no hay %s. Cree el primero con \"create\".\n", strings.ToLower(schema.Label))
		return
	case admin.ViewNoMatch:
		fmt.Fprintln(w, "Ningún resultado para los filtros actuales.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	header := []string{"ID"}
	for _, f := range schema.Columns() {
		header = append(header, strings.ToUpper(f.Label))
	}
	header = append(header, "ESTADO")
	for _, key := range schema.ReadOnly {
		header = append(header, strings.ToUpper(key))
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range v.Rows {
		cols := []string{row.ID}
		for _, c := range row.Cells {
			cols = append(cols, c.Value)
		}
		cols = append(cols, badge(row.Badge))
		for _, key := range schema.ReadOnly {
			cols = append(cols, fmt.Sprint(row.Counts[key]))
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	_ = tw.Flush()
	printPager(w, v.Pager)
}

func printPager(w io.Writer, p admin.Pager) {
	links := make([]string, 0, len(p.Links))
	for _, n := range p.Links {
		if n == p.Current {
			links = append(links, color.New(color.Bold).Sprintf("[%d]", n))
			continue
		}
		links = append(links, fmt.Sprint(n))
	}
	prev, next := "‹", "›"
	if !p.PrevEnabled {
		prev = color.New(color.Faint).Sprint(prev)
	}
	if !p.NextEnabled {
		next = color.New(color.Faint).Sprint(next)
	}
	fmt.Fprintf(w, "%s %s %s  (%d resultados)\n", prev, strings.Join(links, " "), next, p.Total)
}

func printStats(w io.Writer, cards []admin.StatCard) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range cards {
		fmt.Fprintf(tw, "%s\t%d\n", c.Label, c.Value)
	}
	_ = tw.Flush()
}

func printNotification(w io.Writer, n admin.Notification) {
	if n.Level == admin.LevelError {
		fmt.Fprintln(w, color.New(color.FgRed).Sprint("✗ "+n.Message))
		return
	}
	fmt.Fprintln(w, color.New(color.FgGreen).Sprint("✓ "+n.Message))
}

var autoConfirm = admin.ConfirmFunc(func(context.Context, string) (bool, error) { return true, nil })

// promptConfirmer pregunta y/N en out y lee la respuesta de in.
func promptConfirmer(reader *bufio.Reader, out io.Writer) admin.Confirmer {
	return admin.ConfirmFunc(func(_ context.Context, prompt string) (bool, error) {
		fmt.Fprintf(out, "%s [y/N] ", prompt)
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes", "s", "si", "sí":
			return true, nil
		}
		return false, nil
	})
}
