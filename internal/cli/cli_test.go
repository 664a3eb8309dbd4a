package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	beego "github.com/beego/beego/v2/server/web"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internalservices "github.com/udistrital/gestion_ofertas_mid/internal/services"
	"github.com/udistrital/gestion_ofertas_mid/internal/store"
	_ "github.com/udistrital/gestion_ofertas_mid/routers"
)

type cliResult struct {
	out    string
	errOut string
}

func newMID(t *testing.T) string {
	t.Helper()
	color.NoColor = true
	internalservices.SetGestion(internalservices.NewGestionService(store.NewMemory(), 16, time.Minute))
	srv := httptest.NewServer(beego.BeeApp.Handlers)
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, api, stdin string, args ...string) (cliResult, error) {
	t.Helper()
	root := NewRootCmd(strings.NewReader(stdin))
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--api", api, "--profesional", "p1", "--retries", "0"}, args...))
	err := root.ExecuteContext(context.Background())
	return cliResult{out: out.String(), errOut: errOut.String()}, err
}

func createEmploi(t *testing.T, api, title string) string {
	t.Helper()
	res, err := run(t, api, "", "emplois", "create",
		"--set", "title="+title,
		"--set", "type=CDI",
		"--set", "secteur=Informatique & Tech",
		"--set", "experience=Junior (1-3 ans)",
		"--set", "salaire=40K€",
		"--set", "location=Paris",
		"--set", "description=Backend",
		"--lines", "missions=API|Tests",
	)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(res.out, "creado "), res.out)
	assert.Contains(t, res.errOut, "Registro creado")
	return strings.TrimSpace(strings.TrimPrefix(res.out, "creado "))
}

func TestCLI_CreateAndList(t *testing.T) {
	api := newMID(t)

	t.Run("Should explain the empty state", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "list")
		require.NoError(t, err)
		assert.Contains(t, res.out, "Aún no hay")
	})

	id := createEmploi(t, api, "Dev Backend")
	require.NotEmpty(t, id)

	t.Run("Should print the created row in a table", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "list")
		require.NoError(t, err)
		assert.Contains(t, res.out, id)
		assert.Contains(t, res.out, "Dev Backend")
		assert.Contains(t, res.out, "(1 resultados)")
	})
	t.Run("Should distinguish no-match from empty", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "list", "--type", "CDD")
		require.NoError(t, err)
		assert.Contains(t, res.out, "Ningún resultado para los filtros actuales.")
	})
	t.Run("Should print the counters", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "stats")
		require.NoError(t, err)
		assert.NotEmpty(t, strings.TrimSpace(res.out))
		assert.Contains(t, res.out, "1")
	})
	t.Run("Should refuse a form that fails validation", func(t *testing.T) {
		_, err := run(t, api, "", "emplois", "create", "--set", "title=Solo título")
		require.Error(t, err)
	})
	t.Run("Should reject unknown fields", func(t *testing.T) {
		_, err := run(t, api, "", "emplois", "create", "--set", "color=rojo")
		require.Error(t, err)
	})
}

func TestCLI_RowActions(t *testing.T) {
	api := newMID(t)
	id := createEmploi(t, api, "Dev Backend")

	t.Run("Should toggle the status", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "toggle", id)
		require.NoError(t, err)
		assert.Equal(t, id+" → Active\n", res.out)
	})
	t.Run("Should edit keeping untouched fields", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "edit", id, "--set", "title=Dev Backend senior")
		require.NoError(t, err)
		assert.Equal(t, "actualizado "+id+"\n", res.out)

		list, err := run(t, api, "", "emplois", "list", "--q", "senior")
		require.NoError(t, err)
		assert.Contains(t, list.out, "Paris")
	})
	t.Run("Should keep the record when the prompt is declined", func(t *testing.T) {
		res, err := run(t, api, "n\n", "emplois", "delete", id)
		require.NoError(t, err)
		assert.Contains(t, res.out, "[y/N]")
		assert.Contains(t, res.out, "cancelado")
	})
	t.Run("Should export to the requested file", func(t *testing.T) {
		target := filepath.Join(t.TempDir(), "emplois.csv")
		res, err := run(t, api, "", "emplois", "export", "--out", target)
		require.NoError(t, err)
		assert.Equal(t, "exportado "+target+"\n", res.out)
		body, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Contains(t, string(body), "Dev Backend senior")
	})
	t.Run("Should delete without prompting when --yes is given", func(t *testing.T) {
		res, err := run(t, api, "", "emplois", "delete", "--yes", id)
		require.NoError(t, err)
		assert.Equal(t, "eliminado "+id+"\n", res.out)
	})
	t.Run("Should fail on unknown ids", func(t *testing.T) {
		_, err := run(t, api, "", "emplois", "toggle", id)
		require.Error(t, err)
	})
}

func TestCLI_Browse(t *testing.T) {
	api := newMID(t)
	createEmploi(t, api, "Dev Backend")

	t.Run("Should render the first page and react to filters", func(t *testing.T) {
		res, err := run(t, api, "f type CDD\nzz\nx\n", "emplois", "browse")
		require.NoError(t, err)
		assert.Contains(t, res.out, "Dev Backend")
		assert.Contains(t, res.out, "Ningún resultado para los filtros actuales.")
		assert.Contains(t, res.out, "comando desconocido")
	})
}

func TestCLI_Session(t *testing.T) {
	t.Setenv("GESTION_TOKEN", "")
	t.Setenv("GESTION_PROFESIONAL_ID", "")

	t.Run("Should require an identity", func(t *testing.T) {
		root := NewRootCmd(strings.NewReader(""))
		root.SetOut(&bytes.Buffer{})
		root.SetErr(&bytes.Buffer{})
		root.SetArgs([]string{"--api", "http://localhost:1", "emplois", "list"})
		err := root.ExecuteContext(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sesión inválida")
	})
}
