package store

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udistrital/gestion_ofertas_mid/internal/catalog"
	"github.com/udistrital/gestion_ofertas_mid/models"
)

const table = "gestion_entidades"

//go:embed schema.sql
var schemaSQL string

var selectColumns = []string{
	"id::text AS id", "kind", "owner_id", "status", "title", "data", "created_at", "updated_at",
}

// columnas propias que admiten orden directo; el resto se ordena por data->>campo
var sortableColumns = map[string]string{
	models.KeyCreatedAt: "created_at",
	models.KeyUpdatedAt: "updated_at",
	models.KeyStatus:    "status",
}

// DB es la interfaz mínima que satisfacen pgxpool.Pool y pgxmock.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore guarda cada registro en una fila con sus campos de esquema en jsonb.
type PostgresStore struct {
	db  DB
	now func() time.Time
}

type entidadRow struct {
	ID        string    `db:"id"`
	Kind      string    `db:"kind"`
	OwnerID   string    `db:"owner_id"`
	Status    string    `db:"status"`
	Title     string    `db:"title"`
	Data      []byte    `db:"data"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// NewPostgres envuelve una conexión existente.
func NewPostgres(db DB) *PostgresStore {
	return &PostgresStore{db: db, now: func() time.Time { return time.Now().UTC() }}
}

// OpenPool abre el pool de conexiones a partir del DSN.
func OpenPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	config.MaxConns = 20
	config.MinConns = 2
	config.HealthCheckPeriod = 30 * time.Second

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Migrate aplica el DDL embebido; es idempotente.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("applying schema: %w", err)
	}
	return nil
}

func (p *PostgresStore) conditions(schema *catalog.Schema, owner string, q Query) squirrel.And {
	conds := squirrel.And{
		squirrel.Eq{"kind": schema.Kind},
		squirrel.Eq{"owner_id": owner},
	}
	if search := strings.TrimSpace(q.Search); search != "" {
		conds = append(conds, squirrel.Expr("title ILIKE ?", "%"+escapeLike(search)+"%"))
	}

	filters := q.ActiveFilters()
	dims := make([]string, 0, len(filters))
	for dim := range filters {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	for _, dim := range dims {
		switch {
		case dim == models.KeyStatus:
			conds = append(conds, squirrel.Eq{"status": filters[dim]})
		case isFilterDim(schema, dim):
			conds = append(conds, squirrel.Expr(fmt.Sprintf("data->>'%s' = ?", dim), filters[dim]))
		}
	}
	return conds
}

// List implementa Store con filtrado, conteo y paginación en SQL.
func (p *PostgresStore) List(ctx context.Context, schema *catalog.Schema, owner string, q Query) ([]models.Record, int, error) {
	where := p.conditions(schema, owner, q)

	countSQL, countArgs, err := squirrel.Select("count(*)").
		From(table).
		Where(where).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("building count query: %w", err)
	}
	var total int64
	if err := p.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting %s: %w", schema.Kind, err)
	}

	qb := squirrel.Select(selectColumns...).
		From(table).
		Where(where).
		OrderBy(orderClause(schema, q.Sort, q.Order)).
		PlaceholderFormat(squirrel.Dollar)
	if q.Size > 0 {
		page := q.Page
		if page <= 0 {
			page = 1
		}
		if int64(page-1) > total/int64(q.Size) {
			return []models.Record{}, int(total), nil
		}
		qb = qb.Limit(uint64(q.Size)).Offset(uint64((page - 1) * q.Size))
	}
	items, err := p.selectRecords(ctx, schema, qb)
	if err != nil {
		return nil, 0, err
	}
	return items, int(total), nil
}

// All implementa Store.
func (p *PostgresStore) All(ctx context.Context, schema *catalog.Schema, owner string) ([]models.Record, error) {
	qb := squirrel.Select(selectColumns...).
		From(table).
		Where(squirrel.Eq{"kind": schema.Kind}).
		Where(squirrel.Eq{"owner_id": owner}).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Dollar)
	return p.selectRecords(ctx, schema, qb)
}

func (p *PostgresStore) selectRecords(ctx context.Context, schema *catalog.Schema, qb squirrel.SelectBuilder) ([]models.Record, error) {
	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var rows []entidadRow
	if err := pgxscan.Select(ctx, p.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", schema.Kind, err)
	}
	out := make([]models.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.toRecord(schema)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Get implementa Store.
func (p *PostgresStore) Get(ctx context.Context, schema *catalog.Schema, id string) (models.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	query, args, err := squirrel.Select(selectColumns...).
		From(table).
		Where(squirrel.Eq{"kind": schema.Kind}).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select query: %w", err)
	}
	var row entidadRow
	if err := pgxscan.Get(ctx, p.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning %s: %w", schema.Kind, err)
	}
	return row.toRecord(schema)
}

// Create implementa Store.
func (p *PostgresStore) Create(ctx context.Context, schema *catalog.Schema, rec models.Record) (models.Record, error) {
	data, err := encodeData(rec)
	if err != nil {
		return nil, err
	}
	now := p.now()
	row := entidadRow{
		ID:        uuid.NewString(),
		Kind:      schema.Kind,
		OwnerID:   rec.Owner(),
		Status:    rec.Status(),
		Title:     rec.String(schema.TitleField),
		Data:      data,
		CreatedAt: now,
		UpdatedAt: now,
	}
	query, args, err := squirrel.Insert(table).
		Columns("id", "kind", "owner_id", "status", "title", "data", "created_at", "updated_at").
		Values(row.ID, row.Kind, row.OwnerID, row.Status, row.Title, string(row.Data), row.CreatedAt, row.UpdatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building insert query: %w", err)
	}
	if _, err := p.db.Exec(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("inserting %s: %w", schema.Kind, err)
	}
	return row.toRecord(schema)
}

// Update implementa Store.
func (p *PostgresStore) Update(ctx context.Context, schema *catalog.Schema, id string, rec models.Record) (models.Record, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	data, err := encodeData(rec)
	if err != nil {
		return nil, err
	}
	query, args, err := squirrel.Update(table).
		Set("status", rec.Status()).
		Set("title", rec.String(schema.TitleField)).
		Set("data", string(data)).
		Set("updated_at", p.now()).
		Where(squirrel.Eq{"kind": schema.Kind}).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING " + strings.Join(selectColumns, ", ")).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("building update query: %w", err)
	}
	var row entidadRow
	if err := pgxscan.Get(ctx, p.db, &row, query, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("updating %s: %w", schema.Kind, err)
	}
	return row.toRecord(schema)
}

// Delete implementa Store.
func (p *PostgresStore) Delete(ctx context.Context, schema *catalog.Schema, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}
	query, args, err := squirrel.Delete(table).
		Where(squirrel.Eq{"kind": schema.Kind}).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("building delete query: %w", err)
	}
	tag, err := p.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("deleting %s: %w", schema.Kind, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r entidadRow) toRecord(schema *catalog.Schema) (models.Record, error) {
	rec := models.Record{}
	if len(r.Data) > 0 {
		if err := json.Unmarshal(r.Data, &rec); err != nil {
			return nil, fmt.Errorf("decoding %s data: %w", schema.Kind, err)
		}
	}
	rec[models.KeyID] = r.ID
	rec[models.KeyOwner] = r.OwnerID
	rec[models.KeyStatus] = r.Status
	if schema.TitleField != "" {
		rec[schema.TitleField] = r.Title
	}
	rec[models.KeyCreatedAt] = r.CreatedAt.UTC().Format(time.RFC3339)
	rec[models.KeyUpdatedAt] = r.UpdatedAt.UTC().Format(time.RFC3339)
	return rec, nil
}

// encodeData serializa los campos de esquema; las claves reservadas viven en columnas.
func encodeData(rec models.Record) ([]byte, error) {
	data := make(map[string]interface{}, len(rec))
	for k, v := range rec {
		switch k {
		case models.KeyID, models.KeyOwner, models.KeyStatus, models.KeyCreatedAt, models.KeyUpdatedAt:
			continue
		}
		data[k] = v
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding data: %w", err)
	}
	return raw, nil
}

func isFilterDim(schema *catalog.Schema, dim string) bool {
	for _, f := range schema.Filters {
		if f == dim {
			_, ok := schema.Field(dim)
			return ok
		}
	}
	return false
}

func orderClause(schema *catalog.Schema, field, order string) string {
	dir := "DESC"
	if strings.EqualFold(order, "asc") {
		dir = "ASC"
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return "created_at " + dir
	}
	if col, ok := sortableColumns[field]; ok {
		return col + " " + dir
	}
	if field == schema.TitleField {
		return "title " + dir
	}
	if _, ok := schema.Field(field); ok || schema.IsReadOnly(field) {
		if schema.IsNumeric(field) {
			return fmt.Sprintf("NULLIF(data->>'%s', '')::numeric %s NULLS LAST", field, dir)
		}
		return fmt.Sprintf("data->>'%s' %s", field, dir)
	}
	return "created_at " + dir
}

func escapeLike(value string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(value)
}
