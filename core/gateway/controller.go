package gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gridkit-dev/pb-gridkit/core/formatter"
	"github.com/gridkit-dev/pb-gridkit/core/logging"
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/router"
	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
)

// deletedField enables soft deletes: a model declaring a date field with
// this name gets its delete handler turned into a timestamp update.
const deletedField = "deleted"

// ModelController is the generic CRUD controller the registry binds to any
// model whose routes name no custom controller. It reads and writes records
// through PocketBase so collection rules, validations and hooks all apply.
type ModelController struct {
	model string
	log   *slog.Logger
}

// NewModelController creates the generic controller for one model.
func NewModelController(model string, log *slog.Logger) *ModelController {
	return &ModelController{model: model, log: log}
}

// Name follows the <Model>Controller convention the registry resolves by.
func (c *ModelController) Name() string {
	return c.model + "Controller"
}

// Routes is empty: generic controllers only serve routes declared by their
// model spec.
func (c *ModelController) Routes() []metadata.RouteDeclaration {
	return nil
}

// Handlers exposes the five CRUD operations.
func (c *ModelController) Handlers() map[string]router.HandlerFunc {
	return map[string]router.HandlerFunc{
		"list":   c.list,
		"read":   c.read,
		"create": c.create,
		"update": c.update,
		"delete": c.delete,
	}
}

// list runs the validated filters, search, sorting and pagination against
// the backing collection and returns one page plus the matching row count.
func (c *ModelController) list(req *router.Request) (any, error) {
	ctx := req.Context()
	exprs := filterExpressions(req.Parsed.Filters)

	var searchExpr dbx.Expression
	if req.Parsed.HasSearch() {
		searchExpr = searchExpression(req.Parsed.Search)
	}

	q := req.App().RecordQuery(c.model)
	for _, expr := range exprs {
		q.AndWhere(expr)
	}
	if searchExpr != nil {
		q.AndWhere(searchExpr)
	}
	if cols := orderByColumns(req.Parsed.Sorting); len(cols) > 0 {
		q.OrderBy(cols...)
	}
	page := req.Parsed.Pagination
	q.Limit(int64(page.Limit)).Offset(int64(page.Offset))

	records := []*core.Record{}
	if err := q.WithContext(ctx).All(&records); err != nil {
		return nil, logging.HandleContextErrors(ctx,
			server.NewDatabaseError("list_records", "query failed for model "+c.model, err), "list_records")
	}

	var total int64
	cq := req.App().DB().Select("COUNT(*)").From(req.Model.Table)
	for _, expr := range exprs {
		cq.AndWhere(expr)
	}
	if searchExpr != nil {
		cq.AndWhere(searchExpr)
	}
	if err := cq.WithContext(ctx).Row(&total); err != nil {
		return nil, logging.HandleContextErrors(ctx,
			server.NewDatabaseError("count_records", "count failed for model "+c.model, err), "count_records")
	}

	rows := make([]map[string]any, len(records))
	for i, record := range records {
		rows[i] = record.PublicExport()
	}
	return formatter.Result{Data: rows, Total: total}, nil
}

// read fetches a single record by its id path parameter.
func (c *ModelController) read(req *router.Request) (any, error) {
	record, err := c.find(req)
	if err != nil {
		return nil, err
	}
	return formatter.Result{Data: record.PublicExport(), Total: 1}, nil
}

// create builds a record from the writable body values and saves it through
// the app so collection validations run.
func (c *ModelController) create(req *router.Request) (any, error) {
	col, err := req.App().FindCollectionByNameOrId(c.model)
	if err != nil {
		return nil, server.NewDatabaseError("create_record", "collection lookup failed for model "+c.model, err)
	}

	record := core.NewRecord(col)
	record.Load(c.writableValues(req))
	if err := req.App().Save(record); err != nil {
		return nil, server.NewHandlerError("create_record", err.Error(), http.StatusBadRequest, err)
	}
	return formatter.Result{Data: record.PublicExport(), Total: 1, Status: http.StatusCreated}, nil
}

// update applies the writable body values to an existing record.
func (c *ModelController) update(req *router.Request) (any, error) {
	record, err := c.find(req)
	if err != nil {
		return nil, err
	}
	record.Load(c.writableValues(req))
	if err := req.App().Save(record); err != nil {
		return nil, server.NewHandlerError("update_record", err.Error(), http.StatusBadRequest, err)
	}
	return formatter.Result{Data: record.PublicExport(), Total: 1}, nil
}

// delete removes a record, soft-deleting when the model declares a deleted
// timestamp field.
func (c *ModelController) delete(req *router.Request) (any, error) {
	record, err := c.find(req)
	if err != nil {
		return nil, err
	}

	if field, ok := req.Model.Field(deletedField); ok && field.Type == metadata.FieldTypeDate {
		record.Set(deletedField, time.Now().UTC().Format(time.RFC3339))
		if err := req.App().Save(record); err != nil {
			return nil, server.NewDatabaseError("soft_delete_record", "soft delete failed for model "+c.model, err)
		}
	} else if err := req.App().Delete(record); err != nil {
		return nil, server.NewDatabaseError("delete_record", "delete failed for model "+c.model, err)
	}

	return formatter.Result{Data: map[string]any{"id": record.Id, "deleted": true}, Total: 1}, nil
}

func (c *ModelController) find(req *router.Request) (*core.Record, error) {
	id := req.Param("id")
	record, err := req.App().FindRecordById(c.model, id)
	if err != nil {
		notFound := server.NewRouteNotFoundError("find_record", "no "+c.model+" record with id "+id)
		notFound.WithContext("model", c.model)
		notFound.WithContext("id", id)
		return nil, notFound
	}
	return record, nil
}

// writableValues keeps only body values addressing persistent, writable
// model fields. Ids and autodates are managed by the store, passwords never
// travel through the generic pipeline.
func (c *ModelController) writableValues(req *router.Request) map[string]any {
	values := make(map[string]any)
	for key, raw := range req.Params {
		field, ok := req.Model.Field(key)
		if !ok || !field.Persistent {
			continue
		}
		switch field.Type {
		case metadata.FieldTypeID, metadata.FieldTypeAutodate, metadata.FieldTypePassword:
			continue
		}
		values[key] = raw
	}
	return values
}
