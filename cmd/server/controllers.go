package main

import (
	"github.com/gridkit-dev/pb-gridkit/core/metadata"
	"github.com/gridkit-dev/pb-gridkit/core/router"
	"github.com/gridkit-dev/pb-gridkit/core/server"
	"github.com/pocketbase/dbx"
)

// ReportController is a custom controller with its own route table, served
// alongside the generic model controllers.
type ReportController struct{}

func NewReportController() *ReportController {
	return &ReportController{}
}

func (c *ReportController) Name() string {
	return "ReportController"
}

func (c *ReportController) Routes() []metadata.RouteDeclaration {
	return []metadata.RouteDeclaration{
		{
			Method:       "GET",
			Path:         "/reports/order-status",
			Handler:      "orderStatus",
			Action:       "read",
			AllowedRoles: []string{"editor", "viewer"},
			Description:  "Order counts grouped by status",
		},
	}
}

func (c *ReportController) Handlers() map[string]router.HandlerFunc {
	return map[string]router.HandlerFunc{
		"orderStatus": c.orderStatus,
	}
}

// orderStatus aggregates the orders collection by status.
func (c *ReportController) orderStatus(req *router.Request) (any, error) {
	rows := []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}{}

	err := req.App().DB().
		Select("status", "COUNT(*) AS count").
		From("orders").
		Where(dbx.NewExp("[[deleted]] IS NULL OR [[deleted]] = ''")).
		GroupBy("status").
		WithContext(req.Context()).
		All(&rows)
	if err != nil {
		return nil, server.NewDatabaseError("order_status_report", "aggregation failed", err)
	}

	out := make([]map[string]any, len(rows))
	for i, row := range rows {
		out[i] = map[string]any{"status": row.Status, "count": row.Count}
	}
	return out, nil
}
