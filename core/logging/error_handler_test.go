package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/gridkit-dev/pb-gridkit/core/monitoring"
	"github.com/gridkit-dev/pb-gridkit/core/server"
)

func TestHandleContextErrorsNil(t *testing.T) {
	if err := HandleContextErrors(context.Background(), nil, "op"); err != nil {
		t.Errorf("nil error must pass through, got %v", err)
	}
}

func TestHandleContextErrorsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dbErr := server.NewDatabaseError("list_records", "query failed", errors.New("driver: bad connection"))
	err := HandleContextErrors(ctx, dbErr, "list_records")

	if !server.IsErrorType(err, server.ErrTypeCanceled) {
		t.Fatalf("canceled context must map to a canceled error, got %v", err)
	}
	if status := server.StatusOf(err); status != server.StatusCanceled {
		t.Errorf("status = %d, want %d", status, server.StatusCanceled)
	}
}

func TestHandleContextErrorsPassthrough(t *testing.T) {
	ctx := context.Background()

	srvErr := server.NewDatabaseError("count_records", "count failed", errors.New("locked"))
	if got := HandleContextErrors(ctx, srvErr, "count_records"); got != srvErr {
		t.Errorf("typed server error must pass through, got %v", got)
	}

	monErr := monitoring.NewSensorError("cpu", "sensor read failed", errors.New("unavailable"))
	if got := HandleContextErrors(ctx, monErr, "collect_stats"); got != monErr {
		t.Errorf("monitoring error must pass through, got %v", got)
	}
}

func TestHandleContextErrorsWrapsUnknown(t *testing.T) {
	err := HandleContextErrors(context.Background(), errors.New("boom"), "list_records")
	if !server.IsErrorType(err, server.ErrTypeInternal) {
		t.Fatalf("plain error must become internal, got %v", err)
	}

	var srvErr *server.ServerError
	if !errors.As(err, &srvErr) || srvErr.Op != "list_records" {
		t.Errorf("operation not carried: %+v", srvErr)
	}
}
