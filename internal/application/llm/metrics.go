package llm

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	repairCounterOnce sync.Once
	repairCounter     metric.Int64Counter
)

func recordRepair(ctx context.Context, schemaName string) {
	repairCounterOnce.Do(func() {
		meter := otel.Meter("github.com/zatekoja/carenavigator/backend/llm")
		counter, err := meter.Int64Counter(
			"ai.llm.repair.count",
			metric.WithDescription("Number of model replies rejected and retried with a repair instruction"),
		)
		if err == nil {
			repairCounter = counter
		}
	})
	if repairCounter == nil {
		return
	}
	repairCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("ai.schema", schemaName)))
}
