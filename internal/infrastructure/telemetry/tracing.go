package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the instrumentation scope used by application services
const TracerName = "erp-ledger"

// Span attribute keys shared by the ledger services
const (
	SpanAttrTenantID       = "tenant_id"
	SpanAttrSaleID         = "sale_id"
	SpanAttrPurchaseID     = "purchase_id"
	SpanAttrInvoiceNumber  = "invoice_number"
	SpanAttrIdempotencyKey = "idempotency_key"
	SpanAttrAttempt        = "attempt"
	SpanAttrProductID      = "product_id"
	SpanAttrQuantity       = "quantity"
	SpanAttrVoucherID      = "voucher_id"
	SpanAttrVoucherNumber  = "voucher_number"
	SpanAttrAccountCode    = "account_code"
	SpanAttrPaymentID      = "payment_id"
	SpanAttrPaymentMethod  = "payment_method"
	SpanAttrAmount         = "amount"
)

// StartServiceSpan starts an internal span named "{service}.{method}"
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(TracerName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// SetAttributes sets attributes from alternating key/value arguments.
// A trailing key without a value is ignored.
func SetAttributes(span trace.Span, keyValues ...any) {
	if !span.IsRecording() {
		return
	}
	for i := 0; i+1 < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			continue
		}
		span.SetAttributes(toAttribute(key, keyValues[i+1]))
	}
}

// SetAttribute sets a single attribute on the span
func SetAttribute(span trace.Span, key string, value any) {
	if span.IsRecording() {
		span.SetAttributes(toAttribute(key, value))
	}
}

// RecordError records err on the span and marks it failed. A nil error is a no-op.
func RecordError(span trace.Span, err error) {
	if err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event with alternating key/value attributes
func AddEvent(span trace.Span, name string, keyValues ...any) {
	if !span.IsRecording() {
		return
	}
	attrs := make([]attribute.KeyValue, 0, len(keyValues)/2)
	for i := 0; i+1 < len(keyValues); i += 2 {
		if key, ok := keyValues[i].(string); ok {
			attrs = append(attrs, toAttribute(key, keyValues[i+1]))
		}
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// TraceID returns the trace id carried by ctx, or "" when there is none
func TraceID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasTraceID() {
		return ""
	}
	return sc.TraceID().String()
}

// SpanID returns the span id carried by ctx, or "" when there is none
func SpanID(ctx context.Context) string {
	sc := trace.SpanContextFromContext(ctx)
	if !sc.HasSpanID() {
		return ""
	}
	return sc.SpanID().String()
}

func toAttribute(key string, value any) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	case []string:
		return attribute.StringSlice(key, v)
	case time.Duration:
		return attribute.Int64(key, v.Milliseconds())
	case fmt.Stringer:
		return attribute.String(key, v.String())
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
