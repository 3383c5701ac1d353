package store

import "go.opentelemetry.io/otel"

var tracer = otel.GetTracerProvider().Tracer("github.com/dimitarkovachev/seating/internal/store")
