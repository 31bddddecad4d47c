package logging

import (
	"context"
)

const (
	TickIDKey      = "tick_id"
	FileKey        = "file"
	ServiceNameKey = "service_name"
)

type contextKey string

func WithTickID(ctx context.Context, tickID string) context.Context {
	return context.WithValue(ctx, contextKey(TickIDKey), tickID)
}

func WithFile(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, contextKey(FileKey), path)
}

func WithServiceName(ctx context.Context, serviceName string) context.Context {
	return context.WithValue(ctx, contextKey(ServiceNameKey), serviceName)
}

func GetTickID(ctx context.Context) string {
	if tickID, ok := ctx.Value(contextKey(TickIDKey)).(string); ok {
		return tickID
	}
	return ""
}

func GetFile(ctx context.Context) string {
	if path, ok := ctx.Value(contextKey(FileKey)).(string); ok {
		return path
	}
	return ""
}

func GetServiceName(ctx context.Context) string {
	if serviceName, ok := ctx.Value(contextKey(ServiceNameKey)).(string); ok {
		return serviceName
	}
	return ""
}

// GetLogFields returns the correlation fields stored on ctx as zap
// key/value pairs.
func GetLogFields(ctx context.Context) []interface{} {
	fields := make([]interface{}, 0, 6)

	if tickID := GetTickID(ctx); tickID != "" {
		fields = append(fields, TickIDKey, tickID)
	}

	if path := GetFile(ctx); path != "" {
		fields = append(fields, FileKey, path)
	}

	if serviceName := GetServiceName(ctx); serviceName != "" {
		fields = append(fields, ServiceNameKey, serviceName)
	}

	return fields
}
