package core

import "context"

// RequestMeta describes the client behind a call, for logging.
type RequestMeta struct {
	IP        string
	UserAgent string
}

type requestMetaKey struct{}

// WithRequestMeta returns ctx carrying m.
func WithRequestMeta(ctx context.Context, m RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, m)
}

// RequestMetaFrom returns the metadata stored in ctx, or the zero value.
func RequestMetaFrom(ctx context.Context) RequestMeta {
	m, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return m
}

// logArgs returns slog key/value pairs for the non-empty fields.
func (m RequestMeta) logArgs() []any {
	var args []any
	if m.IP != "" {
		args = append(args, "ip", m.IP)
	}
	if m.UserAgent != "" {
		args = append(args, "user_agent", m.UserAgent)
	}
	return args
}
