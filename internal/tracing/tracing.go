package tracing

import (
	"io"

	"github.com/pkg/errors"
	"github.com/uber/jaeger-client-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
)

// Init installs a jaeger tracer as the opentracing global tracer.
// The returned closer flushes remaining spans and must be closed on shutdown.
func Init(serviceName string) (io.Closer, error) {
	cfg := jaegercfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jaegercfg.SamplerConfig{
			Type:  jaeger.SamplerTypeConst,
			Param: 1,
		},
	}

	closer, err := cfg.InitGlobalTracer(serviceName)
	if err != nil {
		return nil, errors.Wrap(err, "init tracer")
	}
	return closer, nil
}
