package metrics

import (
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
)

const (
	scopeName   = "github.com/sambigeara/healthperm"
	serviceName = "healthperm"

	KindItem = "item"
	KindAll  = "all"
)

type Instruments struct {
	toggles    metric.Int64Counter
	staleDrops metric.Int64Counter
	echoes     metric.Int64Counter
	commits    metric.Int64Counter
}

func New(mp metric.MeterProvider) (*Instruments, error) {
	m := mp.Meter(scopeName)

	toggles, err := m.Int64Counter("healthperm.toggles",
		metric.WithDescription("Toggle requests applied to the permission store"))
	if err != nil {
		return nil, fmt.Errorf("toggles counter: %w", err)
	}
	staleDrops, err := m.Int64Counter("healthperm.stale_drops",
		metric.WithDescription("Toggle requests dropped for referencing a stale list or item"))
	if err != nil {
		return nil, fmt.Errorf("stale drops counter: %w", err)
	}
	echoes, err := m.Int64Counter("healthperm.suppressed_echoes",
		metric.WithDescription("Widget callbacks ignored because they were caused by a programmatic write"))
	if err != nil {
		return nil, fmt.Errorf("echoes counter: %w", err)
	}
	commits, err := m.Int64Counter("healthperm.commits",
		metric.WithDescription("Grant file commits by result"))
	if err != nil {
		return nil, fmt.Errorf("commits counter: %w", err)
	}

	return &Instruments{
		toggles:    toggles,
		staleDrops: staleDrops,
		echoes:     echoes,
		commits:    commits,
	}, nil
}

func Noop() *Instruments {
	i, err := New(noop.NewMeterProvider())
	if err != nil {
		// noop instruments never fail
		panic(err)
	}
	return i
}

func kindAttr(kind string) metric.AddOption {
	return metric.WithAttributes(attribute.String("kind", kind))
}

func (i *Instruments) Toggle(kind string) {
	i.toggles.Add(context.Background(), 1, kindAttr(kind))
}

func (i *Instruments) StaleDrop(kind string) {
	i.staleDrops.Add(context.Background(), 1, kindAttr(kind))
}

func (i *Instruments) SuppressedEcho(kind string) {
	i.echoes.Add(context.Background(), 1, kindAttr(kind))
}

func (i *Instruments) Commit(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	i.commits.Add(context.Background(), 1, metric.WithAttributes(attribute.String("result", result)))
}

// Collector is an in-process pull reader, used by the CLI's --metrics dump
// and by tests.
type Collector struct {
	Provider *sdkmetric.MeterProvider
	reader   *sdkmetric.ManualReader
}

func NewCollector() *Collector {
	reader := sdkmetric.NewManualReader()
	res := resource.NewSchemaless(attribute.String("service.name", serviceName))
	return &Collector{
		reader:   reader,
		Provider: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader), sdkmetric.WithResource(res)),
	}
}

// Counters flattens every int64 sum into "name{k=v}" keys.
func (c *Collector) Counters(ctx context.Context) (map[string]int64, error) {
	var rm metricdata.ResourceMetrics
	if err := c.reader.Collect(ctx, &rm); err != nil {
		return nil, fmt.Errorf("collect metrics: %w", err)
	}

	out := make(map[string]int64)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				continue
			}
			for _, dp := range sum.DataPoints {
				key := m.Name
				if enc := dp.Attributes.Encoded(attribute.DefaultEncoder()); enc != "" {
					key += "{" + enc + "}"
				}
				out[key] += dp.Value
			}
		}
	}
	return out, nil
}

// Keys returns the counter keys in stable order.
func Keys(counters map[string]int64) []string {
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (c *Collector) Shutdown(ctx context.Context) error {
	return c.Provider.Shutdown(ctx)
}
