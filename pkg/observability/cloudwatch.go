package observability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// PutMetricData accepts at most 1000 datums per call
const maxDatumsPerCall = 1000

// CloudWatchClient is the part of the CloudWatch API the recorder uses
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchRecorder buffers measurements and sends them on Flush. Lambda
// handlers flush once per invocation instead of calling CloudWatch per metric.
type CloudWatchRecorder struct {
	namespace string
	client    CloudWatchClient
	logger    *zap.Logger
	now       func() time.Time

	mu     sync.Mutex
	buffer []types.MetricDatum
}

// NewCloudWatchRecorder creates a recorder publishing into namespace
func NewCloudWatchRecorder(namespace string, client CloudWatchClient, logger *zap.Logger) *CloudWatchRecorder {
	return &CloudWatchRecorder{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

func dims(kv ...string) []types.Dimension {
	out := make([]types.Dimension, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out = append(out, types.Dimension{Name: aws.String(kv[i]), Value: aws.String(kv[i+1])})
	}
	return out
}

func (r *CloudWatchRecorder) add(name string, value float64, unit types.StandardUnit, dimensions []types.Dimension) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffer = append(r.buffer, types.MetricDatum{
		MetricName: aws.String(name),
		Dimensions: dimensions,
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(r.now()),
	})
}

func (r *CloudWatchRecorder) RecordCategory(category string, items int) {
	r.add("ExtractedItems", float64(items), types.StandardUnitCount, dims("Category", category))
}

func (r *CloudWatchRecorder) RecordResolution(category, quality string) {
	r.add("NameResolutions", 1, types.StandardUnitCount, dims("Category", category, "Quality", quality))
}

func (r *CloudWatchRecorder) RecordDropped(category, reason string) {
	r.add("DroppedItems", 1, types.StandardUnitCount, dims("Category", category, "Reason", reason))
}

func (r *CloudWatchRecorder) RecordGeneration(mode, outcome string, seconds float64) {
	d := dims("Mode", mode, "Outcome", outcome)
	r.add("GenerationCount", 1, types.StandardUnitCount, d)
	r.add("GenerationLatency", seconds*1000, types.StandardUnitMilliseconds, d)
}

func (r *CloudWatchRecorder) RecordEdit(operation string) {
	r.add("JourneyEdits", 1, types.StandardUnitCount, dims("Operation", operation))
}

func (r *CloudWatchRecorder) RecordQuery(queryType, outcome string, seconds float64) {
	d := dims("Query", queryType, "Outcome", outcome)
	r.add("QueryCount", 1, types.StandardUnitCount, d)
	r.add("QueryLatency", seconds*1000, types.StandardUnitMilliseconds, d)
}

// Pending returns the number of buffered datums
func (r *CloudWatchRecorder) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.buffer)
}

// Flush sends the buffered datums. Datums of a failed call are dropped.
func (r *CloudWatchRecorder) Flush(ctx context.Context) error {
	r.mu.Lock()
	data := r.buffer
	r.buffer = nil
	r.mu.Unlock()

	if r.client == nil || len(data) == 0 {
		return nil
	}

	var failed int
	for i := 0; i < len(data); i += maxDatumsPerCall {
		end := min(i+maxDatumsPerCall, len(data))
		_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(r.namespace),
			MetricData: data[i:end],
		})
		if err != nil {
			failed += end - i
			r.logger.Warn("Failed to send metrics", zap.Error(err), zap.Int("datums", end-i))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d metric datums were not sent", failed)
	}
	return nil
}
